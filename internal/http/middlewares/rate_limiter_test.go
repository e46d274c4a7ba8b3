package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexus-club/site-api/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(limit int, window time.Duration) *gin.Engine {
	rl := middlewares.NewRateLimiter(limit, window)

	r := gin.New()
	r.POST("/api/newbies", rl.Middleware(middlewares.KeyByIP), func(ctx *gin.Context) {
		ctx.Status(http.StatusCreated)
	})

	return r
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	r := limitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/newbies", nil))

		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: got status %d", i+1, w.Code)
		}
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	r := limitedRouter(2, time.Minute)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/newbies", nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/newbies", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("429 must carry Retry-After")
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	r := limitedRouter(1, 20*time.Millisecond)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/newbies", nil))

	time.Sleep(40 * time.Millisecond)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/newbies", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("new window should admit the request, got %d", w.Code)
	}
}
