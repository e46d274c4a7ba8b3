package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nexus-club/site-api/internal/adminapi"
	"github.com/nexus-club/site-api/internal/cache"
	"github.com/nexus-club/site-api/internal/config"
	"github.com/nexus-club/site-api/internal/http/handlers"
	"github.com/nexus-club/site-api/internal/http/middlewares"
	"github.com/nexus-club/site-api/internal/observability"
	"github.com/nexus-club/site-api/internal/repo/postgres"
)

const serviceName = "nexus-site-api"

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, proxyCache cache.Store, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// signup intake
	newbiesRepo := postgres.NewNewbiesRepo(pool, prom)
	newbiesHandler := handlers.NewNewbiesHandler(newbiesRepo, prom, cfg.DBConfigured)

	limiter := middlewares.NewRateLimiter(cfg.SignupRateLimit, cfg.SignupRateWindow)

	api := r.Group("/api")
	api.POST("/newbies", limiter.Middleware(middlewares.KeyByIP), newbiesHandler.Create)
	api.GET("/newbies", newbiesHandler.Probe)

	// admin API passthrough (events/projects arrays the site renders)
	upstream := adminapi.NewClient(cfg.AdminAPIBaseURL, nil)
	proxy := handlers.NewProxyHandler(upstream, proxyCache, prom)

	api.GET("/events", proxy.Relay)
	api.GET("/projects", proxy.Relay)

	// the original rewrite forwarded every /api/* path; keep that behavior
	// for reads without claiming routes the intake owns
	r.NoRoute(func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodGet && strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			proxy.Relay(ctx)
			return
		}

		handlers.RespondNotFound(ctx, "Ressource introuvable")
	})

	r.NoMethod(handlers.MethodNotAllowed)

	log.Debug("router wired",
		"admin_api", cfg.AdminAPIBaseURL,
		"origins", cfg.AllowedOrigins,
		"signup_rate_limit", cfg.SignupRateLimit,
	)

	return r
}
