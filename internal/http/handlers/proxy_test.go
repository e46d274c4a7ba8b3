package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexus-club/site-api/internal/adminapi"
	"github.com/nexus-club/site-api/internal/cache"
	"github.com/nexus-club/site-api/internal/http/handlers"
)

type fakeFetcher struct {
	fetchFn func(ctx context.Context, path, rawQuery string) (adminapi.Response, error)
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, path, rawQuery string) (adminapi.Response, error) {
	f.calls++

	if f.fetchFn != nil {
		return f.fetchFn(ctx, path, rawQuery)
	}

	return adminapi.Response{Status: http.StatusOK, ContentType: "application/json", Body: []byte("[]")}, nil
}

func relayRequest(h *handlers.ProxyHandler, target string, header http.Header) *httptest.ResponseRecorder {
	r := setupRouter(http.MethodGet, "/api/events", h.Relay)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRelayServesUpstreamBody(t *testing.T) {
	upstream := &fakeFetcher{
		fetchFn: func(ctx context.Context, path, rawQuery string) (adminapi.Response, error) {
			if path != "/api/events" {
				t.Fatalf("unexpected upstream path %q", path)
			}

			return adminapi.Response{
				Status:      http.StatusOK,
				ContentType: "application/json",
				Body:        []byte(`[{"title":"Hackathon"}]`),
			}, nil
		},
	}

	h := handlers.NewProxyHandler(upstream, cache.NewMemory(time.Minute), nil)

	w := relayRequest(h, "/api/events", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if w.Body.String() != `[{"title":"Hackathon"}]` {
		t.Fatalf("body not relayed verbatim: %s", w.Body.String())
	}

	if w.Header().Get("ETag") == "" {
		t.Fatalf("expected an ETag on proxied responses")
	}
}

func TestRelayCachesSuccessfulResponses(t *testing.T) {
	upstream := &fakeFetcher{}
	h := handlers.NewProxyHandler(upstream, cache.NewMemory(time.Minute), nil)

	relayRequest(h, "/api/events", nil)
	relayRequest(h, "/api/events", nil)

	if upstream.calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", upstream.calls)
	}
}

func TestRelayDoesNotCacheUpstreamErrors(t *testing.T) {
	upstream := &fakeFetcher{
		fetchFn: func(ctx context.Context, path, rawQuery string) (adminapi.Response, error) {
			return adminapi.Response{Status: http.StatusInternalServerError, ContentType: "application/json", Body: []byte(`{}`)}, nil
		},
	}

	h := handlers.NewProxyHandler(upstream, cache.NewMemory(time.Minute), nil)

	relayRequest(h, "/api/events", nil)
	relayRequest(h, "/api/events", nil)

	if upstream.calls != 2 {
		t.Fatalf("non-200 responses must not be cached, got %d fetches", upstream.calls)
	}
}

func TestRelayUpstreamFailure(t *testing.T) {
	upstream := &fakeFetcher{
		fetchFn: func(ctx context.Context, path, rawQuery string) (adminapi.Response, error) {
			return adminapi.Response{}, errors.New("dial tcp: connection refused")
		},
	}

	h := handlers.NewProxyHandler(upstream, cache.NewMemory(time.Minute), nil)

	w := relayRequest(h, "/api/events", nil)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestRelayHonorsIfNoneMatch(t *testing.T) {
	upstream := &fakeFetcher{}
	h := handlers.NewProxyHandler(upstream, cache.NewMemory(time.Minute), nil)

	first := relayRequest(h, "/api/events", nil)

	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag")
	}

	header := http.Header{}
	header.Set("If-None-Match", etag)

	second := relayRequest(h, "/api/events", header)

	if second.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want %d", second.Code, http.StatusNotModified)
	}

	if second.Body.Len() != 0 {
		t.Fatalf("304 must not carry a body")
	}
}

func TestRelayQueryIsPartOfCacheKey(t *testing.T) {
	upstream := &fakeFetcher{}
	h := handlers.NewProxyHandler(upstream, cache.NewMemory(time.Minute), nil)

	relayRequest(h, "/api/events", nil)
	relayRequest(h, "/api/events?year=2026", nil)

	if upstream.calls != 2 {
		t.Fatalf("distinct queries must fetch separately, got %d fetches", upstream.calls)
	}
}
