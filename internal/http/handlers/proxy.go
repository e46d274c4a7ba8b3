package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexus-club/site-api/internal/adminapi"
	"github.com/nexus-club/site-api/internal/cache"
	"github.com/nexus-club/site-api/internal/config"
	"github.com/nexus-club/site-api/internal/observability"
)

type Fetcher interface {
	Fetch(ctx context.Context, path, rawQuery string) (adminapi.Response, error)
}

// ProxyHandler relays /api/* reads to the admin API, the same rewrite the
// site config used to do. Responses are opaque and never transformed; 200s
// are cached briefly so a burst of visitors hits upstream once.
type ProxyHandler struct {
	upstream Fetcher
	store    cache.Store
	prom     *observability.Prom
}

func NewProxyHandler(upstream Fetcher, store cache.Store, prom *observability.Prom) *ProxyHandler {
	return &ProxyHandler{upstream: upstream, store: store, prom: prom}
}

func (h *ProxyHandler) Relay(ctx *gin.Context) {
	path := ctx.Request.URL.Path
	key := "adminapi:" + path

	if q := ctx.Request.URL.RawQuery; q != "" {
		key += "?" + q
	}

	if h.store != nil {
		if b, ok := h.store.Get(ctx.Request.Context(), key); ok {
			var res adminapi.Response

			if json.Unmarshal(b, &res) == nil {
				h.cacheResult(path, "hit")
				RespondDataWithETag(ctx, res.Status, res.ContentType, res.Body)
				return
			}
		}

		h.cacheResult(path, "miss")
	}

	cctx, cancel := config.WithTimeout(10 * time.Second)

	defer cancel()

	res, err := h.upstream.Fetch(cctx, path, ctx.Request.URL.RawQuery)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "admin api fetch failed", "path", path, "err", err)
		RespondBadGateway(ctx, "Le service de données est momentanément indisponible")
		return
	}

	if h.prom != nil {
		h.prom.ProxyRequestsTotal.WithLabelValues(path, strconv.Itoa(res.Status)).Inc()
	}

	if res.Status == http.StatusOK && h.store != nil {
		if b, mErr := json.Marshal(res); mErr == nil {
			h.store.Set(ctx.Request.Context(), key, b)
		}
	}

	RespondDataWithETag(ctx, res.Status, res.ContentType, res.Body)
}

func (h *ProxyHandler) cacheResult(path, result string) {
	if h.prom != nil {
		h.prom.ProxyCacheHits.WithLabelValues(path, result).Inc()
	}
}
