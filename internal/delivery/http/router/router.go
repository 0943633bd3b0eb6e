package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/delivery/http/handler"
	"github.com/user/crawler-console/internal/delivery/http/middleware"
	"github.com/user/crawler-console/pkg/metrics"
)

// New mounts the console routes. gatherer backs /metrics; pass
// prometheus.DefaultGatherer when the collectors were registered there.
func New(h *handler.Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/api/health", h.HandleHealthCheck)

	r.Route("/console", func(r chi.Router) {
		r.Get("/assets.js", h.HandleAssets)

		r.Route("/crawlers", func(r chi.Router) {
			r.Use(middleware.RequireReady(h.Ready))
			r.Get("/", h.HandleListCrawlers)
			r.Get("/new", h.HandleNewCrawler)
			r.Post("/{name}/remove", h.HandleRemoveCrawler)
			r.Get("/rows/{index}/detail", h.HandleRowDetail)
			r.Get("/{name}/edit", h.HandleEditCrawler)
		})

		r.Get("/editor", h.HandleEditor)
		r.Post("/editor", h.HandleSubmitEditor)
		r.Get("/editor/restore", h.HandleEditorRestore)
		r.Get("/test", h.HandleTest)
		r.Get("/view", h.HandleView)
	})

	return r
}
