package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/listing-harvester/internal/delivery/http/handler"
	"github.com/user/listing-harvester/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)
	mux.HandleFunc("POST /api/links", h.HandleSubmitLink)
	mux.HandleFunc("POST /api/links/batch", h.HandleSubmitLinkBatch)
	mux.HandleFunc("GET /api/stats", h.HandleGetStats)
	mux.HandleFunc("POST /api/harvest", h.HandleStartHarvest)
	mux.HandleFunc("POST /api/export", h.HandleExport)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
