// Package server assembles the HTTP surface: Connect services, health and
// metrics endpoints behind a chi router.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	kanjimw "github.com/mmynk/kanji/internal/middleware"
	"github.com/mmynk/kanji/internal/service"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the components the router serves.
type Deps struct {
	Events   *service.EventService
	Bills    *service.BillService
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	// Health is checked by /healthz; nil means always healthy.
	Health Pinger
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewRouter builds the root handler.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health.Ping(ctx); err != nil {
				logger.Warn("Health check failed", "error", err)
				render.Status(req, http.StatusServiceUnavailable)
				render.JSON(w, req, healthResponse{Status: "unavailable", Error: err.Error()})
				return
			}
		}
		render.JSON(w, req, healthResponse{Status: "ok"})
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	interceptors := connect.WithInterceptors(kanjimw.NewLoggingInterceptor(logger))
	if d.Events != nil {
		path, h := d.Events.Handler(interceptors)
		r.Mount(path, h)
	}
	if d.Bills != nil {
		path, h := d.Bills.Handler(interceptors)
		r.Mount(path, h)
	}
	return r
}

// cors adds CORS headers for browser access.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
