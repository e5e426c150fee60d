package chi

import (
	"net/http"
	"time"

	"github.com/VindiceCode/bonzobuddy/metrics"
	"github.com/VindiceCode/bonzobuddy/receiver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

// MockhookHandlers sets up the mock webhook receiver routes
func MockhookHandlers(inbox *receiver.Inbox, exporter *metrics.OTelExporter) *chi.Mux {
	logger := httplog.NewLogger("mockhook", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Prometheus metrics
	r.Method(http.MethodGet, "/metrics", exporter.ServeHTTP())

	r.Route("/hooks/{integration}", func(r chi.Router) {
		r.Post("/", postHook(inbox).ServeHTTP)
		r.Get("/received", getReceived(inbox).ServeHTTP)
		r.Delete("/received", deleteReceived(inbox).ServeHTTP)
	})

	return r
}
