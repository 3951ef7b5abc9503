package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/httpx"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Handler returns the HTTP tree: the module API under /api, Prometheus
// metrics and a health probe.
func (app *App) Handler() http.Handler {
	limiter := httpx.NewIPRateLimiter(rate.Limit(app.Config.HTTP.RateLimit), app.Config.HTTP.RateBurst)

	r := chi.NewRouter()
	r.Use(httpx.CorrelationMiddleware)
	r.Use(httpx.CORSMiddleware(app.Config.HTTP.AllowedOrigins))

	r.Get("/healthz", app.handleHealth)
	r.Handle("/metrics", app.Observability.MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(httpx.RateLimitMiddleware(limiter))
		r.Mount("/api", app.api)
	})
	return r
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.DB.PingContext(ctx); err != nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
