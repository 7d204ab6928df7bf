package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopsmith/storefront/internal/cart"
	"github.com/shopsmith/storefront/internal/checkout"
	"github.com/shopsmith/storefront/pkg/health"
	"github.com/shopsmith/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	carts *cart.Manager,
	checkoutService *checkout.Service,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	cartHandler := NewCartHandler(carts, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{id}/decrement", cartHandler.DecrementItem)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/session", checkoutHandler.StartSession)
			r.Get("/session", checkoutHandler.GetSession)
			r.Put("/form", checkoutHandler.UpdateForm)
			r.Post("/regions/{group}", checkoutHandler.ResolveRegions)
			r.Post("/billing-same", checkoutHandler.BillingSameAsShipping)
			r.Post("/submit", checkoutHandler.Submit)
		})
	})

	return r
}
