package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/health"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/middleware"
)

const serviceName = "storefront-cart"

// NewRouter creates a chi router with every storefront cart route registered.
func NewRouter(
	cartHandler *CartHandler,
	sessionHandler *SessionHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(ProfileIDFromHeader)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Get("/vendors", cartHandler.GetVendors)

		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{itemId}", cartHandler.UpdateItemQuantity)
		r.Delete("/items/{itemId}", cartHandler.RemoveItem)

		r.Put("/coupon", cartHandler.ApplyCoupon)
		r.Delete("/coupon", cartHandler.RemoveCoupon)

		r.Post("/bulk", cartHandler.AddAll)
	})

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(ProfileIDFromHeader)

		r.Post("/login", sessionHandler.Login)
		r.Post("/register", sessionHandler.Register)
		r.Post("/restore", sessionHandler.Restore)
		r.Get("/reconciliation", sessionHandler.Reconciliation)
	})

	return r
}
