package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-push-relay/internal/application/broadcast"
	"github.com/go-push-relay/internal/application/subscription"
	"github.com/go-push-relay/internal/config"
	"github.com/go-push-relay/internal/domain"
	"github.com/go-push-relay/internal/transport/http/handler"
	appmiddleware "github.com/go-push-relay/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — subscribe churns on page loads.
	subscribeRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	registry := subscription.NewRegistry(deps.SubscriptionRepo, cfg.VAPIDPublicKey)
	broadcastSvc := broadcast.NewService(
		deps.SubscriptionRepo,
		deps.BroadcastRepo,
		deps.Sender,
		cfg.BroadcastWorkers,
		cfg.DeliveryTimeout,
	)

	healthH := handler.NewHealthHandler()
	subH := handler.NewSubscriptionHandler(registry)
	broadcastH := handler.NewBroadcastHandler(broadcastSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/push/public-key", subH.PublicKey)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.With(subscribeRL.Limit).Post("/subscriptions", subH.Save)
			r.Get("/subscriptions", subH.State)
			r.Delete("/subscriptions", subH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/broadcasts", broadcastH.Send)
				r.Get("/broadcasts", broadcastH.List)
				r.Delete("/subscriptions/{userID}", subH.AdminDelete)
			})
		})
	})

	return r
}
