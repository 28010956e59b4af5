package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wanderlust-backend/api/controllers"
	"github.com/angelmondragon/wanderlust-backend/api/middleware"
	"github.com/angelmondragon/wanderlust-backend/internal/auth"
	"github.com/angelmondragon/wanderlust-backend/internal/listings"
	"github.com/angelmondragon/wanderlust-backend/internal/reviews"
	"github.com/angelmondragon/wanderlust-backend/internal/wishlist"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

type sessionChecker interface {
	HasSession(ctx context.Context, sessionID string, userID uuid.UUID) (bool, error)
}

type rateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type metricsHandler interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
	Handler() http.Handler
}

// RouterParams carries everything the HTTP surface is built from. Pingers
// with a nil value are skipped by the readiness probe.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions sessionChecker
	Limiter  rateLimitStore
	Metrics  metricsHandler
	Pingers  map[string]controllers.Pinger

	Listings listings.Service
	Wishlist wishlist.Service
	Reviews  reviews.Service
	Auth     auth.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
		middleware.MethodOverride,
	)
	if p.Metrics != nil {
		r.Use(middleware.Metrics(p.Metrics))
	}

	r.NotFound(controllers.NotFound(logg))
	r.MethodNotAllowed(controllers.NotFound(logg))

	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)
	maxUpload := cfg.Storage.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Pingers, logg))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Get("/", controllers.Home())

	r.Group(func(r chi.Router) {
		r.Get("/signup", controllers.AuthSignupForm())
		r.Get("/login", controllers.AuthLoginForm())
		r.With(middleware.AuthRateLimit(middleware.SignupRateLimitPolicy(cfg.AuthRateLimit), p.Limiter, logg)).
			Post("/signup", controllers.AuthSignup(p.Auth, cfg.HTTP, logg))
		r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), p.Limiter, logg)).
			Post("/login", controllers.AuthLogin(p.Auth, cfg.HTTP, logg))
		r.With(optionalAuth).Get("/logout", controllers.AuthLogout(p.Auth, cfg.HTTP, logg))
		r.With(optionalAuth).Post("/logout", controllers.AuthLogout(p.Auth, cfg.HTTP, logg))
	})

	r.Route("/listings", func(r chi.Router) {
		r.With(optionalAuth).Get("/", controllers.ListingsIndex(p.Listings, logg))
		r.With(requireAuth).Get("/new", controllers.ListingNewForm())
		r.With(requireAuth).Post("/", controllers.ListingCreate(p.Listings, maxUpload, logg))

		r.Route("/{id}", func(r chi.Router) {
			r.With(optionalAuth).Get("/", controllers.ListingShow(p.Listings, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/edit", controllers.ListingEditForm(p.Listings, logg))
				r.Put("/", controllers.ListingUpdate(p.Listings, maxUpload, logg))
				r.Delete("/", controllers.ListingDelete(p.Listings, logg))
				r.Put("/wishlist", controllers.WishlistToggle(p.Wishlist, logg))
				r.Post("/reviews", controllers.ReviewCreate(p.Reviews, logg))
				r.Delete("/reviews/{reviewID}", controllers.ReviewDelete(p.Reviews, logg))
			})
		})
	})

	r.With(requireAuth).Get("/wishlist", controllers.WishlistIndex(p.Wishlist, logg))

	return r
}
