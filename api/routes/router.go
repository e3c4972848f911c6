package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/noorvia/noorvia-backend/api/controllers"
	"github.com/noorvia/noorvia-backend/api/middleware"
	"github.com/noorvia/noorvia-backend/internal/auth"
	cartsvc "github.com/noorvia/noorvia-backend/internal/cart"
	"github.com/noorvia/noorvia-backend/internal/content"
	"github.com/noorvia/noorvia-backend/internal/orders"
	product "github.com/noorvia/noorvia-backend/internal/products"
	"github.com/noorvia/noorvia-backend/internal/wishlist"
	"github.com/noorvia/noorvia-backend/pkg/auth/session"
	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/db"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/metrics"
)

// RedisStore is the subset of the redis client the HTTP layer relies on for
// rate limiting, idempotency and readiness.
type RedisStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Ping(ctx context.Context) error
}

// Dependencies holds everything NewRouter wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth     auth.Service
	Products product.Service
	Cart     cartsvc.Service
	Orders   orders.Service
	Wishlist wishlist.Service
	Content  content.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTP),
		middleware.CORS(cfg.CORS),
	)

	authenticated := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	adminOnly := middleware.RequireRole(enums.UserRoleAdmin, logg)
	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", controllers.Health())

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.With(authenticated).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.With(authenticated).Get("/me", controllers.AuthMe(deps.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{id}", controllers.ProductGet(deps.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(authenticated, adminOnly)
				r.Post("/", controllers.ProductCreate(deps.Products, logg))
				r.Put("/{id}", controllers.ProductUpdate(deps.Products, logg))
				r.Delete("/{id}", controllers.ProductDelete(deps.Products, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/", controllers.CartAdd(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Put("/item/{productId}", controllers.CartSetQuantity(deps.Cart, logg))
			r.Delete("/item/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticated)
			r.With(middleware.Idempotency(deps.Redis, cfg.Idempotency.TTL, logg)).Post("/", controllers.OrderPlace(deps.Orders, logg))
			r.Get("/myorders", controllers.OrderListMine(deps.Orders, logg))
			r.Get("/{id}", controllers.OrderGet(deps.Orders, logg))
			r.With(adminOnly).Get("/", controllers.OrderListAll(deps.Orders, logg))
			r.With(adminOnly).Put("/{id}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
			r.Post("/add/{productId}", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/remove/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/", controllers.ContentList(deps.Content, logg))
			r.Get("/{section}", controllers.ContentGet(deps.Content, logg))
			r.With(authenticated, adminOnly).Put("/{section}", controllers.ContentUpsert(deps.Content, logg))
		})
	})

	return r
}
