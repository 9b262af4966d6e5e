package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madrasati/schoolstore-backend/api/controllers"
	"github.com/madrasati/schoolstore-backend/api/middleware"
	"github.com/madrasati/schoolstore-backend/internal/auth"
	cartsvc "github.com/madrasati/schoolstore-backend/internal/cart"
	checkoutsvc "github.com/madrasati/schoolstore-backend/internal/checkout"
	dashboardsvc "github.com/madrasati/schoolstore-backend/internal/dashboard"
	ordersvc "github.com/madrasati/schoolstore-backend/internal/orders"
	productsvc "github.com/madrasati/schoolstore-backend/internal/products"
	"github.com/madrasati/schoolstore-backend/internal/profiles"
	"github.com/madrasati/schoolstore-backend/pkg/auth/session"
	"github.com/madrasati/schoolstore-backend/pkg/config"
	"github.com/madrasati/schoolstore-backend/pkg/db"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
	"github.com/madrasati/schoolstore-backend/pkg/metrics"
	"github.com/madrasati/schoolstore-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             *db.Client
	Redis          *redis.Client
	SessionManager sessionManager
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	AuthService     auth.Service
	RegisterService auth.RegisterService
	ProductService  productsvc.Service
	ProfileRepo     *profiles.Repository
	CartStore       *cartsvc.Store
	CartRepo        *cartsvc.Repository
	CheckoutService checkoutsvc.Service
	OrdersService   ordersvc.Service
	Dashboard       dashboardsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	currency := cfg.Store.Currency

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, deps.CartStore, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.ProductService, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.ProductService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileFetch(deps.ProfileRepo, logg))
			r.Put("/", controllers.ProfileUpsert(deps.ProfileRepo, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartStore, currency, logg))
			r.Delete("/", controllers.CartClear(deps.CartStore, deps.CartRepo, currency, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartStore, deps.ProductService, deps.CartRepo, currency, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(deps.CartStore, deps.CartRepo, currency, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartStore, deps.CartRepo, currency, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))
		r.Get("/payments/result", controllers.PaymentResult(deps.CheckoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersListMine(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.OrdersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(deps.ProductService, logg))
			r.Post("/", controllers.AdminProductCreate(deps.ProductService, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(deps.ProductService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(deps.ProductService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(deps.OrdersService, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderStatus(deps.OrdersService, logg))
		})
		r.Get("/dashboard", controllers.AdminDashboard(deps.Dashboard, logg))
	})

	return r
}
