package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/madrasati/schoolstore-backend/api/routes"
	"github.com/madrasati/schoolstore-backend/internal/auth"
	"github.com/madrasati/schoolstore-backend/internal/cart"
	"github.com/madrasati/schoolstore-backend/internal/checkout"
	"github.com/madrasati/schoolstore-backend/internal/dashboard"
	"github.com/madrasati/schoolstore-backend/internal/orders"
	"github.com/madrasati/schoolstore-backend/internal/products"
	"github.com/madrasati/schoolstore-backend/internal/profiles"
	"github.com/madrasati/schoolstore-backend/internal/users"
	"github.com/madrasati/schoolstore-backend/pkg/auth/session"
	"github.com/madrasati/schoolstore-backend/pkg/config"
	"github.com/madrasati/schoolstore-backend/pkg/db"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
	"github.com/madrasati/schoolstore-backend/pkg/metrics"
	"github.com/madrasati/schoolstore-backend/pkg/migrate"
	"github.com/madrasati/schoolstore-backend/pkg/redis"
	"github.com/madrasati/schoolstore-backend/pkg/ziina"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cartStore := cart.NewStore(logg)
	cartRepo := cart.NewRepository(dbClient.DB())
	cartHydrator := cart.NewHydrator(cartStore, cartRepo, logg)
	userRepo := users.NewRepository(dbClient.DB())
	profileRepo := profiles.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		UserRepo:       userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Observers:      []auth.IdentityObserver{cartStore, cartHydrator},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo, cfg.Store.Currency)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, dbClient, productRepo, cartRepo, profileRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(orderService)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	// Checkout stays offline when no payment credentials are configured; the
	// rest of the API still serves.
	var checkoutService checkout.Service
	if cfg.Ziina.HasAPIKey() {
		ziinaClient, err := ziina.NewClient(context.Background(), cfg.Ziina, cfg.Store, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create ziina client", err)
			os.Exit(1)
		}
		checkoutService, err = checkout.NewService(cartStore, profileRepo, orderService, ziinaClient, cfg.App.BaseURL, cfg.Store.Currency, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create checkout service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "ziina api key not configured, checkout disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,
			HTTPMetrics:    httpMetrics,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),

			AuthService:     authService,
			RegisterService: registerService,
			ProductService:  productService,
			ProfileRepo:     profileRepo,
			CartStore:       cartStore,
			CartRepo:        cartRepo,
			CheckoutService: checkoutService,
			OrdersService:   orderService,
			Dashboard:       dashboardService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
