package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/noorvia/noorvia-backend/api/responses"
	"github.com/noorvia/noorvia-backend/api/routes"
	"github.com/noorvia/noorvia-backend/internal/auth"
	cartsvc "github.com/noorvia/noorvia-backend/internal/cart"
	"github.com/noorvia/noorvia-backend/internal/content"
	"github.com/noorvia/noorvia-backend/internal/orders"
	product "github.com/noorvia/noorvia-backend/internal/products"
	"github.com/noorvia/noorvia-backend/internal/users"
	"github.com/noorvia/noorvia-backend/internal/wishlist"
	"github.com/noorvia/noorvia-backend/pkg/auth/session"
	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/db"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/metrics"
	"github.com/noorvia/noorvia-backend/pkg/migrate"
	"github.com/noorvia/noorvia-backend/pkg/outbox"
	"github.com/noorvia/noorvia-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	responses.ExposeInternalDetails(!cfg.App.IsProd())

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	commerceMetrics := metrics.NewCommerceMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	gdb := dbClient.DB()
	productRepo := product.NewRepository(gdb)
	cartRepo := cartsvc.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gdb),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	productService, err := product.NewService(productRepo, dbClient)
	if err != nil {
		return err
	}
	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Repo:        cartRepo,
		ProductRepo: productRepo,
		Tx:          dbClient,
		Logger:      logg,
		Metrics:     commerceMetrics,
	})
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(gdb),
		Tx:      dbClient,
		Cart:    cartRepo,
		Outbox:  outbox.NewService(outbox.NewRepository(gdb), logg),
		Config:  cfg.Order,
		Metrics: commerceMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}
	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(gdb),
		ProductRepo:  productRepo,
	})
	if err != nil {
		return err
	}
	contentService, err := content.NewService(content.ServiceParams{
		Repo:     content.NewRepository(gdb),
		Cache:    redisClient,
		CacheTTL: cfg.Content.CacheTTL,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Gatherer: registry,
		HTTP:     metrics.NewHTTPMetrics(registry),
		Auth:     authService,
		Products: productService,
		Cart:     cartService,
		Orders:   orderService,
		Wishlist: wishlistService,
		Content:  contentService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
