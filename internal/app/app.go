package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopsmith/storefront/internal/cart"
	"github.com/shopsmith/storefront/internal/checkout"
	"github.com/shopsmith/storefront/internal/config"
	"github.com/shopsmith/storefront/internal/event"
	"github.com/shopsmith/storefront/internal/gateway"
	handler "github.com/shopsmith/storefront/internal/handler/http"
	"github.com/shopsmith/storefront/internal/refdata"
	redisrepo "github.com/shopsmith/storefront/internal/repository/redis"
	"github.com/shopsmith/storefront/internal/tokenizer"
	tokenizermock "github.com/shopsmith/storefront/internal/tokenizer/mock"
	"github.com/shopsmith/storefront/pkg/health"
	"github.com/shopsmith/storefront/pkg/httpclient"
	pkgkafka "github.com/shopsmith/storefront/pkg/kafka"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Redis holds the session-scoped persisted carts.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka producer for cart/order domain events.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Outbound HTTP clients. The purchase POST must hit the gateway at most
	// once, so the gateway client gets the no-retry configuration; reference
	// data reads retry and sit behind a circuit breaker.
	gatewayHTTP := httpclient.New(httpclient.NoRetryConfig())
	refdataHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("refdata"),
		logger,
	)

	// Card tokenization: the real widget when configured, the mock otherwise.
	var tok tokenizer.Tokenizer = tokenizermock.NewTokenizer()
	if cfg.PaymentWidgetURL != "" {
		tok = tokenizer.NewWidgetTokenizer(httpclient.New(httpclient.DefaultConfig()), cfg.PaymentWidgetURL)
	}
	logger.Info("payment tokenizer configured", slog.String("provider", tok.Name()))

	// Build the dependency graph.
	cartTTL := time.Duration(cfg.CartTTL) * time.Hour
	repo := redisrepo.NewCartRepository(rdb, cartTTL)
	eventProducer := event.NewProducer(producer, logger)
	carts := cart.NewManager(repo, eventProducer, logger)
	orderGateway := gateway.NewClient(gatewayHTTP, cfg.OrderGatewayURL)
	refProvider := refdata.NewClient(refdataHTTP, cfg.RefDataURL)
	checkoutService := checkout.NewService(carts, orderGateway, tok, refProvider, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(carts, checkoutService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("shutdown complete")
	return nil
}
