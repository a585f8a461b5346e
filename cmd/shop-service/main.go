// Command shop-service serves the shop HTTP API: accounts, catalog, carts and checkout.
//
// @title                       Shop Service API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MikeMC777/shop-service/internal/auth"
	"github.com/MikeMC777/shop-service/internal/cart"
	"github.com/MikeMC777/shop-service/internal/checkout"
	"github.com/MikeMC777/shop-service/internal/config"
	"github.com/MikeMC777/shop-service/internal/events"
	"github.com/MikeMC777/shop-service/internal/httpx"
	"github.com/MikeMC777/shop-service/internal/logger"
	"github.com/MikeMC777/shop-service/internal/order"
	"github.com/MikeMC777/shop-service/internal/product"
	"github.com/MikeMC777/shop-service/internal/storage"
	"github.com/MikeMC777/shop-service/internal/telemetry"
	"github.com/MikeMC777/shop-service/internal/user"
)

const serviceName = "shop-service"

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: serviceName, Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Error("shop-service stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info("starting", "config", cfg)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Service:  serviceName,
		Exporter: cfg.TraceExporter,
		Endpoint: cfg.TraceEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", "err", err)
		}
	}()

	if cfg.RunMigrations {
		if err := storage.Migrate(cfg.PostgresDSN, log); err != nil {
			return err
		}
	}
	pool, err := storage.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	carts, closeCarts, err := newCartRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCarts()

	var publisher checkout.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn("kafka writer close", "err", err)
			}
		}()
		publisher = kp
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	products := product.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)

	router := newRouter(deps{
		log:            log,
		metrics:        httpx.NewServerMetrics("shop_service"),
		tokens:         tokens,
		users:          user.NewService(user.NewPGRepo(pool), tokens),
		products:       products,
		orders:         orders,
		carts:          carts,
		checkout:       checkout.NewService(carts, products, orders, publisher, log, cfg.CheckoutConcurrency),
		requestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func newCartRegistry(ctx context.Context, cfg config.Config) (cart.Registry, func(), error) {
	switch cfg.CartBackend {
	case config.CartBackendMemory, "":
		return cart.NewMemoryRegistry(), func() {}, nil
	case config.CartBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		reg := cart.NewRedisRegistry(client, cart.RedisOptions{
			LockTTL: cfg.CartLockTTL,
			CartTTL: cfg.CartTTL,
		})
		return reg, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown CART_BACKEND %q", cfg.CartBackend)
	}
}
