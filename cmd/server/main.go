package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/config"
	"github.com/automarket/marketplace-api/internal/database"
	"github.com/automarket/marketplace-api/internal/handler"
	"github.com/automarket/marketplace-api/internal/identity"
	"github.com/automarket/marketplace-api/internal/logging"
	"github.com/automarket/marketplace-api/internal/obs"
	"github.com/automarket/marketplace-api/internal/queue"
	"github.com/automarket/marketplace-api/internal/repository"
	"github.com/automarket/marketplace-api/internal/router"
	"github.com/automarket/marketplace-api/internal/service"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log, cfg.IsDev())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.Tracing, version, cfg.Env)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	store, err := database.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	log.Info("document store ready", zap.String("driver", cfg.Store.Driver))

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.AMQP.URL != "" {
		events = queue.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log,
			queue.WithBufferSize(cfg.AMQP.BufferSize),
			queue.WithDialTimeout(cfg.AMQP.DialTimeout),
			queue.WithRetryAfter(cfg.AMQP.RetryAfter))
		log.Info("listing events enabled", zap.String("exchange", cfg.AMQP.Exchange))
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil && cfg.RateLimit.Enabled {
		log.Warn("redis unavailable, rate limiting disabled", zap.String("addr", cfg.Redis.Address()))
	}

	verifier, err := newVerifier(ctx, cfg.Identity)
	if err != nil {
		return err
	}
	if strings.EqualFold(cfg.Identity.Mode, "dev") {
		log.Warn("AUTH_MODE=dev: accepting locally signed tokens")
	}

	carRepo := repository.NewCarRepo(store)
	userRepo := repository.NewUserRepo(store)
	e := router.New(router.Deps{
		Log:         log,
		Verifier:    verifier,
		Redis:       rdb,
		RateLimit:   cfg.RateLimit,
		CORSOrigins: cfg.CORSAllowedOrigins,
		ServiceName: cfg.Tracing.ServiceName,
		Health:      handler.NewHealthHandler(cfg.Tracing.ServiceName, version),
		Cars:        handler.NewCarHandler(service.NewCarService(carRepo, userRepo, events, log), log),
		Users:       handler.NewUserHandler(service.NewUserService(userRepo, log), log),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("version", version))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errCh:
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := shutdownTracer(sctx); err != nil {
		log.Warn("tracer shutdown", zap.Error(err))
	}
	if err := events.Close(); err != nil {
		log.Warn("publisher close", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("redis close", zap.Error(err))
		}
	}
	if err := store.Close(); err != nil {
		log.Warn("store close", zap.Error(err))
	}
	return runErr
}

func newVerifier(ctx context.Context, cfg config.IdentityConfig) (identity.Verifier, error) {
	switch strings.ToLower(cfg.Mode) {
	case "dev":
		return identity.NewHMACVerifier(cfg.DevSecret), nil
	case "firebase":
		return identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.JWKSURL), nil
	}
	return nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.Mode)
}
