package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/api"
	"github.com/assetverse/asset-management/internal/api/handler"
	"github.com/assetverse/asset-management/internal/core/ports"
	"github.com/assetverse/asset-management/internal/core/service"
	mongostore "github.com/assetverse/asset-management/internal/infrastructure/db/mongo"
	redisstore "github.com/assetverse/asset-management/internal/infrastructure/db/redis"
	"github.com/assetverse/asset-management/internal/infrastructure/jobs"
	"github.com/assetverse/asset-management/internal/infrastructure/payment"
	"github.com/assetverse/asset-management/internal/infrastructure/queue"
	"github.com/assetverse/asset-management/internal/pkg/config"
	"github.com/assetverse/asset-management/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title        AssetVerse API
// @version      1.0
// @description  Asset requests, HR approvals, employee affiliations and package upgrades.
// @BasePath     /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an admin JWT.

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		File:   cfg.LogFile,
	})
	defer func() { _ = logger.Close() }()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		_ = logger.Close()
		os.Exit(1)
	}
	log.Info().Msg("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	repos := mongostore.NewRepositories(db)
	if err := repos.EnsureIndexes(ctx); err != nil {
		return err
	}
	if seeded, err := repos.Packages.EnsureDefaults(ctx); err != nil {
		return err
	} else if seeded > 0 {
		log.Info().Int("packages", seeded).Msg("seeded default packages")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// --- Background workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Jobs.AuditWorkers, repos.Events, log.With().Str("component", "audit").Logger())
	dispatcher.Start(workerCtx)
	defer func() {
		cancelWorkers()
		dispatcher.Wait()
	}()

	usage := jobs.NewUsageReporter(repos.Users, repos.Affiliations, log.With().Str("component", "usage").Logger())
	if err := usage.Start(cfg.Jobs.UsageSchedule); err != nil {
		return err
	}
	defer usage.Stop()

	// --- Services ---
	var provider ports.PaymentProvider = payment.Disabled{}
	if cfg.Stripe.Secret != "" {
		stripeProvider, err := payment.NewStripeProvider(cfg.Stripe.Secret, cfg.Stripe.Currency)
		if err != nil {
			return err
		}
		provider = stripeProvider
	} else {
		log.Warn().Msg("STRIPE_SECRET is empty; paid checkouts are disabled")
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; admin routes reject every request")
	}

	locker := redisstore.NewLocker(rdb, cfg.Redis.LockWait, log.With().Str("component", "locker").Logger())
	capacity := service.NewCapacityPolicy(repos.Affiliations, locker, cfg.Redis.LockTTL)
	affiliations := service.NewAffiliationService(repos.Affiliations, repos.Users, capacity, log)

	router := api.NewRouter(api.Dependencies{
		Users:        service.NewUserService(repos.Users, cfg.HRSecretCodeHash, repos.Affiliations, log),
		Assets:       service.NewAssetService(repos.Assets, log),
		Affiliations: affiliations,
		Dashboard:    service.NewDashboardService(repos.Assets, repos.Requests),
		Requests: service.NewRequestService(service.RequestServiceDeps{
			Requests:     repos.Requests,
			Assets:       repos.Assets,
			Inventory:    repos.Assets,
			Users:        repos.Users,
			Affiliations: affiliations,
			Capacity:     capacity,
			Audit:        dispatcher,
		}, log),
		Payments: service.NewPaymentService(service.PaymentServiceDeps{
			Packages:  repos.Packages,
			Users:     repos.Users,
			Provider:  provider,
			Dedup:     redisstore.NewCheckoutDedup(rdb),
			ClientURL: cfg.ClientURL,
		}, log),
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	// --- Serve until a signal arrives ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return router.Shutdown(sctx)
}
