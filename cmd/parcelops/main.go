package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/parcelops/backoffice/internal/accounting/accounts"
	"github.com/parcelops/backoffice/internal/accounting/closing"
	"github.com/parcelops/backoffice/internal/accounting/journals"
	"github.com/parcelops/backoffice/internal/app"
	"github.com/parcelops/backoffice/internal/billing"
	"github.com/parcelops/backoffice/internal/masterdata/customers"
	"github.com/parcelops/backoffice/internal/masterdata/vendors"
	"github.com/parcelops/backoffice/internal/observability"
	"github.com/parcelops/backoffice/internal/partyledger"
	"github.com/parcelops/backoffice/internal/platform/db"
	"github.com/parcelops/backoffice/internal/shared"
	"github.com/parcelops/backoffice/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	audit := shared.NewAuditLogger(pool)

	accountsService := accounts.NewService(accounts.NewRepository(pool))
	journalsService := journals.NewService(journals.NewRepository(pool), audit, metrics)
	ledgerService := partyledger.NewService(partyledger.NewRepository(pool), metrics)
	billingService := billing.NewService(billing.NewRepository(pool), audit, metrics)
	closingService := closing.NewService(closing.NewRepository(pool), audit, metrics)
	customersService := customers.NewService(customers.NewRepository(pool))
	vendorsService := vendors.NewService(vendors.NewRepository(pool))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Middlewares: app.MiddlewareStack(app.MiddlewareConfig{Logger: logger, Config: cfg, Metrics: metrics}),
		Metrics:     metrics,
		Accounts:    accounts.NewHandler(logger, accountsService),
		Journals:    journals.NewHandler(logger, journalsService),
		Closings:    closing.NewHandler(logger, closingService),
		Billing:     billing.NewHandler(logger, billingService),
		Ledgers:     partyledger.NewHandler(logger, ledgerService),
		Customers:   customers.NewHandler(logger, customersService),
		Vendors:     vendors.NewHandler(logger, vendorsService),
		Jobs:        jobs.NewHandler(inspector, redisClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
