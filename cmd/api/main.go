package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loanledger/backend/internal/config"
	"github.com/loanledger/backend/internal/db"
	loandomain "github.com/loanledger/backend/internal/domain/loan"
	"github.com/loanledger/backend/internal/http/handlers"
	"github.com/loanledger/backend/internal/observability"
	"github.com/loanledger/backend/internal/repository/cache"
	postgresrepo "github.com/loanledger/backend/internal/repository/postgres"
	"github.com/loanledger/backend/internal/server"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	var loanRepo loandomain.Repository = postgresrepo.NewLoanRepository(pool)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, loan cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			loanRepo = cache.NewLoanCache(loanRepo, rdb, cfg.LoanCacheTTL, logger)
			logger.Info("loan cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.LoanCacheTTL)
		}
	}

	loanService := loandomain.NewService(loanRepo, cfg.RejectPaymentsOnPaidLoan)
	loanHandler := handlers.NewLoanHandler(loanService)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:      pool,
		LoanHandler: loanHandler,
		Metrics:     observability.NewMetrics(),
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
