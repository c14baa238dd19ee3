package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loanledger/backend/internal/config"
	"github.com/loanledger/backend/internal/http/handlers"
	"github.com/loanledger/backend/internal/http/middleware"
	"github.com/loanledger/backend/internal/observability"
	"github.com/loanledger/backend/internal/version"
)

type Dependencies struct {
	Pinger      handlers.Pinger
	LoanHandler *handlers.LoanHandler
	Metrics     *observability.Metrics
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestBodyLimit(cfg.MaxBodyBytes))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", middleware.RequestIDFrom(c),
		)
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.LoanHandler != nil {
		api := r.Group("/api")
		api.POST("/loans", deps.LoanHandler.CreateLoan)
		api.GET("/loans", deps.LoanHandler.ListLoans)
		api.GET("/loans/:loanId", deps.LoanHandler.GetLoan)
		api.POST("/loans/:loanId/payments", deps.LoanHandler.RecordPayment)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
