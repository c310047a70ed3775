package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ctei-manager/ctei-backend/internal/alerting"
	"github.com/ctei-manager/ctei-backend/internal/cache"
	"github.com/ctei-manager/ctei-backend/internal/database"
	"github.com/ctei-manager/ctei-backend/internal/errors"
	"github.com/ctei-manager/ctei-backend/internal/monitoring"
	"github.com/ctei-manager/ctei-backend/internal/ratelimit"
	"github.com/ctei-manager/ctei-backend/internal/scoring"
	"github.com/ctei-manager/ctei-backend/internal/types"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")
	corsOrigins := getEnvOrDefault("CORS_ORIGINS", "*")
	rateLimitPerMin := getEnvIntOrDefault("RATE_LIMIT_PER_MIN", 60)
	riskScanInterval := getEnvDurationOrDefault("RISK_SCAN_INTERVAL", 6*time.Hour)

	// Initialize database and stores
	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	scoreStore := database.NewScoreStore(db)
	alertStore := database.NewAlertStore(db)

	// Scoring and alerting services
	alertGenerator := alerting.NewGenerator(alertStore)
	riskAnalyzer := alerting.NewRiskAnalyzer(repo, alertStore)
	scoreService := scoring.NewService(repo, scoreStore, alertGenerator)

	// Monitoring, caching and rate limiting
	appMetrics := monitoring.NewMetrics()
	scoreCache := cache.New(5 * time.Minute)
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMin: rateLimitPerMin,
		Burst:          rateLimitPerMin / 3,
	})

	// Scheduled risk analysis in the background
	riskCtx, riskCancel := context.WithCancel(context.Background())
	defer riskCancel()
	go func() {
		ticker := time.NewTicker(riskScanInterval)
		defer ticker.Stop()

		for {
			select {
			case <-riskCtx.Done():
				return
			case <-ticker.C:
				report, err := riskAnalyzer.Run(riskCtx, alerting.RuleSetAll)
				if err != nil {
					slog.Error("Scheduled risk analysis failed", "error", err)
					continue
				}
				appMetrics.IncrementRiskScans()
				appMetrics.AddAlertsCreated(report.AlertsCreated)
			}
		}
	}()

	r := gin.New()

	r.Use(monitoring.Middleware(appMetrics))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	if corsOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(corsOrigins, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(limiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"database":  db.GetPoolStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, scoreCache.Stats())
	})

	api := r.Group("/api")

	// Score calculation and retrieval
	api.POST("/projects/:id/score", func(c *gin.Context) {
		calculateScore(c, appMetrics, scoreCache, func(ctx context.Context, id string) (*scoring.ScoreResult, error) {
			return scoreService.CalculateProjectScore(ctx, id)
		})
	})

	api.GET("/projects/:id/score", func(c *gin.Context) {
		currentScore(c, appMetrics, scoreCache, scoreService, database.EntityProject)
	})

	api.GET("/projects/:id/score/history", func(c *gin.Context) {
		scoreHistory(c, scoreService, database.EntityProject)
	})

	api.POST("/products/:id/score", func(c *gin.Context) {
		calculateScore(c, appMetrics, scoreCache, func(ctx context.Context, id string) (*scoring.ScoreResult, error) {
			return scoreService.CalculateProductScore(ctx, id)
		})
	})

	api.GET("/products/:id/score", func(c *gin.Context) {
		currentScore(c, appMetrics, scoreCache, scoreService, database.EntityProduct)
	})

	api.GET("/products/:id/score/history", func(c *gin.Context) {
		scoreHistory(c, scoreService, database.EntityProduct)
	})

	// Alert listing and status transitions
	api.GET("/alerts", func(c *gin.Context) {
		status := c.Query("status")
		if status != "" && !alerting.ValidStatus(status) {
			appErr := errors.NewValidationError(fmt.Sprintf("unknown alert status: %s", status))
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		limit := 100
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
				limit = l
			}
		}

		alerts, err := alertStore.ListAlerts(c.Request.Context(),
			c.Query("entity_type"), c.Query("entity_id"), status, limit)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"alerts": alerts,
			"count":  len(alerts),
		})
	})

	api.PUT("/alerts/:id/status", func(c *gin.Context) {
		var req types.AlertStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if !alerting.ValidStatus(req.Status) {
			appErr := errors.NewValidationError(fmt.Sprintf("unknown alert status: %s", req.Status))
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		alertID := c.Param("id")
		err := alertStore.UpdateStatus(c.Request.Context(), alertID, req.Status)
		if err == sql.ErrNoRows {
			appErr := errors.NewNotFoundError("alert", alertID)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		alert, err := alertStore.GetAlert(c.Request.Context(), alertID)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, alert)
	})

	// On-demand risk analysis
	api.POST("/risk-analysis", func(c *gin.Context) {
		var req types.RiskAnalysisRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				appErr := errors.NewValidationError("invalid request body")
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}
		}

		report, err := riskAnalyzer.Run(c.Request.Context(), req.Type)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		appMetrics.IncrementRiskScans()
		appMetrics.AddAlertsCreated(report.AlertsCreated)

		c.JSON(http.StatusOK, report)
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	riskCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// calculateScore runs one scoring invocation and invalidates the cached
// current score for the entity.
func calculateScore(c *gin.Context, metrics *monitoring.Metrics, scoreCache *cache.Cache, calc func(context.Context, string) (*scoring.ScoreResult, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	entityID := c.Param("id")
	result, err := calc(ctx, entityID)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	metrics.IncrementScoreCalculations()
	scoreCache.Delete(scoreCacheKey(result.EntityKind, entityID))

	c.JSON(http.StatusOK, result)
}

// currentScore serves the current snapshot, cached for a few minutes
func currentScore(c *gin.Context, metrics *monitoring.Metrics, scoreCache *cache.Cache, svc *scoring.Service, entityKind string) {
	entityID := c.Param("id")
	key := scoreCacheKey(entityKind, entityID)

	if data, ok := scoreCache.Get(key); ok {
		metrics.IncrementCacheHits()
		c.Data(http.StatusOK, "application/json", data)
		return
	}
	metrics.IncrementCacheMisses()

	result, err := svc.CurrentScore(c.Request.Context(), entityKind, entityID)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	if data, err := json.Marshal(result); err == nil {
		scoreCache.Set(key, data)
	}

	c.JSON(http.StatusOK, result)
}

func scoreHistory(c *gin.Context, svc *scoring.Service, entityKind string) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	history, err := svc.ScoreHistory(c.Request.Context(), entityKind, c.Param("id"), limit)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity_kind": entityKind,
		"entity_id":   c.Param("id"),
		"history":     history,
	})
}

func scoreCacheKey(entityKind, entityID string) string {
	return "score:" + entityKind + ":" + entityID
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
