package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/middlewares"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/remote"
	"github.com/ScepterCode/Storemaster-sub000/reorder"
	"github.com/ScepterCode/Storemaster-sub000/syncengine"
	"github.com/ScepterCode/Storemaster-sub000/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// engineHolder gates routes until the engine's backing stores connect.
var engineHolder atomic.Pointer[syncengine.Engine]

func main() {
	port := os.Getenv("STOREMASTER_SYNC_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	r.Use(middlewares.CorrelationIdMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if engineHolder.Load() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Organization-Id", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "X-Correlation-Id")
	corsConfig.AllowCredentials = true

	r.Use(cors.New(corsConfig))
	r.Use(middlewares.AuthMiddleware())
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateRemoteTables(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Error(err)
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	engine, err := buildEngine()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "engine"}).Fatal(err)
	}
	engineHolder.Store(engine)

	runStartupTasks(sigCtx, engine, logger)
	go engine.StartStatusPoller(sigCtx)

	select {
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "server"}).Error(err)
		}
	}
}

func registerRoutes(r *gin.Engine) {
	// The engine is resolved per request so routes registered before the
	// stores connect still pick up the real instance.
	engine := func() *syncengine.Engine { return engineHolder.Load() }

	r.GET("/sync/status", func(c *gin.Context) { engine().StatusHandler()(c) })
	r.POST("/sync", func(c *gin.Context) { engine().SyncAllHandler()(c) })
	r.POST("/sync/:kind", func(c *gin.Context) { engine().SyncEntityHandler()(c) })
	r.POST("/migrations/run", func(c *gin.Context) { engine().RunMigrationsHandler()(c) })
	r.POST("/migrations/multi-tenant", func(c *gin.Context) { engine().MultiTenantMigrationHandler()(c) })

	r.GET("/records/:kind", func(c *gin.Context) { engine().MergedViewHandler()(c) })
	r.POST("/records/:kind", func(c *gin.Context) { engine().CreateRecordHandler()(c) })
	r.PUT("/records/:kind/:id", func(c *gin.Context) { engine().UpdateRecordHandler()(c) })
	r.DELETE("/records/:kind/:id", func(c *gin.Context) { engine().DeleteRecordHandler()(c) })

	predictor := reorder.NewClient()
	r.GET("/inventory/reorder-suggestions", func(c *gin.Context) {
		reorder.SuggestionsHandler(engine(), predictor)(c)
	})

	r.POST("/internal/pubsub/sync", func(c *gin.Context) { engine().PubSubPushHandler()(c) })
}

func buildEngine() (*syncengine.Engine, error) {
	var store localstore.Store
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOCAL_STORE_BACKEND"))) {
	case "file":
		dir := strings.TrimSpace(os.Getenv("LOCAL_STORE_DIR"))
		if dir == "" {
			dir = "./data"
		}
		fileStore, err := localstore.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case "memory":
		store = localstore.NewMemoryStore()
	default:
		store = localstore.NewRedisStore(config.GetRedisDB(), "")
	}

	var adapter remote.Adapter
	if strings.EqualFold(strings.TrimSpace(os.Getenv("REMOTE_BACKEND")), "http") {
		httpAdapter, err := remote.NewHTTPAdapter(os.Getenv("STOREMASTER_API_KEY"))
		if err != nil {
			return nil, err
		}
		adapter = httpAdapter
	} else {
		adapter = remote.NewGormAdapter(config.GetDB())
	}

	policy := syncengine.AssumeSynced
	if config.MigrationAssumeDirty() {
		policy = syncengine.AssumeDirty
	}

	return syncengine.New(syncengine.Config{
		Store:   store,
		Adapter: adapter,
		Logger:  config.GetLogger(),
		Locker:  config.GetRedisLock(),
		Retry:   config.GetSyncRetryConfig(),
		Policy:  policy,
	})
}

// runStartupTasks runs the schema migration and the multi-tenant
// reassignment once per boot for the configured service identity, then
// kicks a first sync pass if anything is pending.
func runStartupTasks(ctx context.Context, engine *syncengine.Engine, logger *logrus.Logger) {
	report := engine.RunMigrations(ctx)
	if !report.AllSuccessful {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("local schema migration incomplete; will retry next boot")
	}

	user := serviceIdentity()
	if user.ID == "" {
		return
	}

	result, err := engine.RunMultiTenantMigration(ctx, user)
	if err != nil {
		config.LogError(logger, "main", "runStartupTasks", "multi-tenant migration", nil, err)
	} else if result.Completed {
		logger.WithFields(logrus.Fields{
			"organizationId": result.OrganizationId,
		}).Info("multi-tenant migration completed; reload organization context")
	}

	go engine.RunStartupSync(ctx, user)
}

// serviceIdentity is the identity used for boot-time migrations and the
// startup sync in single-user deployments.
func serviceIdentity() syncengine.Identity {
	return syncengine.Identity{
		ID:    strings.TrimSpace(os.Getenv("STOREMASTER_USER_ID")),
		Name:  strings.TrimSpace(os.Getenv("STOREMASTER_USER_NAME")),
		Email: strings.TrimSpace(os.Getenv("STOREMASTER_USER_EMAIL")),
		OrgID: strings.TrimSpace(os.Getenv("STOREMASTER_ORG_ID")),
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"status":         c.Writer.Status(),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"latency":        latency.String(),
			"correlation_id": cid,
		}).Info("request")
	}
}
