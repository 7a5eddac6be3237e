package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/collegebuddy/api/api"
	"github.com/collegebuddy/api/config"
	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/router"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/cron"
	"github.com/collegebuddy/api/services/mail"
	"github.com/collegebuddy/api/services/payment"
	"github.com/collegebuddy/api/services/storage"
	"github.com/collegebuddy/api/utils/cache"
	"github.com/collegebuddy/api/utils/logger"
	"go.uber.org/zap"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	if err := logger.Init(getEnv.IsProduction()); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.L()

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv)
	if err != nil {
		log.Error("check whether the database is running (make docker-up or make db-up)")
		return err
	}

	if err := store.Init(); err != nil {
		log.Error("failed to initialize database tables")
		return err
	}

	infra := buildInfra(getEnv, log)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(store.GetDB(), services.NewNotificationService(store.GetDB()))
		if err := cronManager.Start(); err != nil {
			// the API still serves without the cleanup jobs
			log.Warn("failed to start cron jobs", zap.Error(err))
			cronManager = nil
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if closer, ok := infra.Cache.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))

	// Setup Routes
	if err := router.SetupRoutes(server.GetEngine(), store, getEnv, infra); err != nil {
		return err
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	// Get the PORT & Start the Server
	return server.Run()
}

// buildInfra connects the optional external services. Each one degrades to an
// in-process stand-in when it is not configured or not reachable.
func buildInfra(env *config.EnviornmentVariable, log *zap.Logger) router.Infra {
	infra := router.Infra{
		Mailer: mail.New(env),
		Files:  storage.Disabled{},
	}

	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		infra.Cache = cache.NewMemoryCache()
	} else {
		infra.Cache = redisCache
	}

	spacesConfig := storage.ConfigFromEnv(env)
	if spacesConfig.IsConfigured() {
		files, err := storage.NewSpacesStore(spacesConfig)
		if err != nil {
			log.Warn("object storage unavailable, note uploads disabled", zap.Error(err))
		} else {
			infra.Files = files
		}
	} else {
		log.Warn("DO_SPACES_* not set, note uploads disabled")
	}

	if env.RAZORPAY_KEY_ID != "" && env.RAZORPAY_KEY_SECRET != "" {
		infra.Orders = payment.NewRazorpayClient(payment.RazorpayConfig{
			KeyID:     env.RAZORPAY_KEY_ID,
			KeySecret: env.RAZORPAY_KEY_SECRET,
			BaseURL:   env.RAZORPAY_BASE_URL,
		})
	} else {
		log.Warn("razorpay credentials not set, checkout disabled")
	}

	return infra
}
