package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"virdispay/internal/adapters/cache"
	"virdispay/internal/adapters/httpclient"
	"virdispay/internal/adapters/payout"
	"virdispay/internal/adapters/postgres"
	"virdispay/internal/api"
	"virdispay/internal/config"
	"virdispay/internal/conversion"
	"virdispay/internal/conversion/handler"
	"virdispay/internal/domain"
	"virdispay/internal/platform/db"
	httpserver "virdispay/internal/platform/http"

	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and the scheduled
// conversion sweep.
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect)
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// External clients
	priceClient := httpclient.NewPriceClient(baseHTTPClient, appCfg.PriceAPI.BaseURL)
	payoutProvider := payout.NewSimulatedProvider(appCfg.Payout.SuccessRate, time.Now().UnixNano())

	// Repositories
	settingsRepo := postgres.NewSettingsRepository(pool)
	conversionRepo := postgres.NewConversionRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)

	// Settings cache
	settingsCache, err := cache.NewSettingsCache(1024)
	if err != nil {
		logrus.WithError(err).Error("Failed to create settings cache")
		return err
	}
	defer settingsCache.Close()

	// Services
	rateCache := conversion.NewRateCache(priceClient, time.Duration(appCfg.Rates.StalenessSeconds)*time.Second)
	settingsService := conversion.NewSettingsService(settingsRepo, settingsCache)
	conversionService := conversion.NewService(rateCache, payoutProvider, conversionRepo, domain.ConversionProvider(appCfg.Payout.Provider))
	historyService := conversion.NewHistoryService(conversionRepo)

	// Scheduled conversion sweep
	scheduler := conversion.NewScheduler(
		paymentRepo, conversionRepo, settingsService, conversionService,
		time.Duration(appCfg.Scheduler.SweepIntervalSec)*time.Second,
	)
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	conversionHandler := handler.NewConversionHandler(settingsService, conversionService, historyService, rateCache, paymentRepo)
	router := api.NewRouter(conversionHandler)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop the scheduler and in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
