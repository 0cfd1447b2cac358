package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/internal/catalog"
	"github.com/iwvelando/build-estimator/internal/config"
	"github.com/iwvelando/build-estimator/internal/logging"
	"github.com/iwvelando/build-estimator/internal/server"
	"github.com/iwvelando/build-estimator/internal/storage"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to estimator configuration file (prices, financing, storage)")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		logging.Fatal(fmt.Sprintf("failed to load server configuration at %s", *serverConfigLocation), err)
	}
	if *address != "" {
		serverConf.Address = *address
	}

	conf := config.DefaultConfiguration()
	if _, statErr := os.Stat(*configLocation); !errors.Is(statErr, fs.ErrNotExist) {
		conf, err = config.LoadConfiguration(*configLocation)
		if err != nil {
			logging.Fatal(fmt.Sprintf("failed to load configuration at %s", *configLocation), err)
		}
	}

	logger, err := logging.New(serverConf.Logging, *logLevel)
	if err != nil {
		logging.Fatal("failed to initialize logger", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	repo, err := storage.Open(context.Background(), conf.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open budget storage",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	sessions := budget.NewSessions(repo, logger)
	sessions.StartEviction(serverConf.SessionIdle()/2, serverConf.SessionIdle())
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Warn("failed to close budget storage",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	handler := server.NewHandler(logger, catalog.New(logger, conf.CatalogSettings()), sessions,
		serverConf.BodySizeBytes(), version)

	if serverConf.RateLimit.Requests > 0 {
		limiter := server.NewRateLimiter(serverConf.RateLimit.Requests, serverConf.RateWindow())
		defer limiter.Stop()
		handler = server.RateLimitMiddleware(limiter, logger, handler)
	}

	srv := &http.Server{
		Addr:         serverConf.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("listening on %s", serverConf.Address),
			zap.String("op", "main"),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	case <-quit:
		logger.Info("shutting down server",
			zap.String("op", "main"),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
