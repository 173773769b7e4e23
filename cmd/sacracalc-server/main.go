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

	"github.com/iwvelando/sacracalc/internal/app"
	"github.com/iwvelando/sacracalc/internal/config"
	"github.com/iwvelando/sacracalc/internal/logging"
	"github.com/iwvelando/sacracalc/internal/metrics"
	"github.com/iwvelando/sacracalc/internal/server"
	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/iwvelando/sacracalc/pkg/output"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	maxRequestSize := flag.String("max-request-size", "", "request body limit override, e.g. 64K")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	offline := flag.Bool("offline", false, "skip live price lookups and always use the fallback price")
	flag.Parse()

	configPath := *configLocation
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) && configPath == constants.DefaultConfigFile {
		configPath = ""
	}

	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", configPath, err)
		os.Exit(1)
	}

	serverCfg, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}
	if err := serverCfg.ApplyOverrides(*address, *maxRequestSize); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid server flags\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(mergeLogging(conf.Logging, serverCfg.Logging), *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, conf, serverCfg, app.Options{Offline: *offline}); err != nil {
		logger.Error("server stopped with error",
			zap.String("op", "main"),
			zap.Error(err),
		)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, conf *config.Configuration, serverCfg *server.Config, opts app.Options) error {
	calculator, err := app.New(ctx, logger, conf, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := calculator.Close(); err != nil {
			logger.Warn("failed to release resources",
				zap.String("op", "main.run"),
				zap.Error(err),
			)
		}
	}()

	handler := server.NewHandler(logger, calculator, server.Options{
		MaxRequestSize: serverCfg.RequestSizeBytes(),
		Version:        version,
		Labels: output.Labels{
			AssetSymbol: conf.Assumptions.AssetSymbol,
			UnitName:    conf.Assumptions.SmallestUnitName,
		},
		Metrics: metrics.NewRecorder(),
	})

	srv := &http.Server{
		Addr:              serverCfg.Address,
		Handler:           handler,
		ReadTimeout:       serverCfg.ReadTimeout,
		WriteTimeout:      serverCfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "main.run"),
			zap.String("address", serverCfg.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.String("op", "main.run"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// mergeLogging lets the server config override the shared logging settings.
func mergeLogging(base, override config.LoggingConfig) config.LoggingConfig {
	if override.Level != "" {
		base.Level = override.Level
	}
	if override.Format != "" {
		base.Format = override.Format
	}
	if override.OutputFile != "" {
		base.OutputFile = override.OutputFile
	}
	return base
}
