package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/sacracalc/internal/app"
	"github.com/iwvelando/sacracalc/internal/config"
	"github.com/iwvelando/sacracalc/internal/logging"
	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/iwvelando/sacracalc/pkg/datetime"
	"github.com/iwvelando/sacracalc/pkg/i18n"
	"github.com/iwvelando/sacracalc/pkg/output"
	"github.com/iwvelando/sacracalc/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	amount := flag.Float64("amount", 0, "fiat amount to project (required)")
	currency := flag.String("currency", constants.DefaultCurrency, "currency the amount is held in")
	years := flag.Int("years", 0, "whole years of the horizon")
	months := flag.Int("months", 0, "additional months of the horizon")
	horizonFlag := flag.String("horizon", "", "horizon such as 2y6m, overrides -years and -months")
	langFlag := flag.String("lang", "", "output language override: en, es")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	offline := flag.Bool("offline", false, "skip the live price lookup and use the fallback price")
	flag.Parse()

	// The default config file is optional; an explicit -config is not.
	configPath := *configLocation
	if !flagSet("config") {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			configPath = ""
		}
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", configPath, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	locale := conf.Output.Locale
	if *langFlag != "" {
		locale = *langFlag
	}
	tag, err := i18n.ParseLocale(locale)
	if err != nil {
		logger.Fatal("invalid output language",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	horizon, err := resolveHorizon(*horizonFlag, *years, *months)
	if err != nil {
		logger.Fatal("invalid horizon",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calc, err := calculate(ctx, logger, conf, app.Options{Offline: *offline}, app.Input{
		FiatAmount:   *amount,
		CurrencyCode: *currency,
		Years:        horizon.Years,
		Months:       horizon.Months,
	})
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	report := output.Report{
		Result: calc.Result,
		Quote:  calc.Quote,
		Labels: output.Labels{
			AssetSymbol: conf.Assumptions.AssetSymbol,
			UnitName:    conf.Assumptions.SmallestUnitName,
		},
	}
	if err := output.Write(os.Stdout, outputFormat, report, tag); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func calculate(ctx context.Context, logger *zap.Logger, conf *config.Configuration, opts app.Options, in app.Input) (app.Calculation, error) {
	a, err := app.New(ctx, logger, conf, opts)
	if err != nil {
		return app.Calculation{}, err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to release resources",
				zap.String("op", "main.calculate"),
				zap.Error(err),
			)
		}
	}()

	return a.Calculate(ctx, in)
}

func resolveHorizon(value string, years, months int) (datetime.Horizon, error) {
	var (
		horizon datetime.Horizon
		err     error
	)
	if value != "" {
		horizon, err = datetime.ParseHorizon(value)
	} else {
		horizon, err = datetime.NewHorizon(years, months)
	}
	if err != nil {
		return datetime.Horizon{}, err
	}
	return horizon, horizon.Validate()
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
