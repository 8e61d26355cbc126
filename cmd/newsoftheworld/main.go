package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NewsOfTheWorld/internal/app"
	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/logging"
)

func main() {
	var (
		mode       = flag.String("mode", config.ModeServe, "run mode: ingest, summarize, digest or serve")
		configPath = flag.String("config", "", "path to the YAML configuration file")
		date       = flag.String("date", "", "window end date as YYYY-MM-DD (default: yesterday)")
		days       = flag.Int("days", 0, "lookback window in days for a single summary")
		category   = flag.String("category", "", "restrict the summary to one category")
		country    = flag.String("country", "", "restrict the summary to one country")
	)
	flag.Parse()

	if err := run(*mode, *configPath, *date, *days, *category, *country); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(mode, configPath, date string, days int, category, country string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(mode); err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level)

	var reference *time.Time
	if date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", date, err)
		}
		reference = &parsed
	}

	var scope domain.SummaryScope
	if category != "" {
		scope.Category = &category
	}
	if country != "" {
		scope.Country = &country
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	switch mode {
	case config.ModeIngest:
		return application.RunIngest(ctx)
	case config.ModeSummarize:
		return application.RunSummarize(ctx, reference, scope, days)
	case config.ModeDigest:
		return application.RunDigest(ctx, reference)
	case config.ModeServe:
		logger.Info("starting scheduled mode")
		return application.Serve(ctx)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
