package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	analyticsrepo "campus-energy/internal/analytics/infrastructure/postgres"
	"campus-energy/internal/config"
	"campus-energy/internal/observability/metrics"
	pipeline "campus-energy/internal/pipeline/application"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	flags := flag.NewFlagSet("campus-energy", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML config (defaults to $ENERGY_CONFIG)")
	inputDir := flags.String("input", "", "directory holding meter CSV exports")
	outputDir := flags.String("output", "", "directory for reports")
	workers := flags.Int("workers", 0, "parallel file loads")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("event=config_error error=%v", err)
		return exitUsage
	}
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		logger.Printf("event=config_error error=%v", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics.New()),
	}
	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			logger.Printf("event=db_error error=%v", err)
			return exitFailed
		}
		defer db.Close()
		repo := analyticsrepo.NewStatisticRepository(db, analyticsrepo.WithTablePrefix(cfg.Database.TablePrefix))
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Printf("event=db_error error=%v", err)
			return exitFailed
		}
		opts = append(opts, pipeline.WithSink(repo))
	}

	runner, err := pipeline.NewRunner(cfg, opts...)
	if err != nil {
		logger.Printf("event=config_error error=%v", err)
		return exitUsage
	}
	result, err := runner.Run(ctx)
	if err != nil {
		logger.Printf("event=run_error error=%v", err)
		return exitFailed
	}
	if result.Status == pipeline.StatusNoData {
		fmt.Fprintf(os.Stdout, "No valid data found in %s; no reports written.\n", cfg.InputDir)
		return exitOK
	}
	fmt.Fprintf(os.Stdout, "Processed %d rows for %d buildings; reports in %s\n",
		result.Corpus.Len(), len(result.Tables.Summary), cfg.OutputDir)
	return exitOK
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}
