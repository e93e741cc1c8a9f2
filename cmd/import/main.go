package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gridsight/gridsight/internal/config"
	"github.com/gridsight/gridsight/internal/domain"
	"github.com/gridsight/gridsight/internal/logger"
	"github.com/gridsight/gridsight/internal/notify"
	"github.com/gridsight/gridsight/internal/repository"
	"github.com/gridsight/gridsight/internal/service"
	"github.com/gridsight/gridsight/internal/sqldump"
	"github.com/gridsight/gridsight/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "gridsight-import",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	dumpFile := flag.String("file", "", "Path to the legacy SQL dump file")
	inspect := flag.Bool("inspect", false, "Print dump tables, row counts, and sample rows without importing")
	samples := flag.Int("samples", 3, "Sample rows per table in inspect mode")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *dumpFile == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file <dump.sql> [-inspect] [-config <path>]")
		os.Exit(2)
	}

	if *inspect {
		if err := inspectDump(*dumpFile, *samples); err != nil {
			appLogger.WithError(err).Fatal("Failed to inspect dump")
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout, appLogger)

	// The CLI always imports local files, regardless of the configured
	// API storage backend.
	importService := service.NewImportService(
		db,
		repository.NewJobRepository(db),
		storage.NewLocalStorage(),
		notifier,
		appLogger,
		service.ImportConfig{
			ProgressEvery:       cfg.Import.ProgressEvery,
			MaxDumpSizeMB:       cfg.Import.MaxDumpSizeMB,
			DefaultOrgCode:      cfg.Import.DefaultOrgCode,
			DefaultOrgName:      cfg.Import.DefaultOrgName,
			PlaceholderPassword: cfg.Import.PlaceholderPassword,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	job, err := importService.CreateJob(ctx, domain.JobKindSQLDump, *dumpFile, nil)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create import job")
	}

	if err := importService.Run(ctx, job.ID); err != nil {
		appLogger.WithError(err).Fatal("Import did not complete")
	}

	finished, err := importService.GetJob(context.Background(), job.ID)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to reload job")
	}
	appLogger.WithFields(logger.Fields{
		logger.FieldJobID: finished.ID,
		"processed":       finished.ProcessedRecords,
		"skipped":         finished.SkippedRecords,
		"result":          finished.Result,
		"duration":        finished.DurationString(),
	}).Info("Import completed")
}

// inspectDump parses the dump and prints what the importer would see,
// for sizing up a legacy file before committing to an import.
func inspectDump(path string, samples int) error {
	store, err := sqldump.Parse(path)
	if err != nil {
		return err
	}

	for _, name := range store.TableNames() {
		fmt.Printf("%s: %d rows\n", name, store.RowCount(name))
		for i, row := range store.SampleOf(name, samples) {
			cols := make([]string, 0, len(row))
			for col := range row {
				cols = append(cols, col)
			}
			sort.Strings(cols)
			fmt.Printf("  [%d]", i)
			for _, col := range cols {
				fmt.Printf(" %s=%s", col, row[col].GoString())
			}
			fmt.Println()
		}
	}
	return nil
}
