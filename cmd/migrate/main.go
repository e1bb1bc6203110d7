package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postly/config"
	logs "postly/internal/infra/log"
	"postly/internal/infra/media"
	"postly/internal/infra/persistence/postgres"
	"postly/internal/usecase"
	"postly/internal/usecase/impl"
	"postly/internal/util"

	"postly/internal/errors"
)

// Supported subcommands:
// - schema: create or update the users and posts tables
// - media:  normalize stored media references and clear dangling ones

func main() {
	schemaCmd := flag.NewFlagSet("schema", flag.ExitOnError)
	mediaCmd := flag.NewFlagSet("media", flag.ExitOnError)
	mediaDryRun := mediaCmd.Bool("dry-run", false, "Report changes without writing them")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "schema":
		_ = schemaCmd.Parse(os.Args[2:])
		err = runSchema(ctx)
	case "media":
		_ = mediaCmd.Parse(os.Args[2:])
		err = runMedia(ctx, os.Stdout, *mediaDryRun)
	case "help", "-h", "--help":
		printUsage()

		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <subcommand> [flags]

Subcommands:
  schema            Create or update the users and posts tables
  media [-dry-run]  Rewrite media references to bare blob names and clear missing ones`)
}

type toolEnv struct {
	cfg    *config.Config
	logger *slog.Logger
}

func loadEnv() (*toolEnv, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	// Tool output goes to stdout; logs stay on stderr.
	logger, err := logs.NewWithWriter(os.Stderr, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	return &toolEnv{cfg: cfg, logger: logger}, nil
}

func runSchema(ctx context.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	db, sqlDB, err := postgres.Open(env.cfg, env.logger)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	start := time.Now()
	if err := postgres.AutoMigrate(ctx, db); err != nil {
		return err
	}
	env.logger.Info("Schema migrated", slog.String("took", util.FormatDuration(time.Since(start))))

	return nil
}

func runMedia(ctx context.Context, out io.Writer, dryRun bool) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	db, sqlDB, err := postgres.Open(env.cfg, env.logger)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	bucket, err := media.OpenBucket(ctx, env.cfg.Media)
	if err != nil {
		return err
	}
	store := media.NewBlobStore(bucket)
	defer store.Close()

	maintenance := impl.NewMediaMaintenanceService(postgres.NewPostRepository(db), store, env.logger)

	start := time.Now()
	report, err := maintenance.NormalizeReferences(ctx, dryRun)
	if report != nil {
		printReport(out, report, dryRun, time.Since(start))
	}

	return err
}

func printReport(out io.Writer, report *usecase.MediaNormalizeReport, dryRun bool, took time.Duration) {
	mode := "applied"
	if dryRun {
		mode = "dry run, nothing written"
	}

	fmt.Fprintf(out, "Media references (%s)\n", mode)
	fmt.Fprintf(out, "  scanned:    %d\n", report.Scanned)
	fmt.Fprintf(out, "  normalized: %d\n", report.Normalized)
	fmt.Fprintf(out, "  cleared:    %d\n", report.Cleared)
	fmt.Fprintf(out, "  unchanged:  %d\n", report.Unchanged)
	fmt.Fprintf(out, "  took:       %s\n", util.FormatDuration(took))
}
