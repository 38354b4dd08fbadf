package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/app"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory of PDFs to rename (required)")
		configPath = flag.String("config", "", "YAML config file (optional)")
		out        = flag.String("out", "", "XLSX report path (optional, defaults to renames.xlsx next to -dir)")
		apply      = flag.Bool("apply", false, "adopt every completed suggestion as the file name")
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "renames.xlsx")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfigFile(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *inmem {
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = ":memory:"
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	logger.Info("starting registration", "dir", *dir)
	results, stats, err := a.Registrar.RegisterDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to register directory", "error", err)
		os.Exit(1)
	}
	logger.Info("registration complete",
		"results", len(results),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"registered", stats.Registered,
		"existing", stats.Existing,
		"failed", stats.Failed)

	pending, err := a.Files.ListByStatus(ctx, constants.StatusPending)
	if err != nil {
		logger.Error("failed to list pending files", "error", err)
		os.Exit(1)
	}

	progress := pipeline.NewProgress()
	a.Pipeline.ProcessFiles(ctx, pending, progress)
	state := progress.Snapshot()

	renamed := 0
	if *apply && ctx.Err() == nil {
		completed, err := a.Files.ListByStatus(ctx, constants.StatusCompleted)
		if err != nil {
			logger.Error("failed to list completed files", "error", err)
			os.Exit(1)
		}
		for _, rec := range completed {
			if err := a.Pipeline.ApplyRename(ctx, rec); err != nil {
				logger.Error("failed to apply rename", "file_path", rec.FilePath, "error", err)
				continue
			}
			renamed++
		}
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := a.Exporter.ExportRenamesXLSX(context.WithoutCancel(ctx), "")
	if err != nil {
		logger.Error("failed to export renames", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	all, err := a.Files.List(context.WithoutCancel(ctx))
	if err != nil {
		logger.Error("failed to list files", "error", err)
		os.Exit(1)
	}
	sum := pipeline.Summarize(all)

	logger.Info("batch processing complete",
		"status", state.CurrentStatus,
		"processed", state.ProcessedFiles,
		"total", state.TotalFiles,
		"renamed", renamed,
		"output_file", *out)

	fmt.Printf("%s\n", state.CurrentStatus)
	fmt.Printf("- Files processed: %d/%d\n", state.ProcessedFiles, state.TotalFiles)
	fmt.Printf("- Completed: %d\n", sum.Completed)
	fmt.Printf("- Errors: %d\n", sum.Errors)
	fmt.Printf("- Pending: %d\n", sum.Pending)
	fmt.Printf("- Renamed: %d\n", sum.Renamed)
	fmt.Printf("- Output: %s\n", *out)
}
