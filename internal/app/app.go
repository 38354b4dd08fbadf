// Package app assembles the renamer from configuration for the binaries.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/pdf-renamer/internal/cache"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/export"
	"github.com/joseph-ayodele/pdf-renamer/internal/extract"
	"github.com/joseph-ayodele/pdf-renamer/internal/fileaccess"
	"github.com/joseph-ayodele/pdf-renamer/internal/ingest"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm/gemini"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm/openai"
	"github.com/joseph-ayodele/pdf-renamer/internal/pipeline"
	repo "github.com/joseph-ayodele/pdf-renamer/internal/repository"
)

// App holds the wired components.
type App struct {
	DB        *repo.DB
	Files     repo.FileRecordRepository
	Store     *repo.UnitOfWork
	Cache     *cache.SuggestionCache
	Resolver  *llm.Resolver
	Pipeline  *pipeline.Pipeline
	Registrar *ingest.Registrar
	Exporter  *export.Service

	logger *slog.Logger
}

// Build opens storage and wires every component from cfg. cfg must
// already be validated.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := repo.Open(ctx, repo.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	files := repo.NewFileRecordRepository(db, logger)
	store := repo.NewUnitOfWork(files, logger)
	suggestions := cache.NewSuggestionCache(cfg.Pipeline.CacheEntries, logger)

	providers := []llm.Provider{
		openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAI.ApiKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger),
		gemini.NewClient(gemini.Config{
			APIKey:      cfg.Gemini.ApiKey,
			BaseURL:     cfg.Gemini.BaseURL,
			Model:       cfg.Gemini.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger),
	}
	for _, p := range providers {
		if !p.Configured() {
			logger.Warn("AI provider has no API key", "provider", p.Name())
		}
	}
	resolver, err := llm.NewResolver(cfg.AIProvider, providers, suggestions, logger)
	if err != nil {
		repo.Close(db, logger)
		return nil, err
	}

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		TessdataDir:   cfg.Extract.TessdataDir,
	}, nil, logger)
	fetcher := fileaccess.NewRouter(cfg.Extract.MaxFileBytes, logger)
	pipe := pipeline.New(fetcher, extractor, resolver, store, logger, pipeline.WithBatchSize(cfg.Pipeline.BatchSize))

	logger.Info("app wired",
		"ai_provider", resolver.Primary(),
		"db_driver", db.Dialect(),
		"batch_size", cfg.Pipeline.BatchSize,
		"pdftotext", cfg.Extract.Pdftotext != "",
		"ocr", cfg.Extract.Pdftoppm != "" && cfg.Extract.Tesseract != "",
	)

	return &App{
		DB:        db,
		Files:     files,
		Store:     store,
		Cache:     suggestions,
		Resolver:  resolver,
		Pipeline:  pipe,
		Registrar: ingest.NewRegistrar(files, logger),
		Exporter:  export.NewService(files, logger),
		logger:    logger,
	}, nil
}

// HealthCheck pings storage.
func (a *App) HealthCheck(ctx context.Context) error {
	return repo.HealthCheck(ctx, a.DB, 3*time.Second, a.logger)
}

// Close flushes staged records and closes storage.
func (a *App) Close() {
	if a.Store.Pending() > 0 {
		if err := a.Store.SaveChanges(context.Background()); err != nil {
			a.logger.Error("final commit failed", "error", err)
		}
	}
	repo.Close(a.DB, a.logger)
}
