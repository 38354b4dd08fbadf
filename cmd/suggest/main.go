package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/pdf-renamer/internal/cache"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/extract"
	"github.com/joseph-ayodele/pdf-renamer/internal/fileaccess"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm/gemini"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm/openai"
)

// suggest asks the configured providers for a name for one PDF, several
// times, to compare answers and see the cache at work.
func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		times      = flag.Int("times", 3, "number of suggestion rounds")
		noCache    = flag.Bool("nocache", false, "clear the cache before each round")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage: suggest [-times N] [-nocache] <path-or-url>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := common.LoadConfigFile(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}
	if key, ok := cfg.Lookup(cfg.AIProvider + ":ApiKey"); !ok || key == "" {
		logger.Error("API key for primary provider is required", "provider", cfg.AIProvider)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	data, err := fileaccess.NewRouter(cfg.Extract.MaxFileBytes, logger).FetchBytes(ctx, path)
	if err != nil {
		logger.Error("fetch", "path", path, "error", err)
		os.Exit(1)
	}
	res, err := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		TessdataDir:   cfg.Extract.TessdataDir,
	}, nil, logger).ExtractText(ctx, data)
	if err != nil {
		logger.Error("extract", "path", path, "error", err)
		os.Exit(1)
	}

	suggestions := cache.NewSuggestionCache(cfg.Pipeline.CacheEntries, logger)
	resolver, err := llm.NewResolver(cfg.AIProvider, []llm.Provider{
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
	}, suggestions, logger)
	if err != nil {
		logger.Error("resolver", "error", err)
		os.Exit(2)
	}

	base := filepath.Base(path)
	for i := 1; i <= *times; i++ {
		if *noCache {
			suggestions.Clear()
		}
		start := time.Now()
		name, err := resolver.SuggestName(ctx, base, res.Text)
		if err != nil {
			logger.Error("suggest.run.failed", "iter", i, "error", err, "ms", time.Since(start).Milliseconds())
			continue
		}
		logger.Info("suggest.run.ok", "iter", i, "basename", base, "suggested", name, "ms", time.Since(start).Milliseconds())
	}
}
