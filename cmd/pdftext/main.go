package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/pdf-renamer/internal/cache"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/extract"
	"github.com/joseph-ayodele/pdf-renamer/internal/fileaccess"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "pdftext <path-or-url>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data, err := fileaccess.NewRouter(cfg.Extract.MaxFileBytes, logger).FetchBytes(ctx, path)
	if err != nil {
		logger.Error("fetch failed", "path", path, "error", err)
		os.Exit(1)
	}

	x := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		TessdataDir:   cfg.Extract.TessdataDir,
	}, nil, logger)
	res, err := x.ExtractText(ctx, data)
	if err != nil {
		logger.Error("text extraction failed", "error", err, "warnings", res.Warnings, "duration_ms", res.Duration.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
		"cache_key", cache.HashContent(res.Text))
	fmt.Println(res.Text)
}
