package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config for the Extractor. Empty binaries disable their stage.
type Config struct {
	// Pdftotext is used when the native parser finds no text or fails.
	Pdftotext string

	// Pdftoppm and Tesseract OCR scanned PDFs when both earlier stages come
	// back empty. Both must be set.
	Pdftoppm      string
	Tesseract     string
	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI, default 300
	MaxPages      int // 0 = no limit
}

func (c Config) ocrEnabled() bool { return c.Pdftoppm != "" && c.Tesseract != "" }

// Extractor tries the native parser, then pdftotext, then OCR.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewExtractor builds an Extractor. A nil runner runs real commands.
func NewExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// toolStage runs an external tool over the PDF on disk.
type toolStage struct {
	method string
	run    func(ctx context.Context, path string) (text string, pages int, warnings []string, err error)
}

func (e *Extractor) ExtractText(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()

	text, pages, warnings, err := nativeText(data)
	if err == nil && strings.TrimSpace(text) != "" {
		e.logger.Debug("extract.native.ok", "pages", pages, "chars", len(text))
		return Result{Text: text, Pages: pages, Method: MethodNative, Duration: time.Since(start), Warnings: warnings}, nil
	}
	if err != nil {
		e.logger.Warn("extract.native.failed", "error", err)
	}

	var stages []toolStage
	if e.cfg.Pdftotext != "" {
		stages = append(stages, toolStage{MethodPdftotext, e.pdfToText})
	}
	if e.cfg.ocrEnabled() {
		stages = append(stages, toolStage{MethodOCR, e.pdfToOCR})
	}
	if len(stages) == 0 {
		return Result{Pages: pages, Method: MethodNative, Duration: time.Since(start), Warnings: warnings}, err
	}

	path, cleanup, terr := writeTemp(data)
	if terr != nil {
		return Result{Method: MethodNative, Duration: time.Since(start), Warnings: warnings}, terr
	}
	defer func() {
		if rmErr := cleanup(); rmErr != nil {
			e.logger.Warn("extract.tempfile_cleanup_failed", "path", path, "error", rmErr)
		}
	}()

	res := Result{Method: MethodNative, Pages: pages, Warnings: warnings}
	lastErr := err
	for _, st := range stages {
		e.logger.Info("extract.fallback", "method", st.method, "pages", pages)
		stext, spages, swarnings, serr := st.run(ctx, path)
		res.Method = st.method
		res.Warnings = append(res.Warnings, swarnings...)
		if serr != nil {
			e.logger.Warn("extract.stage.failed", "method", st.method, "error", serr)
			lastErr = serr
			continue
		}
		if spages > 0 {
			res.Pages = spages
		}
		if strings.TrimSpace(stext) != "" {
			res.Text = stext
			res.Duration = time.Since(start)
			return res, nil
		}
		lastErr = nil
	}
	res.Duration = time.Since(start)
	return res, lastErr
}

// writeTemp stores data in a temp .pdf file for the external tools.
func writeTemp(data []byte) (string, func() error, error) {
	f, err := os.CreateTemp("", "pdf-renamer-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() error { return os.Remove(path) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
