package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// pdfToOCR rasterizes each page with pdftoppm and reads it with tesseract.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "pdf-renamer-ocr-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("extract.ocr.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return "", 0, []string{strings.TrimSpace(string(errb))}, fmt.Errorf("pdftoppm: %w", err)
	}

	// pdftoppm names pages prefix-1.png, prefix-2.png, ... zero padded by page count
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("pdftoppm: no pages rendered")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, err := e.tesseract(ctx, img)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(txt)
	}
	return b.String(), len(matches), warnings, nil
}

// tesseract runs tesseract <img> stdout -l <lang>.
func (e *Extractor) tesseract(ctx context.Context, img string) (string, error) {
	args := []string{img, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w: %s", filepath.Base(img), err, strings.TrimSpace(string(errb)))
	}
	return Normalize(string(out)), nil
}
