package extract

import (
	"context"
	"fmt"
	"strings"
)

// pdfToText runs pdftotext -layout -enc UTF-8 -eol unix <path> -.
func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{strings.TrimSpace(string(errb))}, fmt.Errorf("pdftotext: %w", err)
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	text = strings.TrimRight(text, "\f\n")
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}
