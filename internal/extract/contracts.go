package extract

import (
	"context"
	"time"
)

// TextExtractor turns PDF bytes into plain text, pages in order.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Method   string // MethodNative | MethodPdftotext | MethodOCR
	Duration time.Duration
	Warnings []string
}

const (
	MethodNative    = "pdf-native"
	MethodPdftotext = "pdftotext"
	MethodOCR       = "pdf-ocr"
)
