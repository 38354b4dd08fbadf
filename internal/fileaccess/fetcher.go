// Package fileaccess reads document bytes from wherever a record's path points.
package fileaccess

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
)

// Fetcher returns the bytes behind a file path or URL.
type Fetcher interface {
	FetchBytes(ctx context.Context, path string) ([]byte, error)
}

// Local reads files from disk. MaxBytes > 0 rejects larger files.
type Local struct {
	MaxBytes int64
}

func (l Local) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if l.MaxBytes > 0 {
		st, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if st.Size() > l.MaxBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", common.ErrInvalidArgument, path, st.Size(), l.MaxBytes)
		}
	}
	return io.ReadAll(f)
}

// HTTP downloads http(s) URLs.
type HTTP struct {
	Client   *http.Client
	MaxBytes int64
	Logger   *slog.Logger
}

func (h HTTP) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("get %s: HTTP %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if h.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, h.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if h.MaxBytes > 0 && int64(len(data)) > h.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", common.ErrInvalidArgument, url, h.MaxBytes)
	}
	logger.Debug("fileaccess.http.ok", "url", url, "bytes", len(data), "elapsed_ms", time.Since(start).Milliseconds())
	return data, nil
}

// Router sends http(s) URLs to Remote and everything else to Local.
type Router struct {
	Local  Fetcher
	Remote Fetcher
}

// NewRouter builds a Router over disk and HTTP with a shared size limit.
func NewRouter(maxBytes int64, logger *slog.Logger) *Router {
	return &Router{
		Local:  Local{MaxBytes: maxBytes},
		Remote: HTTP{MaxBytes: maxBytes, Logger: logger},
	}
}

func (r *Router) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return r.Remote.FetchBytes(ctx, path)
	}
	return r.Local.FetchBytes(ctx, strings.TrimPrefix(path, "file://"))
}
