package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/pdf-renamer/internal/cache"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/filename"
)

// SuggestionError is returned when neither the primary nor the fallback
// provider produced a name. It matches common.ErrSuggestion and both causes.
type SuggestionError struct {
	Primary   error
	Secondary error
}

func (e *SuggestionError) Error() string {
	var b strings.Builder
	b.WriteString(common.ErrSuggestion.Error())
	if e.Primary != nil {
		b.WriteString(": primary: ")
		b.WriteString(e.Primary.Error())
	}
	if e.Secondary != nil {
		b.WriteString("; fallback: ")
		b.WriteString(e.Secondary.Error())
	}
	return b.String()
}

func (e *SuggestionError) Unwrap() []error {
	errs := []error{common.ErrSuggestion}
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Secondary != nil {
		errs = append(errs, e.Secondary)
	}
	return errs
}

// Resolver turns document text into a sanitized file name. It consults the
// cache first, then the configured provider, then the other one.
type Resolver struct {
	primary   Provider
	secondary Provider // nil when only one provider is registered
	cache     *cache.SuggestionCache
	logger    *slog.Logger
}

// NewResolver picks the provider named primary from providers; the first
// other provider becomes the fallback.
func NewResolver(primary string, providers []Provider, c *cache.SuggestionCache, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.NewSuggestionCache(0, logger)
	}

	r := &Resolver{cache: c, logger: logger}
	for _, p := range providers {
		if p == nil {
			continue
		}
		switch {
		case r.primary == nil && strings.EqualFold(p.Name(), primary):
			r.primary = p
		case r.secondary == nil && !strings.EqualFold(p.Name(), primary):
			r.secondary = p
		}
	}
	if r.primary == nil {
		return nil, common.ConfigError("AIProvider %q has no registered client", primary)
	}
	return r, nil
}

// Primary returns the name of the provider tried first.
func (r *Resolver) Primary() string { return r.primary.Name() }

// SuggestName returns a sanitized .pdf name for content.
func (r *Resolver) SuggestName(ctx context.Context, fileName, content string) (string, error) {
	if s, ok := r.cache.Get(content); ok {
		r.logger.Debug("llm.suggest.cache_hit", "file", fileName)
		return s, nil
	}

	if !r.primary.Configured() {
		return "", common.ConfigError("%s:ApiKey is not configured", r.primary.Name())
	}

	req := SuggestRequest{FileName: fileName, Content: content}
	start := time.Now()

	name, primaryErr := r.attempt(ctx, r.primary, req)
	if primaryErr != nil {
		r.logger.Warn("llm.suggest.primary_failed",
			"provider", r.primary.Name(), "file", fileName, "error", primaryErr)

		if r.secondary == nil {
			return "", &SuggestionError{Primary: primaryErr}
		}

		var secondaryErr error
		if !r.secondary.Configured() {
			secondaryErr = common.ConfigError("%s:ApiKey is not configured", r.secondary.Name())
		} else {
			name, secondaryErr = r.attempt(ctx, r.secondary, req)
		}
		if secondaryErr != nil {
			r.logger.Error("llm.suggest.failed",
				"file", fileName,
				"primary_error", primaryErr,
				"fallback_error", secondaryErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return "", &SuggestionError{Primary: primaryErr, Secondary: secondaryErr}
		}
	}

	r.cache.Put(content, name)
	r.logger.Info("llm.suggest.ok",
		"file", fileName,
		"suggested", name,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return name, nil
}

func (r *Resolver) attempt(ctx context.Context, p Provider, req SuggestRequest) (string, error) {
	raw, err := p.SuggestName(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Name(), err)
	}
	name, err := filename.Sanitize(raw)
	if err != nil {
		if errors.Is(err, common.ErrInvalidArgument) {
			return "", fmt.Errorf("%s: %w: empty suggestion", p.Name(), common.ErrProviderResponse)
		}
		return "", err
	}
	return name, nil
}
