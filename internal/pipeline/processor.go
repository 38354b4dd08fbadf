// Package pipeline renames PDFs in small concurrent batches.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
	"github.com/joseph-ayodele/pdf-renamer/internal/extract"
	"github.com/joseph-ayodele/pdf-renamer/internal/fileaccess"
	"github.com/joseph-ayodele/pdf-renamer/internal/filename"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm"
)

// Store stages record changes and commits them together. Save writes one
// record immediately without touching the staged batch.
type Store interface {
	Upsert(rec *entity.FileRecord)
	SaveChanges(ctx context.Context) error
	Save(ctx context.Context, rec *entity.FileRecord) error
}

// errCancelled marks a file abandoned because the run was cancelled.
var errCancelled = errors.New("cancelled")

// Pipeline fetches, extracts and names files, a batch at a time.
type Pipeline struct {
	fetcher   fileaccess.Fetcher
	extractor extract.TextExtractor
	suggester llm.NameSuggester
	store     Store
	logger    *slog.Logger
	batchSize int
}

type Option func(*Pipeline)

// WithBatchSize sets how many files run concurrently.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func New(fetcher fileaccess.Fetcher, extractor extract.TextExtractor, suggester llm.NameSuggester, store Store, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		suggester: suggester,
		store:     store,
		logger:    logger,
		batchSize: constants.DefaultBatchSize,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessFiles names every Pending record. Files of a batch run
// concurrently and the batch is committed once all of them finish.
// Failures are recorded on the file. Cancelling ctx stops new batches
// and leaves interrupted files Pending. A nil progress is allowed.
func (p *Pipeline) ProcessFiles(ctx context.Context, records []*entity.FileRecord, progress *Progress) {
	if progress == nil {
		progress = NewProgress()
	}
	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	logger := p.logger.With("run_id", runID)

	pending := make([]*entity.FileRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil && rec.Status == constants.StatusPending {
			pending = append(pending, rec)
		}
	}

	start := time.Now()
	progress.Initialize(len(pending), p.batchSize)
	logger.Info("pipeline.start", "files", len(records), "pending", len(pending), "batch_size", p.batchSize)

	batches := 0
	for i := 0; i < len(pending); i += p.batchSize {
		if ctx.Err() != nil {
			break
		}
		batch := pending[i:min(i+p.batchSize, len(pending))]
		batches++
		progress.StartBatch(len(batch))
		logger.Debug("pipeline.batch.start", "batch", batches, "files", len(batch))

		var wg sync.WaitGroup
		for _, rec := range batch {
			wg.Add(1)
			go func(rec *entity.FileRecord) {
				defer wg.Done()
				p.processFile(ctx, rec, progress, logger)
			}(rec)
		}
		wg.Wait()

		// Commit even when cancelled so finished files are not lost.
		if err := p.store.SaveChanges(context.WithoutCancel(ctx)); err != nil {
			logger.Error("pipeline.batch.commit_failed", "batch", batches, "error", err)
		}
	}

	if ctx.Err() != nil {
		progress.Cancel()
		logger.Warn("pipeline.cancelled", "batches", batches, "elapsed_ms", time.Since(start).Milliseconds())
		return
	}
	progress.Complete()
	logger.Info("pipeline.done", "batches", batches, "elapsed_ms", time.Since(start).Milliseconds())
}

func (p *Pipeline) processFile(ctx context.Context, rec *entity.FileRecord, progress *Progress, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline.file.panic", "file_path", rec.FilePath, "panic", r)
			rec.Status = constants.StatusError
			rec.SuggestedName = fmt.Sprintf("internal error: %v", r)
			p.store.Upsert(rec)
			progress.Update(rec.FileName, rec.Status)
		}
	}()

	rec.Status = constants.StatusProcessing
	progress.Update(rec.FileName, rec.Status)

	name, err := p.suggest(ctx, rec)
	switch {
	case errors.Is(err, errCancelled):
		rec.Status = constants.StatusPending
		logger.Info("pipeline.file.cancelled", "file_path", rec.FilePath)
		return
	case err != nil:
		rec.Status = constants.StatusError
		rec.SuggestedName = err.Error()
		logger.Warn("pipeline.file.failed", "file_path", rec.FilePath, "error", err)
	default:
		rec.Status = constants.StatusCompleted
		rec.SuggestedName = name
		logger.Info("pipeline.file.ok", "file_path", rec.FilePath, "suggested", name)
	}
	p.store.Upsert(rec)
	progress.Update(rec.FileName, rec.Status)
}

// suggest runs the collaborators without cancellation so in-flight calls
// finish; ctx is checked after each of them.
func (p *Pipeline) suggest(ctx context.Context, rec *entity.FileRecord) (string, error) {
	work := context.WithoutCancel(ctx)

	data, err := p.fetcher.FetchBytes(work, rec.FilePath)
	if ctx.Err() != nil {
		return "", errCancelled
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrReadFile, err)
	}
	if len(data) == 0 {
		return "", common.ErrEmptyFile
	}

	res, err := p.extractor.ExtractText(work, data)
	if ctx.Err() != nil {
		return "", errCancelled
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrNoTextExtracted, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", common.ErrNoTextExtracted
	}

	name, err := p.suggester.SuggestName(work, rec.FileName, res.Text)
	if ctx.Err() != nil {
		return "", errCancelled
	}
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(filename.StripIllegal(name))
	if name == "" {
		return "", common.ErrNoSuggestion
	}
	return name, nil
}

// ApplyRename adopts the suggested name of a Completed record and saves
// that record alone, so a batch in flight is not committed early.
// If saving fails the record is marked Error and an ErrRename is returned.
func (p *Pipeline) ApplyRename(ctx context.Context, rec *entity.FileRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", common.ErrInvalidArgument)
	}
	if rec.Status != constants.StatusCompleted || strings.TrimSpace(rec.SuggestedName) == "" {
		return fmt.Errorf("%w: %s is %s, not a completed suggestion", common.ErrInvalidArgument, rec.FilePath, rec.Status)
	}

	rec.FileName = filename.WithPDFExtension(rec.SuggestedName)
	rec.Status = constants.StatusRenamed
	if err := p.store.Save(ctx, rec); err != nil {
		rec.Status = constants.StatusError
		p.logger.Error("pipeline.rename.failed", "file_path", rec.FilePath, "error", err)
		return fmt.Errorf("%w: %s: %w", common.ErrRename, rec.FilePath, err)
	}
	p.logger.Info("pipeline.rename.ok", "file_path", rec.FilePath, "file_name", rec.FileName)
	return nil
}
