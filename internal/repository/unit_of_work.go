package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
)

// UnitOfWork stages record changes from concurrent workers and writes them
// in a single transaction on SaveChanges. Staging the same path twice keeps
// the latest record.
type UnitOfWork struct {
	repo   FileRecordRepository
	logger *slog.Logger

	mu     sync.Mutex
	staged []*entity.FileRecord
	byPath map[string]int
}

func NewUnitOfWork(repo FileRecordRepository, logger *slog.Logger) *UnitOfWork {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWork{
		repo:   repo,
		logger: logger,
		byPath: make(map[string]int),
	}
}

// Upsert stages rec for the next SaveChanges.
func (u *UnitOfWork) Upsert(rec *entity.FileRecord) {
	if rec == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if i, ok := u.byPath[rec.FilePath]; ok {
		u.staged[i] = rec
		return
	}
	u.byPath[rec.FilePath] = len(u.staged)
	u.staged = append(u.staged, rec)
}

// Pending returns the number of staged records.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.staged)
}

// SaveChanges commits every staged record in one transaction. When that
// fails each record is retried on its own: records storage rejects are
// dropped and reported in the returned error. If nothing at all could be
// written, storage is treated as unavailable and every record stays staged
// for the next call.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.staged) == 0 {
		return nil
	}
	err := u.repo.UpsertByPath(ctx, u.staged...)
	if err == nil {
		u.logger.Debug("repository.save_changes.ok", "records", len(u.staged))
		u.reset(nil)
		return nil
	}
	u.logger.Warn("repository.save_changes.batch_failed", "records", len(u.staged), "error", err)

	var (
		rejected []*entity.FileRecord
		errs     []error
	)
	for _, rec := range u.staged {
		if recErr := u.repo.UpsertByPath(ctx, rec); recErr != nil {
			rejected = append(rejected, rec)
			errs = append(errs, fmt.Errorf("%s: %w", rec.FilePath, recErr))
		}
	}
	if len(rejected) == len(u.staged) {
		u.logger.Error("repository.save_changes.failed", "records", len(u.staged), "error", err)
		return err
	}
	for i, rec := range rejected {
		u.logger.Error("repository.save_changes.dropped", "file_path", rec.FilePath, "error", errs[i])
	}
	u.logger.Info("repository.save_changes.partial", "saved", len(u.staged)-len(rejected), "dropped", len(rejected))
	u.reset(nil)
	return errors.Join(errs...)
}

// Save writes rec on its own, outside the staged batch. A staged copy of
// the same path is discarded once rec is stored.
func (u *UnitOfWork) Save(ctx context.Context, rec *entity.FileRecord) error {
	if rec == nil {
		return nil
	}
	if err := u.repo.UpsertByPath(ctx, rec); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byPath[rec.FilePath]; ok {
		keep := make([]*entity.FileRecord, 0, len(u.staged)-1)
		for _, s := range u.staged {
			if s.FilePath != rec.FilePath {
				keep = append(keep, s)
			}
		}
		u.reset(keep)
	}
	return nil
}

// reset replaces the staged set. Callers hold mu.
func (u *UnitOfWork) reset(staged []*entity.FileRecord) {
	u.staged = staged
	u.byPath = make(map[string]int, len(staged))
	for i, rec := range staged {
		u.byPath[rec.FilePath] = i
	}
}
