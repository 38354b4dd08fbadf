package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
	"github.com/joseph-ayodele/pdf-renamer/internal/repository"
)

// Registrar creates Pending records for PDFs it has not seen before.
type Registrar struct {
	files  repository.FileRecordRepository
	logger *slog.Logger
}

func NewRegistrar(files repository.FileRecordRepository, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{files: files, logger: logger}
}

func (r *Registrar) RegisterPath(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, fmt.Errorf("%w: path is required", common.ErrInvalidArgument)
	}

	if !IsURL(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return Result{Path: path}, err
		}
		path = abs
		st, err := os.Stat(path)
		if err != nil {
			return Result{Path: path}, err
		}
		if st.IsDir() {
			return Result{Path: path}, fmt.Errorf("%w: %s is a directory", common.ErrInvalidArgument, path)
		}
	}

	name := displayName(path)
	if !AllowedExt(filepath.Ext(name)) {
		return Result{Path: path}, fmt.Errorf("%w: %s is not a PDF", common.ErrInvalidArgument, name)
	}

	if existing, err := r.files.GetByPath(ctx, path); err == nil {
		return Result{Path: path, RecordID: existing.ID, Existing: true, Status: existing.Status}, nil
	} else if !repository.IsNotFound(err) {
		return Result{Path: path}, err
	}

	rec := entity.NewPendingRecord(name, path)
	if err := r.files.UpsertByPath(ctx, rec); err != nil {
		return Result{Path: path}, err
	}
	r.logger.Info("ingest.registered", "path", path, "record_id", rec.ID)
	return Result{Path: path, RecordID: rec.ID, Status: rec.Status}, nil
}

// RegisterDirectory walks root, skips hidden entries if requested, and
// registers each PDF. Per-file failures are reported in the results.
func (r *Registrar) RegisterDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Result{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		// skip hidden dirs/files if requested
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		res, err := r.RegisterPath(ctx, path)
		if err != nil {
			res.Err = err.Error()
			results = append(results, res)
			stats.Failed++
			return nil
		}
		results = append(results, res)
		if res.Existing {
			stats.Existing++
		} else {
			stats.Registered++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	r.logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"registered", stats.Registered,
		"existing", stats.Existing,
		"failed", stats.Failed,
	)
	return results, stats, nil
}
