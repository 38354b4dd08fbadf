package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
)

type FileRecordRepository interface {
	List(ctx context.Context) ([]*entity.FileRecord, error)
	ListByStatus(ctx context.Context, status constants.FileStatus) ([]*entity.FileRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.FileRecord, error)
	GetByPath(ctx context.Context, path string) (*entity.FileRecord, error)
	// UpsertByPath inserts or updates every record in one transaction,
	// filling in ID and timestamps on the passed records.
	UpsertByPath(ctx context.Context, records ...*entity.FileRecord) error
}

type fileRecordRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewFileRecordRepository(db *DB, logger *slog.Logger) FileRecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileRecordRepo{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *fileRecordRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

func (r *fileRecordRepo) selectRecords() *entsql.Selector {
	b := r.builder()
	return b.Select(fileRecordColumns...).From(b.Table(fileRecordsTable))
}

func (r *fileRecordRepo) List(ctx context.Context) ([]*entity.FileRecord, error) {
	q, args := r.selectRecords().OrderBy(entsql.Asc(colCreatedAt), entsql.Asc(colFilePath)).Query()
	rows, err := r.query(ctx, r.db.Driver, q, args)
	if err != nil {
		r.logger.Error("failed to list file records", "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *fileRecordRepo) ListByStatus(ctx context.Context, status constants.FileStatus) ([]*entity.FileRecord, error) {
	q, args := r.selectRecords().
		Where(entsql.EQ(colStatus, string(status))).
		OrderBy(entsql.Asc(colCreatedAt), entsql.Asc(colFilePath)).
		Query()
	rows, err := r.query(ctx, r.db.Driver, q, args)
	if err != nil {
		r.logger.Error("failed to list file records by status", "status", status, "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *fileRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.FileRecord, error) {
	q, args := r.selectRecords().Where(entsql.EQ(colID, id.String())).Query()
	return r.one(ctx, r.db.Driver, q, args, "id", id.String())
}

func (r *fileRecordRepo) GetByPath(ctx context.Context, path string) (*entity.FileRecord, error) {
	q, args := r.selectRecords().Where(entsql.EQ(colFilePath, path)).Query()
	return r.one(ctx, r.db.Driver, q, args, "file_path", path)
}

func (r *fileRecordRepo) UpsertByPath(ctx context.Context, records ...*entity.FileRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("failed to rollback upsert", "error", rbErr)
			}
		}
	}()

	now := r.now().UTC()
	for _, rec := range records {
		if err = r.upsertOne(ctx, tx, rec, now); err != nil {
			r.logger.Error("failed to upsert file record", "file_path", rec.FilePath, "error", err)
			return fmt.Errorf("%w: upsert %s: %w", common.ErrDatabase, rec.FilePath, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *fileRecordRepo) upsertOne(ctx context.Context, tx dialect.Tx, rec *entity.FileRecord, now time.Time) error {
	q, args := r.builder().Select(colID, colCreatedAt).
		From(r.builder().Table(fileRecordsTable)).
		Where(entsql.EQ(colFilePath, rec.FilePath)).
		Query()

	var rows entsql.Rows
	if err := tx.Query(ctx, q, args, &rows); err != nil {
		return err
	}
	var (
		existingID string
		createdAt  int64
		found      bool
	)
	if rows.Next() {
		if err := rows.Scan(&existingID, &createdAt); err != nil {
			_ = rows.Close()
			return err
		}
		found = true
	}
	if err := rows.Close(); err != nil {
		return err
	}

	if found {
		id, err := uuid.Parse(existingID)
		if err != nil {
			return fmt.Errorf("stored id %q: %w", existingID, err)
		}
		uq, uargs := r.builder().Update(fileRecordsTable).
			Set(colFileName, rec.FileName).
			Set(colSuggestedName, rec.SuggestedName).
			Set(colStatus, string(rec.Status)).
			Set(colUpdatedAt, now.UnixMilli()).
			Where(entsql.EQ(colID, existingID)).
			Query()
		if err := tx.Exec(ctx, uq, uargs, nil); err != nil {
			return err
		}
		rec.ID = id
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		rec.UpdatedAt = now
		return nil
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	iq, iargs := r.builder().Insert(fileRecordsTable).
		Columns(fileRecordColumns...).
		Values(rec.ID.String(), rec.FileName, rec.FilePath, rec.SuggestedName, string(rec.Status), now.UnixMilli(), now.UnixMilli()).
		Query()
	if err := tx.Exec(ctx, iq, iargs, nil); err != nil {
		return err
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

func (r *fileRecordRepo) one(ctx context.Context, q dialect.ExecQuerier, query string, args []any, key, value string) (*entity.FileRecord, error) {
	out, err := r.query(ctx, q, query, args)
	if err != nil {
		r.logger.Error("failed to get file record", key, value, "error", err)
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("file record %s=%s: %w", key, value, common.ErrNotFound)
	}
	return out[0], nil
}

func (r *fileRecordRepo) query(ctx context.Context, q dialect.ExecQuerier, query string, args []any) ([]*entity.FileRecord, error) {
	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func scanRecord(rows entsql.Rows) (*entity.FileRecord, error) {
	var (
		id, status       string
		rec              entity.FileRecord
		created, updated int64
	)
	if err := rows.Scan(&id, &rec.FileName, &rec.FilePath, &rec.SuggestedName, &status, &created, &updated); err != nil {
		return nil, fmt.Errorf("%w: scan: %w", common.ErrDatabase, err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: stored id %q: %w", common.ErrDatabase, id, err)
	}
	st, ok := constants.ParseFileStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: stored status %q", common.ErrDatabase, status)
	}
	rec.ID = parsed
	rec.Status = st
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return &rec, nil
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
