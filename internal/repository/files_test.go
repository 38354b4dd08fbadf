package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestFileRecordRepository_UpsertByPath(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRecordRepository(openTestDB(t), nil)

	rec := entity.NewPendingRecord("scan.pdf", "/docs/scan.pdf")
	require.NoError(t, repo.UpsertByPath(ctx, rec))
	require.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	firstID := rec.ID

	rec.Status = constants.StatusCompleted
	rec.SuggestedName = "invoice_acme.pdf"
	require.NoError(t, repo.UpsertByPath(ctx, rec))
	assert.Equal(t, firstID, rec.ID)

	// A fresh struct with the same path updates the existing row.
	again := &entity.FileRecord{FileName: "scan.pdf", FilePath: "/docs/scan.pdf", Status: constants.StatusRenamed, SuggestedName: "invoice_acme.pdf"}
	require.NoError(t, repo.UpsertByPath(ctx, again))
	assert.Equal(t, firstID, again.ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, constants.StatusRenamed, all[0].Status)
	assert.Equal(t, "invoice_acme.pdf", all[0].SuggestedName)

	got, err := repo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "/docs/scan.pdf", got.FilePath)
	assert.WithinDuration(t, time.Now(), got.UpdatedAt, time.Minute)
}

func TestFileRecordRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRecordRepository(openTestDB(t), nil)

	_, err := repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.True(t, IsNotFound(err))

	_, err = repo.GetByPath(ctx, "/nope.pdf")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFileRecordRepository_ListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRecordRepository(openTestDB(t), nil)

	a := entity.NewPendingRecord("a.pdf", "/a.pdf")
	b := entity.NewPendingRecord("b.pdf", "/b.pdf")
	c := entity.NewPendingRecord("c.pdf", "/c.pdf")
	c.Status = constants.StatusError
	require.NoError(t, repo.UpsertByPath(ctx, a, b, c))

	pending, err := repo.ListByStatus(ctx, constants.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "/a.pdf", pending[0].FilePath)
	assert.Equal(t, "/b.pdf", pending[1].FilePath)
}

func TestUnitOfWork_SaveChanges(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRecordRepository(openTestDB(t), nil)
	uow := NewUnitOfWork(repo, nil)

	a := entity.NewPendingRecord("a.pdf", "/a.pdf")
	uow.Upsert(a)
	uow.Upsert(entity.NewPendingRecord("b.pdf", "/b.pdf"))
	a.Status = constants.StatusCompleted
	uow.Upsert(a)
	assert.Equal(t, 2, uow.Pending())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing written before SaveChanges")

	require.NoError(t, uow.SaveChanges(ctx))
	assert.Equal(t, 0, uow.Pending())

	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, err := repo.GetByPath(ctx, "/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, got.Status)

	require.NoError(t, uow.SaveChanges(ctx), "empty save is a no-op")
}

func TestUnitOfWork_KeepsStagedOnFailure(t *testing.T) {
	db := openTestDB(t)
	repo := NewFileRecordRepository(db, nil)
	uow := NewUnitOfWork(repo, nil)
	uow.Upsert(entity.NewPendingRecord("a.pdf", "/a.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, uow.SaveChanges(ctx))
	assert.Equal(t, 1, uow.Pending())

	require.NoError(t, uow.SaveChanges(context.Background()))
	assert.Equal(t, 0, uow.Pending())
}

// rejectingRepo fails any write that includes the reject path.
type rejectingRepo struct {
	FileRecordRepository
	reject string
}

func (r *rejectingRepo) UpsertByPath(ctx context.Context, records ...*entity.FileRecord) error {
	for _, rec := range records {
		if rec.FilePath == r.reject {
			return errors.New("invalid byte sequence for encoding UTF8")
		}
	}
	return r.FileRecordRepository.UpsertByPath(ctx, records...)
}

func TestUnitOfWork_DropsRejectedRecord(t *testing.T) {
	ctx := context.Background()
	repo := &rejectingRepo{FileRecordRepository: NewFileRecordRepository(openTestDB(t), nil), reject: "/bad.pdf"}
	uow := NewUnitOfWork(repo, nil)

	// Alone, the bad record looks like an outage and stays staged.
	uow.Upsert(entity.NewPendingRecord("bad.pdf", "/bad.pdf"))
	require.Error(t, uow.SaveChanges(ctx))
	assert.Equal(t, 1, uow.Pending())

	uow.Upsert(entity.NewPendingRecord("a.pdf", "/a.pdf"))
	err := uow.SaveChanges(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/bad.pdf")
	assert.Equal(t, 0, uow.Pending())

	for _, name := range []string{"b.pdf", "c.pdf", "d.pdf"} {
		uow.Upsert(entity.NewPendingRecord(name, "/"+name))
		require.NoError(t, uow.SaveChanges(ctx), name)
		assert.Equal(t, 0, uow.Pending())
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	_, err = repo.GetByPath(ctx, "/bad.pdf")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUnitOfWork_SaveLeavesOtherStagedRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRecordRepository(openTestDB(t), nil)
	uow := NewUnitOfWork(repo, nil)

	inFlight := entity.NewPendingRecord("a.pdf", "/a.pdf")
	inFlight.Status = constants.StatusCompleted
	uow.Upsert(inFlight)

	stale := entity.NewPendingRecord("r.pdf", "/r.pdf")
	stale.Status = constants.StatusCompleted
	uow.Upsert(stale)

	renamed := entity.NewPendingRecord("invoice.pdf", "/r.pdf")
	renamed.Status = constants.StatusRenamed
	require.NoError(t, uow.Save(ctx, renamed))

	assert.Equal(t, 1, uow.Pending(), "only the saved path leaves the stage")
	_, err := repo.GetByPath(ctx, "/a.pdf")
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := repo.GetByPath(ctx, "/r.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRenamed, got.Status)

	require.NoError(t, uow.SaveChanges(ctx))
	got, err = repo.GetByPath(ctx, "/r.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRenamed, got.Status)
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, HealthCheck(context.Background(), db, time.Second, nil))
}
