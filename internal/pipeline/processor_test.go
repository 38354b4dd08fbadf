package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
	"github.com/joseph-ayodele/pdf-renamer/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	files    map[string][]byte
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (f *fakeFetcher) FetchBytes(_ context.Context, path string) ([]byte, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	data, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return data, nil
}

// fakeExtractor treats the file bytes as the document text.
type fakeExtractor struct{}

func (fakeExtractor) ExtractText(_ context.Context, data []byte) (extract.Result, error) {
	if string(data) == "corrupt" {
		return extract.Result{}, errors.New("open pdf: malformed")
	}
	return extract.Result{Text: string(data), Pages: 1}, nil
}

type fakeSuggester struct {
	fn func(ctx context.Context, fileName, content string) (string, error)
}

func (f fakeSuggester) SuggestName(ctx context.Context, fileName, content string) (string, error) {
	if f.fn != nil {
		return f.fn(ctx, fileName, content)
	}
	return strings.ReplaceAll(content, " ", "_") + ".pdf", nil
}

type fakeStore struct {
	mu        sync.Mutex
	staged    []*entity.FileRecord
	commits   [][]entity.FileRecord
	saveErr   error
	onCommit  func(n int)
	busyCheck func() bool
	busySeen  bool
}

func (s *fakeStore) Upsert(rec *entity.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, rec)
}

func (s *fakeStore) SaveChanges(_ context.Context) error {
	s.mu.Lock()
	if s.busyCheck != nil && s.busyCheck() {
		s.busySeen = true
	}
	if s.saveErr != nil {
		s.mu.Unlock()
		return s.saveErr
	}
	snap := make([]entity.FileRecord, 0, len(s.staged))
	for _, r := range s.staged {
		snap = append(snap, *r)
	}
	s.commits = append(s.commits, snap)
	s.staged = nil
	n := len(s.commits)
	hook := s.onCommit
	s.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return nil
}

func (s *fakeStore) Save(_ context.Context, rec *entity.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.commits = append(s.commits, []entity.FileRecord{*rec})
	return nil
}

func pendingRecords(n int) ([]*entity.FileRecord, map[string][]byte) {
	recs := make([]*entity.FileRecord, 0, n)
	files := make(map[string][]byte, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/in/file%d.pdf", i)
		recs = append(recs, entity.NewPendingRecord(fmt.Sprintf("file%d.pdf", i), path))
		files[path] = []byte(fmt.Sprintf("document %d", i))
	}
	return recs, files
}

func TestProcessFiles_BatchesAndCommits(t *testing.T) {
	recs, files := pendingRecords(7)
	fetcher := &fakeFetcher{files: files, delay: 10 * time.Millisecond}
	store := &fakeStore{}
	store.busyCheck = func() bool { return fetcher.inFlight.Load() > 0 }

	p := New(fetcher, fakeExtractor{}, fakeSuggester{}, store, nil)
	progress := NewProgress()
	p.ProcessFiles(context.Background(), recs, progress)

	require.Len(t, store.commits, 3)
	assert.Len(t, store.commits[0], 3)
	assert.Len(t, store.commits[1], 3)
	assert.Len(t, store.commits[2], 1)
	assert.LessOrEqual(t, fetcher.maxSeen.Load(), int32(3))
	assert.False(t, store.busySeen, "commit waits for the whole batch")

	for i, r := range recs {
		assert.Equal(t, constants.StatusCompleted, r.Status)
		assert.Equal(t, fmt.Sprintf("document_%d.pdf", i), r.SuggestedName)
	}

	snap := progress.Snapshot()
	assert.Equal(t, 7, snap.TotalFiles)
	assert.Equal(t, 7, snap.ProcessedFiles)
	assert.False(t, snap.IsProcessing)
	assert.Equal(t, StatusTextCompleted, snap.CurrentStatus)
	assert.InDelta(t, 100.0, snap.OverallProgress(), 0.001)
}

func TestProcessFiles_OnlyPending(t *testing.T) {
	recs, files := pendingRecords(3)
	recs[0].Status = constants.StatusCompleted
	recs[0].SuggestedName = "kept.pdf"
	recs[1].Status = constants.StatusRenamed
	store := &fakeStore{}

	p := New(&fakeFetcher{files: files}, fakeExtractor{}, fakeSuggester{}, store, nil)
	p.ProcessFiles(context.Background(), recs, nil)

	assert.Equal(t, "kept.pdf", recs[0].SuggestedName)
	assert.Equal(t, constants.StatusRenamed, recs[1].Status)
	assert.Equal(t, constants.StatusCompleted, recs[2].Status)
	require.Len(t, store.commits, 1)
	assert.Len(t, store.commits[0], 1)
}

func TestProcessFiles_NoPending(t *testing.T) {
	store := &fakeStore{}
	p := New(&fakeFetcher{}, fakeExtractor{}, fakeSuggester{}, store, nil)
	progress := NewProgress()
	p.ProcessFiles(context.Background(), nil, progress)

	assert.Empty(t, store.commits)
	snap := progress.Snapshot()
	assert.Equal(t, 0, snap.TotalFiles)
	assert.Zero(t, snap.OverallProgress())
	assert.False(t, snap.IsProcessing)
}

func TestProcessFiles_FailureIsolation(t *testing.T) {
	recs := []*entity.FileRecord{
		entity.NewPendingRecord("ok.pdf", "/ok.pdf"),
		entity.NewPendingRecord("empty.pdf", "/empty.pdf"),
		entity.NewPendingRecord("missing.pdf", "/missing.pdf"),
		entity.NewPendingRecord("blank.pdf", "/blank.pdf"),
		entity.NewPendingRecord("corrupt.pdf", "/corrupt.pdf"),
		entity.NewPendingRecord("ai.pdf", "/ai.pdf"),
	}
	files := map[string][]byte{
		"/ok.pdf":      []byte("good text"),
		"/empty.pdf":   {},
		"/blank.pdf":   []byte("   \n\t"),
		"/corrupt.pdf": []byte("corrupt"),
		"/ai.pdf":      []byte("provider down"),
	}
	suggester := fakeSuggester{fn: func(_ context.Context, _, content string) (string, error) {
		if content == "provider down" {
			return "", fmt.Errorf("%w: primary: HTTP 503", common.ErrSuggestion)
		}
		return "good_text.pdf", nil
	}}
	store := &fakeStore{}
	p := New(&fakeFetcher{files: files}, fakeExtractor{}, suggester, store, nil)
	progress := NewProgress()
	p.ProcessFiles(context.Background(), recs, progress)

	assert.Equal(t, constants.StatusCompleted, recs[0].Status)
	assert.Equal(t, "good_text.pdf", recs[0].SuggestedName)

	assert.Equal(t, constants.StatusError, recs[1].Status)
	assert.Equal(t, "file is empty", recs[1].SuggestedName)

	assert.Equal(t, constants.StatusError, recs[2].Status)
	assert.True(t, strings.HasPrefix(recs[2].SuggestedName, "could not read file: open /missing.pdf"), recs[2].SuggestedName)

	assert.Equal(t, constants.StatusError, recs[3].Status)
	assert.Equal(t, "no text could be extracted from the PDF", recs[3].SuggestedName)

	assert.Equal(t, constants.StatusError, recs[4].Status)
	assert.True(t, strings.HasPrefix(recs[4].SuggestedName, "no text could be extracted from the PDF"))

	assert.Equal(t, constants.StatusError, recs[5].Status)
	assert.Contains(t, recs[5].SuggestedName, "HTTP 503")

	assert.Equal(t, 6, progress.Snapshot().ProcessedFiles)
	require.Len(t, store.commits, 2)
}

func TestProcessFiles_EmptySuggestion(t *testing.T) {
	recs, files := pendingRecords(1)
	suggester := fakeSuggester{fn: func(context.Context, string, string) (string, error) { return "  ", nil }}
	p := New(&fakeFetcher{files: files}, fakeExtractor{}, suggester, &fakeStore{}, nil)
	p.ProcessFiles(context.Background(), recs, nil)

	assert.Equal(t, constants.StatusError, recs[0].Status)
	assert.Equal(t, "could not generate a suggested name", recs[0].SuggestedName)
}

func TestProcessFiles_StripsIllegalCharacters(t *testing.T) {
	recs, files := pendingRecords(1)
	suggester := fakeSuggester{fn: func(context.Context, string, string) (string, error) { return "a/b:c?.pdf", nil }}
	p := New(&fakeFetcher{files: files}, fakeExtractor{}, suggester, &fakeStore{}, nil)
	p.ProcessFiles(context.Background(), recs, nil)

	assert.Equal(t, constants.StatusCompleted, recs[0].Status)
	assert.Equal(t, "abc.pdf", recs[0].SuggestedName)
}

func TestProcessFiles_CancelBetweenBatches(t *testing.T) {
	recs, files := pendingRecords(7)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{onCommit: func(n int) {
		if n == 1 {
			cancel()
		}
	}}
	p := New(&fakeFetcher{files: files}, fakeExtractor{}, fakeSuggester{}, store, nil)
	progress := NewProgress()
	p.ProcessFiles(ctx, recs, progress)

	require.Len(t, store.commits, 1)
	for _, r := range recs[:3] {
		assert.Equal(t, constants.StatusCompleted, r.Status)
	}
	for _, r := range recs[3:] {
		assert.Equal(t, constants.StatusPending, r.Status)
		assert.Empty(t, r.SuggestedName)
	}

	snap := progress.Snapshot()
	assert.Equal(t, 3, snap.ProcessedFiles)
	assert.False(t, snap.IsProcessing)
	assert.Equal(t, StatusTextCancelled, snap.CurrentStatus)
}

func TestProcessFiles_CancelMidFile(t *testing.T) {
	recs, files := pendingRecords(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	suggester := fakeSuggester{fn: func(callCtx context.Context, _, content string) (string, error) {
		calls.Add(1)
		cancel()
		// In-flight work is not aborted by cancellation.
		assert.NoError(t, callCtx.Err())
		return "late.pdf", nil
	}}
	store := &fakeStore{}
	p := New(&fakeFetcher{files: files}, fakeExtractor{}, suggester, store, nil, WithBatchSize(1))
	progress := NewProgress()
	p.ProcessFiles(ctx, recs, progress)

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range recs {
		assert.Equal(t, constants.StatusPending, r.Status, r.FilePath)
		assert.Empty(t, r.SuggestedName)
	}
	require.Len(t, store.commits, 1)
	assert.Empty(t, store.commits[0], "cancelled file is not staged")
	assert.Equal(t, 0, progress.Snapshot().ProcessedFiles)
}

func TestProcessFiles_CommitFailureDoesNotStopRun(t *testing.T) {
	recs, files := pendingRecords(4)
	store := &fakeStore{saveErr: errors.New("disk full")}
	p := New(&fakeFetcher{files: files}, fakeExtractor{}, fakeSuggester{}, store, nil)
	p.ProcessFiles(context.Background(), recs, nil)

	for _, r := range recs {
		assert.Equal(t, constants.StatusCompleted, r.Status)
	}
}

func TestApplyRename(t *testing.T) {
	store := &fakeStore{}
	p := New(nil, nil, nil, store, nil)

	rec := entity.NewPendingRecord("scan001.pdf", "/scan001.pdf")
	rec.Status = constants.StatusCompleted
	rec.SuggestedName = "invoice_acme_2024.pdf"

	require.NoError(t, p.ApplyRename(context.Background(), rec))
	assert.Equal(t, "invoice_acme_2024.pdf", rec.FileName)
	assert.Equal(t, constants.StatusRenamed, rec.Status)
	require.Len(t, store.commits, 1)
	assert.Equal(t, constants.StatusRenamed, store.commits[0][0].Status)
}

func TestApplyRename_LeavesStagedBatchAlone(t *testing.T) {
	store := &fakeStore{}
	p := New(nil, nil, nil, store, nil)

	inFlight := entity.NewPendingRecord("a.pdf", "/a.pdf")
	store.Upsert(inFlight)

	rec := &entity.FileRecord{FilePath: "/x", Status: constants.StatusCompleted, SuggestedName: "q3_report.pdf"}
	require.NoError(t, p.ApplyRename(context.Background(), rec))

	require.Len(t, store.commits, 1)
	require.Len(t, store.commits[0], 1)
	assert.Equal(t, "/x", store.commits[0][0].FilePath)
	assert.Equal(t, "q3_report.pdf", store.commits[0][0].FileName)
	assert.Len(t, store.staged, 1, "batch records stay staged for the pipeline commit")
}

func TestApplyRename_ReplacesExtension(t *testing.T) {
	p := New(nil, nil, nil, &fakeStore{}, nil)
	rec := &entity.FileRecord{FilePath: "/x", Status: constants.StatusCompleted, SuggestedName: "notes.txt"}
	require.NoError(t, p.ApplyRename(context.Background(), rec))
	assert.Equal(t, "notes.pdf", rec.FileName)
}

func TestApplyRename_StoreFailure(t *testing.T) {
	p := New(nil, nil, nil, &fakeStore{saveErr: errors.New("locked")}, nil)
	rec := &entity.FileRecord{FilePath: "/x", Status: constants.StatusCompleted, SuggestedName: "a.pdf"}

	err := p.ApplyRename(context.Background(), rec)
	require.ErrorIs(t, err, common.ErrRename)
	assert.Contains(t, err.Error(), "locked")
	assert.Equal(t, constants.StatusError, rec.Status)
}

func TestApplyRename_RequiresCompleted(t *testing.T) {
	store := &fakeStore{}
	p := New(nil, nil, nil, store, nil)

	rec := &entity.FileRecord{FilePath: "/x", Status: constants.StatusError, SuggestedName: "boom"}
	require.ErrorIs(t, p.ApplyRename(context.Background(), rec), common.ErrInvalidArgument)
	assert.Equal(t, constants.StatusError, rec.Status)
	assert.Empty(t, store.commits)

	require.ErrorIs(t, p.ApplyRename(context.Background(), nil), common.ErrInvalidArgument)
}
