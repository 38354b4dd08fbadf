package pipeline

import (
	"sync"
	"testing"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/stretchr/testify/assert"
)

func TestProgress_Lifecycle(t *testing.T) {
	p := NewProgress()
	p.Initialize(5, 3)

	s := p.Snapshot()
	assert.True(t, s.IsProcessing)
	assert.Equal(t, 3, s.CurrentBatchSize)
	assert.Equal(t, StatusTextInitializing, s.CurrentStatus)

	p.Update("a.pdf", constants.StatusProcessing)
	assert.Equal(t, 0, p.Snapshot().ProcessedFiles, "Processing does not count")

	p.Update("a.pdf", constants.StatusCompleted)
	p.Update("b.pdf", constants.StatusError)
	s = p.Snapshot()
	assert.Equal(t, 2, s.ProcessedFiles)
	assert.Equal(t, 2, s.CurrentBatchProcessed)
	assert.Equal(t, "b.pdf", s.CurrentFileName)
	assert.InDelta(t, 40.0, s.OverallProgress(), 0.001)
	assert.InDelta(t, 66.666, s.BatchProgress(), 0.01)

	p.StartBatch(2)
	s = p.Snapshot()
	assert.Equal(t, 0, s.CurrentBatchProcessed)
	assert.Equal(t, 2, s.ProcessedFiles)

	p.Complete()
	s = p.Snapshot()
	assert.False(t, s.IsProcessing)
	assert.Equal(t, StatusTextCompleted, s.CurrentStatus)

	p.Reset()
	assert.Equal(t, ProgressState{}, p.Snapshot())
}

func TestProgress_InitializeSmallRun(t *testing.T) {
	p := NewProgress()
	p.Initialize(2, 3)
	assert.Equal(t, 2, p.Snapshot().CurrentBatchSize)

	p.Initialize(0, 3)
	s := p.Snapshot()
	assert.Zero(t, s.OverallProgress())
	assert.Zero(t, s.BatchProgress())
}

func TestProgress_ConcurrentUpdates(t *testing.T) {
	p := NewProgress()
	p.Initialize(300, 3)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0
			for j := 0; j < 100; j++ {
				p.Update("f.pdf", constants.StatusProcessing)
				p.Update("f.pdf", constants.StatusCompleted)
				n := p.Snapshot().ProcessedFiles
				assert.GreaterOrEqual(t, n, last)
				last = n
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 300, p.Snapshot().ProcessedFiles)
}
