package pipeline

import (
	"sync"

	"github.com/joseph-ayodele/pdf-renamer/constants"
)

// Status texts reported outside of per-file updates.
const (
	StatusTextInitializing = "Initializing..."
	StatusTextCompleted    = "Processing completed"
	StatusTextCancelled    = "Processing cancelled"
)

// ProgressState is a point-in-time view of a run.
type ProgressState struct {
	TotalFiles            int    `json:"total_files" msgpack:"total_files"`
	ProcessedFiles        int    `json:"processed_files" msgpack:"processed_files"`
	CurrentBatchSize      int    `json:"current_batch_size" msgpack:"current_batch_size"`
	CurrentBatchProcessed int    `json:"current_batch_processed" msgpack:"current_batch_processed"`
	CurrentFileName       string `json:"current_file_name" msgpack:"current_file_name"`
	CurrentStatus         string `json:"current_status" msgpack:"current_status"`
	IsProcessing          bool   `json:"is_processing" msgpack:"is_processing"`
}

// OverallProgress is the percentage of files finished, 0 when there are none.
func (s ProgressState) OverallProgress() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return float64(s.ProcessedFiles) * 100 / float64(s.TotalFiles)
}

// BatchProgress is the percentage of the current batch finished.
func (s ProgressState) BatchProgress() float64 {
	if s.CurrentBatchSize == 0 {
		return 0
	}
	return float64(s.CurrentBatchProcessed) * 100 / float64(s.CurrentBatchSize)
}

// Progress is updated by a running pipeline and read by observers. The
// finished counters only move when a file reaches Completed or Error.
type Progress struct {
	mu sync.RWMutex
	s  ProgressState
}

func NewProgress() *Progress {
	return &Progress{}
}

// Initialize starts a run over total files.
func (p *Progress) Initialize(total, batchSize int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s = ProgressState{
		TotalFiles:       total,
		CurrentBatchSize: min(batchSize, total),
		CurrentStatus:    StatusTextInitializing,
		IsProcessing:     true,
	}
}

// StartBatch resets the batch counters for a batch of size files.
func (p *Progress) StartBatch(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.CurrentBatchSize = size
	p.s.CurrentBatchProcessed = 0
}

// Update records a status transition of one file.
func (p *Progress) Update(fileName string, status constants.FileStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.CurrentFileName = fileName
	p.s.CurrentStatus = string(status)
	if status.IsTerminal() {
		p.s.ProcessedFiles++
		p.s.CurrentBatchProcessed++
	}
}

// Complete marks the run finished.
func (p *Progress) Complete() {
	p.finish(StatusTextCompleted)
}

// Cancel marks the run stopped early.
func (p *Progress) Cancel() {
	p.finish(StatusTextCancelled)
}

func (p *Progress) finish(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.IsProcessing = false
	p.s.CurrentStatus = status
}

// Reset zeroes every field.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s = ProgressState{}
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() ProgressState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.s
}
