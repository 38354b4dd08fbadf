package server

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/async"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
	"github.com/joseph-ayodele/pdf-renamer/internal/ingest"
	"github.com/joseph-ayodele/pdf-renamer/internal/pipeline"
	"github.com/joseph-ayodele/pdf-renamer/internal/repository"
)

// Processor is the part of the pipeline the API drives.
type Processor interface {
	ProcessFiles(ctx context.Context, records []*entity.FileRecord, progress *pipeline.Progress)
	ApplyRename(ctx context.Context, rec *entity.FileRecord) error
}

// Exporter renders rename reports.
type Exporter interface {
	ExportRenamesXLSX(ctx context.Context, status constants.FileStatus) ([]byte, error)
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Files     repository.FileRecordRepository
	Ingestor  ingest.Ingestor
	Processor Processor
	Exporter  Exporter
	Runner    *async.Runner
	Progress  *pipeline.Progress
	Health    func(ctx context.Context) error
	Logger    *slog.Logger
}

// Handler serves the renamer API.
type Handler struct {
	files     repository.FileRecordRepository
	ingestor  ingest.Ingestor
	processor Processor
	exporter  Exporter
	runner    *async.Runner
	progress  *pipeline.Progress
	health    func(ctx context.Context) error
	logger    *slog.Logger
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		files:     d.Files,
		ingestor:  d.Ingestor,
		processor: d.Processor,
		exporter:  d.Exporter,
		runner:    d.Runner,
		progress:  d.Progress,
		health:    d.Health,
		logger:    d.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.runner == nil {
		h.runner = async.NewRunner(h.logger)
	}
	if h.progress == nil {
		h.progress = pipeline.NewProgress()
	}
	return h
}

// Shutdown cancels a running batch and waits for its last commit.
func (h *Handler) Shutdown(ctx context.Context) {
	h.runner.Shutdown(ctx)
}

// runPending processes every Pending record in storage. The listing is not
// cancelled with the job; ProcessFiles sees the cancellation and reports it.
func (h *Handler) runPending(ctx context.Context, job async.Job) {
	recs, err := h.files.ListByStatus(context.WithoutCancel(ctx), constants.StatusPending)
	if err != nil {
		h.logger.Error("process.list_failed", "job_id", job.ID, "error", err)
		return
	}
	h.processor.ProcessFiles(ctx, recs, h.progress)
}
