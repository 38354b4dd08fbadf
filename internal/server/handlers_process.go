package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/pdf-renamer/internal/async"
	"github.com/joseph-ayodele/pdf-renamer/internal/pipeline"
)

type progressResponse struct {
	pipeline.ProgressState
	OverallProgress float64    `json:"overall_progress"`
	BatchProgress   float64    `json:"batch_progress"`
	Job             *async.Job `json:"job,omitempty"`
}

// HandleStartProcessing starts a background run over all Pending records.
func (h *Handler) HandleStartProcessing(c echo.Context) error {
	job, err := h.runner.Start("api", h.runPending)
	if err != nil {
		return h.fail(c, "process.start", err)
	}
	h.logger.InfoContext(c.Request().Context(), "process.started", "job_id", job.ID)
	return c.JSON(http.StatusAccepted, job)
}

// HandleCancelProcessing asks the running batch loop to stop.
func (h *Handler) HandleCancelProcessing(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"cancelled": h.runner.Cancel()})
}

// HandleProgress returns the latest progress snapshot.
func (h *Handler) HandleProgress(c echo.Context) error {
	s := h.progress.Snapshot()
	out := progressResponse{
		ProgressState:   s,
		OverallProgress: s.OverallProgress(),
		BatchProgress:   s.BatchProgress(),
	}
	if job, ok := h.runner.Current(); ok {
		out.Job = &job
	}
	return c.JSON(http.StatusOK, out)
}
