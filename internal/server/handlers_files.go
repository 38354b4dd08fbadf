package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
	"github.com/joseph-ayodele/pdf-renamer/internal/ingest"
	"github.com/joseph-ayodele/pdf-renamer/internal/pipeline"
)

type listFilesResponse struct {
	Files   []*entity.FileRecord `json:"files" msgpack:"files"`
	Summary pipeline.Summary     `json:"summary" msgpack:"summary"`
}

type registerRequest struct {
	Root       string   `json:"root"`
	SkipHidden *bool    `json:"skip_hidden"`
	Paths      []string `json:"paths"`
}

type registerResponse struct {
	Results []ingest.Result  `json:"results"`
	Stats   *ingest.DirStats `json:"stats,omitempty"`
}

// HandleHealth reports whether storage is reachable.
func (h *Handler) HandleHealth(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c.Request().Context()); err != nil {
			h.logger.Warn("health.failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listFiles(c echo.Context) (*listFilesResponse, error) {
	ctx := c.Request().Context()
	raw := strings.TrimSpace(c.QueryParam("status"))

	var (
		recs []*entity.FileRecord
		err  error
	)
	if raw == "" {
		recs, err = h.files.List(ctx)
	} else {
		st, ok := constants.ParseFileStatus(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", common.ErrInvalidArgument, raw)
		}
		recs, err = h.files.ListByStatus(ctx, st)
	}
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*entity.FileRecord{}
	}
	return &listFilesResponse{Files: recs, Summary: pipeline.Summarize(recs)}, nil
}

// HandleListFiles returns stored records, optionally filtered by ?status=.
func (h *Handler) HandleListFiles(c echo.Context) error {
	out, err := h.listFiles(c)
	if err != nil {
		return h.fail(c, "files.list", err)
	}
	return c.JSON(http.StatusOK, out)
}

// HandleListFilesMsgpack is HandleListFiles encoded as MessagePack.
func (h *Handler) HandleListFilesMsgpack(c echo.Context) error {
	out, err := h.listFiles(c)
	if err != nil {
		return h.fail(c, "files.list", err)
	}
	data, err := msgpack.Marshal(out)
	if err != nil {
		return h.fail(c, "files.list", fmt.Errorf("encode msgpack: %w", err))
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleRegisterFiles registers a directory or a list of paths as Pending.
func (h *Handler) HandleRegisterFiles(c echo.Context) error {
	ctx := c.Request().Context()
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, "files.register", fmt.Errorf("%w: malformed body", common.ErrInvalidArgument))
	}

	v := common.NewValidator()
	if strings.TrimSpace(req.Root) == "" {
		v.Field("paths", req.Paths, common.Required)
	}
	if err := v.Err(); err != nil {
		return h.fail(c, "files.register", err)
	}

	var out registerResponse
	if root := strings.TrimSpace(req.Root); root != "" {
		skipHidden := true
		if req.SkipHidden != nil {
			skipHidden = *req.SkipHidden
		}
		results, stats, err := h.ingestor.RegisterDirectory(ctx, root, skipHidden)
		if err != nil {
			return h.fail(c, "files.register", fmt.Errorf("%w: %w", common.ErrInvalidArgument, err))
		}
		out.Results = append(out.Results, results...)
		out.Stats = &stats
	}
	for _, p := range req.Paths {
		r, err := h.ingestor.RegisterPath(ctx, p)
		if err != nil {
			r = ingest.Result{Path: p, Err: err.Error()}
		}
		out.Results = append(out.Results, r)
	}
	if out.Results == nil {
		out.Results = []ingest.Result{}
	}
	return c.JSON(http.StatusOK, out)
}

// HandleApplyRename adopts the suggestion of one Completed record.
func (h *Handler) HandleApplyRename(c echo.Context) error {
	ctx := c.Request().Context()
	raw := c.Param("id")
	if err := common.NewValidator().Field("id", raw, common.UUID).Err(); err != nil {
		return h.fail(c, "files.rename", err)
	}

	rec, err := h.files.GetByID(ctx, uuid.MustParse(raw))
	if err != nil {
		return h.fail(c, "files.rename", err)
	}
	if err := h.processor.ApplyRename(ctx, rec); err != nil {
		return h.fail(c, "files.rename", err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleExport streams an XLSX rename report, optionally filtered by ?status=.
func (h *Handler) HandleExport(c echo.Context) error {
	var status constants.FileStatus
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		st, ok := constants.ParseFileStatus(raw)
		if !ok {
			return h.fail(c, "export", fmt.Errorf("%w: unknown status %q", common.ErrInvalidArgument, raw))
		}
		status = st
	}

	data, err := h.exporter.ExportRenamesXLSX(c.Request().Context(), status)
	if err != nil {
		return h.fail(c, "export", err)
	}
	name := fmt.Sprintf("renames-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
