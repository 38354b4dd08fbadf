package ingest

import (
	"context"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/constants"
)

// Result is the per-file registration outcome.
type Result struct {
	Path     string               `json:"path"`
	RecordID uuid.UUID            `json:"record_id"`
	Existing bool                 `json:"existing"`
	Status   constants.FileStatus `json:"status"`
	Err      string               `json:"error,omitempty"`
}

// DirStats summarizes a directory registration.
type DirStats struct {
	Scanned    uint32 `json:"scanned"`
	Matched    uint32 `json:"matched"`
	Registered uint32 `json:"registered"`
	Existing   uint32 `json:"existing"`
	Failed     uint32 `json:"failed"`
}

// Ingestor is the behavior the server and CLI depend on.
type Ingestor interface {
	// RegisterPath registers a single PDF path or URL.
	RegisterPath(ctx context.Context, path string) (Result, error)
	// RegisterDirectory registers all PDFs under root.
	RegisterDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error)
}
