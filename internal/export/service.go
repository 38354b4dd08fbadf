package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
	"github.com/joseph-ayodele/pdf-renamer/internal/filename"
	"github.com/joseph-ayodele/pdf-renamer/internal/repository"
)

const sheetName = "Renames"

// Service produces XLSX rename reports from stored file records.
type Service struct {
	files  repository.FileRecordRepository
	logger *slog.Logger
}

func NewService(files repository.FileRecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{files: files, logger: logger}
}

// ExportRenamesXLSX returns a workbook listing the records. An empty
// status exports every record.
func (s *Service) ExportRenamesXLSX(ctx context.Context, status constants.FileStatus) ([]byte, error) {
	start := time.Now()

	var (
		recs []*entity.FileRecord
		err  error
	)
	if status == "" {
		recs, err = s.files.List(ctx)
	} else {
		recs, err = s.files.ListByStatus(ctx, status)
	}
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}

	b, err := WriteRenamesXLSX(recs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"status", string(status),
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// WriteRenamesXLSX renders records into a single-sheet workbook.
func WriteRenamesXLSX(recs []*entity.FileRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// rename the default sheet rather than leaving an empty Sheet1 behind
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := []string{
		"File Name",
		"Suggested Name",
		"Status",
		"File Path",
		"Updated At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, r := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		// Error rows carry the failure message in SuggestedName.
		suggested := r.SuggestedName
		if suggested != "" && r.Status != constants.StatusError {
			suggested = filename.WithPDFExtension(suggested)
		}
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.UTC().Format(time.RFC3339)
		}

		write(1, r.FileName)
		write(2, suggested)
		write(3, string(r.Status))
		write(4, r.FilePath)
		write(5, updated)
	}

	_ = f.SetColWidth(sheetName, "A", "B", 40)
	_ = f.SetColWidth(sheetName, "C", "C", 12)
	_ = f.SetColWidth(sheetName, "D", "D", 60)
	_ = f.SetColWidth(sheetName, "E", "E", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
