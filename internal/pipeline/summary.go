package pipeline

import (
	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/entity"
)

// Summary counts records by status.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Errors    int `json:"errors"`
	Renamed   int `json:"renamed"`
}

func Summarize(records []*entity.FileRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case constants.StatusPending, constants.StatusProcessing:
			s.Pending++
		case constants.StatusCompleted:
			s.Completed++
		case constants.StatusError:
			s.Errors++
		case constants.StatusRenamed:
			s.Renamed++
		}
	}
	return s
}
