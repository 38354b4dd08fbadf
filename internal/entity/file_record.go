package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/constants"
)

// FileRecord represents one PDF tracked for renaming.
type FileRecord struct {
	ID            uuid.UUID            `json:"id" msgpack:"id"`
	FileName      string               `json:"file_name" msgpack:"file_name"`
	FilePath      string               `json:"file_path" msgpack:"file_path"`
	SuggestedName string               `json:"suggested_name" msgpack:"suggested_name"`
	Status        constants.FileStatus `json:"status" msgpack:"status"`
	CreatedAt     time.Time            `json:"created_at" msgpack:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" msgpack:"updated_at"`
}

// NewPendingRecord builds an unsaved record for path.
func NewPendingRecord(fileName, filePath string) *FileRecord {
	return &FileRecord{
		FileName: fileName,
		FilePath: filePath,
		Status:   constants.StatusPending,
	}
}

// Clone returns a shallow copy, which is a full copy for this type.
func (r *FileRecord) Clone() *FileRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
