package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document processing lifecycle statuses.
const (
	DocumentQueued     = "queued"
	DocumentProcessing = "processing"
	DocumentCompleted  = "completed"
	DocumentFailed     = "failed"
)

// Document is one uploaded file and its processing state. The file bytes
// live in Supabase storage; this row only carries metadata and the output
// reported back by the n8n workflow.
type Document struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string         `gorm:"size:64;not null;index" json:"user_id"`
	FileName        string         `gorm:"size:255;not null" json:"file_name"`
	FileSize        int64          `json:"file_size"`
	FileType        string         `gorm:"size:100" json:"file_type"`
	FilePath        string         `gorm:"size:1024" json:"file_path"`
	Status          string         `gorm:"size:20;not null;default:'queued';index" json:"status"`
	ProcessedOutput datatypes.JSON `json:"processed_output"`
	Error           *string        `gorm:"type:text" json:"error"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}
