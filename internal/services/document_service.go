package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidStatus    = errors.New("invalid processing status")
	ErrMissingOutput    = errors.New("completed callback missing processed output")
	ErrNotProcessed     = errors.New("document has not been processed yet")
)

type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

// Create inserts a new document row in queued state. The actual file bytes
// are already in storage; this records the metadata and enqueues processing.
func (s *DocumentService) Create(userID string, req *dto.CreateDocumentRequest) (*models.Document, error) {
	doc := models.Document{
		ID:       uuid.New(),
		UserID:   userID,
		FileName: req.FileName,
		FileSize: req.FileSize,
		FileType: req.FileType,
		FilePath: req.FilePath,
		Status:   models.DocumentQueued,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentService) ListByUser(userID string) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// ResetForRetry forces a document back to queued and wipes any previous
// output or error. Ownership is checked on every user-initiated mutation.
// Calling it twice is safe; the second call just re-resets.
func (s *DocumentService) ResetForRetry(documentID uuid.UUID, userID string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Where("id = ? AND user_id = ?", documentID, userID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	updates := map[string]interface{}{
		"status":           models.DocumentQueued,
		"processed_output": nil,
		"error":            nil,
		"processed_at":     nil,
		"updated_at":       time.Now(),
	}
	if err := s.db.Model(&doc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reset document: %w", err)
	}

	doc.Status = models.DocumentQueued
	doc.ProcessedOutput = nil
	doc.Error = nil
	doc.ProcessedAt = nil
	return &doc, nil
}

// ApplyCallback applies a status report from the external processor. The
// caller is authenticated at the transport layer (shared callback token),
// so there is no ownership check here.
//
// Duplicate deliveries of the same terminal status converge on the same row.
// Once a document is terminal, any callback reporting a different status is
// ignored: n8n sends no ordering token, so the first terminal outcome stays
// sticky until a retry re-queues. Accepting a late "failed" over "completed"
// would leave a failed row still carrying processed output.
func (s *DocumentService) ApplyCallback(documentID uuid.UUID, status string, output json.RawMessage, errMsg string) (*models.Document, error) {
	switch status {
	case models.DocumentProcessing, models.DocumentCompleted, models.DocumentFailed:
	default:
		return nil, ErrInvalidStatus
	}
	if status == models.DocumentCompleted && len(output) == 0 {
		return nil, ErrMissingOutput
	}

	var doc models.Document
	if err := s.db.Where("id = ?", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	if (doc.Status == models.DocumentCompleted || doc.Status == models.DocumentFailed) &&
		status != doc.Status {
		slog.Info("ignoring stale callback for terminal document",
			"document_id", documentID, "current_status", doc.Status, "reported_status", status)
		return &doc, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	switch status {
	case models.DocumentCompleted:
		updates["processed_output"] = datatypes.JSON(output)
		updates["error"] = nil
		updates["processed_at"] = now
	case models.DocumentFailed:
		msg := errMsg
		if msg == "" {
			msg = "processing failed"
		}
		updates["error"] = msg
		updates["processed_at"] = now
	}

	if err := s.db.Model(&doc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	if err := s.db.Where("id = ?", documentID).First(&doc).Error; err != nil {
		return nil, fmt.Errorf("failed to reload document: %w", err)
	}
	return &doc, nil
}

// ExportReport projects the stored output into a flat report. Missing
// sub-values default to zero values so the report never has absent keys.
func (s *DocumentService) ExportReport(documentID uuid.UUID, userID string) (*dto.Report, error) {
	var doc models.Document
	if err := s.db.Where("id = ? AND user_id = ?", documentID, userID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	if len(doc.ProcessedOutput) == 0 {
		return nil, ErrNotProcessed
	}

	var output dto.ProcessedOutput
	if err := json.Unmarshal(doc.ProcessedOutput, &output); err != nil {
		return nil, fmt.Errorf("stored output is not valid JSON: %w", err)
	}
	if output.Keywords == nil {
		output.Keywords = []string{}
	}
	if output.KeyPoints == nil {
		output.KeyPoints = []string{}
	}

	report := dto.Report{
		DocumentID:     doc.ID.String(),
		FileName:       doc.FileName,
		Summary:        output.Summary,
		Keywords:       output.Keywords,
		KeyPoints:      output.KeyPoints,
		Sentiment:      output.Sentiment,
		Category:       output.Category,
		WordCount:      output.WordCount,
		CharacterCount: output.CharacterCount,
		ExtractedText:  output.ExtractedText,
	}
	if doc.ProcessedAt != nil {
		report.ProcessedAt = doc.ProcessedAt.Format(time.RFC3339)
	}
	return &report, nil
}
