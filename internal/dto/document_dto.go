package dto

import "encoding/json"

type CreateDocumentRequest struct {
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
	FilePath string `json:"file_path"`
}

type RetryDocumentRequest struct {
	DocumentID string `json:"documentId"`
}

type ExportReportRequest struct {
	DocumentID string `json:"documentId"`
}

// ProcessorCallbackRequest is the payload n8n posts back when a workflow run
// finishes (or fails, or reports progress).
type ProcessorCallbackRequest struct {
	DocumentID      string          `json:"documentId"`
	Status          string          `json:"status"`
	ProcessedOutput json.RawMessage `json:"processed_output,omitempty"`
	Error           string          `json:"error,omitempty"`
}

type ProcessorCallbackResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// ProcessedOutput is the structured analysis produced by the n8n workflow.
// Every field is optional in the stored JSON; reports default the gaps.
type ProcessedOutput struct {
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
	KeyPoints      []string `json:"key_points"`
	Sentiment      string   `json:"sentiment"`
	Category       string   `json:"category"`
	WordCount      int      `json:"word_count"`
	CharacterCount int      `json:"character_count"`
	ExtractedText  string   `json:"extracted_text"`
}

// Report is the flattened projection of a completed document for export.
type Report struct {
	DocumentID     string   `json:"documentId"`
	FileName       string   `json:"fileName"`
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
	KeyPoints      []string `json:"keyPoints"`
	Sentiment      string   `json:"sentiment"`
	Category       string   `json:"category"`
	WordCount      int      `json:"wordCount"`
	CharacterCount int      `json:"characterCount"`
	ExtractedText  string   `json:"extractedText"`
	ProcessedAt    string   `json:"processedAt"`
}
