package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/config"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"
)

// ProcessorClient triggers the n8n workflow for a queued document. The
// workflow reports back through the callback endpoint, so delivery here is
// fire-and-forget: the document is already durably queued and retryable.
type ProcessorClient struct {
	webhookURL  string
	callbackURL string
	httpClient  *http.Client
}

func NewProcessorClient(cfg *config.Config) *ProcessorClient {
	return &ProcessorClient{
		webhookURL:  cfg.ProcessorWebhookURL,
		callbackURL: cfg.PublicBaseURL + "/api/webhooks/n8n",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type triggerPayload struct {
	DocumentID  string `json:"documentId"`
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	FileType    string `json:"fileType"`
	CallbackURL string `json:"callbackUrl"`
}

// TriggerProcessing posts the document to the n8n webhook. Callers run it in
// a goroutine and only log failures.
func (p *ProcessorClient) TriggerProcessing(doc *models.Document) error {
	if p.webhookURL == "" {
		return fmt.Errorf("processor webhook URL is not configured")
	}

	payload, err := json.Marshal(triggerPayload{
		DocumentID:  doc.ID.String(),
		FileName:    doc.FileName,
		FilePath:    doc.FilePath,
		FileType:    doc.FileType,
		CallbackURL: p.callbackURL,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("processor trigger returned status %d", resp.StatusCode)
	}
	return nil
}

// Trigger runs TriggerProcessing in the background, logging any failure.
func (p *ProcessorClient) Trigger(doc *models.Document) {
	go func() {
		if err := p.TriggerProcessing(doc); err != nil {
			slog.Error("processing trigger failed", "document_id", doc.ID, "error", err)
		}
	}()
}
