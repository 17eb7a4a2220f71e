package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/middleware"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/services"
)

type DocumentHandler struct {
	documents     *services.DocumentService
	processor     *services.ProcessorClient
	callbackToken string
}

func NewDocumentHandler(documents *services.DocumentService, processor *services.ProcessorClient, callbackToken string) *DocumentHandler {
	return &DocumentHandler{
		documents:     documents,
		processor:     processor,
		callbackToken: callbackToken,
	}
}

// Create handles POST /api/documents. The file is already in storage; this
// records the row and fires the processing trigger.
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.FileName == "" || req.FilePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "file_name and file_path are required",
		})
	}

	doc, err := h.documents.Create(userID, &req)
	if err != nil {
		slog.Error("document creation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create document",
		})
	}

	h.processor.Trigger(doc)

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// List handles GET /api/documents.
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	docs, err := h.documents.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list documents",
		})
	}
	return c.JSON(fiber.Map{"documents": docs})
}

// Retry handles POST /api/documents/retry: the document goes back to queued
// with output and error cleared, and processing is re-triggered.
func (h *DocumentHandler) Retry(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.RetryDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "documentId must be a valid UUID",
		})
	}

	doc, err := h.documents.ResetForRetry(docID, userID)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Document not found",
			})
		}
		slog.Error("retry failed", "document_id", docID, "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to retry document",
		})
	}

	h.processor.Trigger(doc)

	return c.JSON(dto.SuccessResponse{
		Success: true,
		Message: "Document queued for reprocessing",
	})
}

// Export handles POST /api/documents/export.
func (h *DocumentHandler) Export(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ExportReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "documentId must be a valid UUID",
		})
	}

	report, err := h.documents.ExportReport(docID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Document not found",
			})
		case errors.Is(err, services.ErrNotProcessed):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Document has not been processed yet",
			})
		default:
			slog.Error("export failed", "document_id", docID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to export report",
			})
		}
	}
	return c.JSON(report)
}

// ProcessorCallback handles POST /api/webhooks/n8n, the server-to-server
// status report from the workflow engine. When a callback token is
// configured it is required; without one the endpoint trusts the network
// boundary.
func (h *DocumentHandler) ProcessorCallback(c *fiber.Ctx) error {
	if h.callbackToken != "" {
		provided := c.Get("X-Callback-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.callbackToken)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
	}

	var req dto.ProcessorCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid callback payload",
		})
	}
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "documentId must be a valid UUID",
		})
	}

	doc, err := h.documents.ApplyCallback(docID, req.Status, req.ProcessedOutput, req.Error)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrMissingOutput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrDocumentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Document not found",
			})
		default:
			slog.Error("processor callback failed", "document_id", docID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to apply callback",
			})
		}
	}

	slog.Info("processor callback applied", "document_id", doc.ID, "status", doc.Status)
	return c.JSON(dto.ProcessorCallbackResponse{
		Success:    true,
		DocumentID: doc.ID.String(),
		Status:     doc.Status,
		Message:    "Status updated",
	})
}
