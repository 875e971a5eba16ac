package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/models"
	"github.com/upb/ai-docs-prompt/services/documents"
	"github.com/upb/ai-docs-prompt/utils"
)

// UpdateDocumentRequest represents a full document update
type UpdateDocumentRequest struct {
	Title string `json:"title" validate:"required"`
}

// PatchDocumentRequest represents a partial document update
type PatchDocumentRequest struct {
	Title *string `json:"title,omitempty"`
}

// GenerateResponseRequest asks a question about one document
type GenerateResponseRequest struct {
	DocumentID uuid.UUID `json:"document_id" validate:"required"`
	Question   string    `json:"question" validate:"required"`
}

// GenerateResponseResponse is the answer payload
type GenerateResponseResponse struct {
	Response         string   `json:"response"`
	RelevantSections []string `json:"relevant_sections"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	Content    string    `json:"content"`
	UploadedAt string    `json:"uploaded_at"`
	UpdatedAt  string    `json:"updated_at"`
}

// DocumentService defines the interface for document operations
type DocumentService interface {
	Upload(ctx context.Context, title, fileName string, file io.Reader) (*models.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	Rename(ctx context.Context, id uuid.UUID, title string) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GenerateAnswer(ctx context.Context, documentID uuid.UUID, question string) (*documents.QAResult, error)
}

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	service       DocumentService
	maxUploadSize int64
	logger        *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service DocumentService, maxUploadSize int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// HandleUpload handles POST /api/documents/
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	title := r.FormValue("title")
	file, header, err := r.FormFile("file")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Missing file field", nil)
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(ctx, title, header.Filename, file)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("file_name", doc.FileName))

	_ = utils.WriteCreated(w, toDocumentResponse(doc))
}

// HandleList handles GET /api/documents/
func (h *DocumentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, toDocumentResponse(doc))
	}

	_ = utils.WriteOK(w, responses)
}

// HandleGet handles GET /api/documents/{id}/
func (h *DocumentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, toDocumentResponse(doc))
}

// HandleUpdate handles PUT /api/documents/{id}/
func (h *DocumentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	doc, err := h.service.Rename(r.Context(), id, req.Title)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, toDocumentResponse(doc))
}

// HandlePatch handles PATCH /api/documents/{id}/
func (h *DocumentHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	var req PatchDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if req.Title == nil {
		// nothing to change, return the current representation
		doc, err := h.service.Get(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, h.logger)
			return
		}
		_ = utils.WriteOK(w, toDocumentResponse(doc))
		return
	}

	doc, err := h.service.Rename(r.Context(), id, *req.Title)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, toDocumentResponse(doc))
}

// HandleDelete handles DELETE /api/documents/{id}/
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// HandleGenerateResponse handles POST /api/documents/generate-response/
func (h *DocumentHandler) HandleGenerateResponse(w http.ResponseWriter, r *http.Request) {
	var req GenerateResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.GenerateAnswer(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	sections := result.RelevantSections
	if sections == nil {
		sections = []string{}
	}

	_ = utils.WriteOK(w, GenerateResponseResponse{
		Response:         result.Response,
		RelevantSections: sections,
	})
}

func (h *DocumentHandler) documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid document id format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func toDocumentResponse(doc *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		Title:      doc.Title,
		FileName:   doc.FileName,
		FileType:   string(doc.FileType),
		Content:    doc.Content,
		UploadedAt: doc.UploadedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  doc.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
