package documents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/internal/chunker"
	"github.com/upb/ai-docs-prompt/internal/extract"
	"github.com/upb/ai-docs-prompt/internal/ranker"
	"github.com/upb/ai-docs-prompt/models"
	"github.com/upb/ai-docs-prompt/repositories"
	"github.com/upb/ai-docs-prompt/services"
	"github.com/upb/ai-docs-prompt/services/answer"
)

// RetrievalMode selects how question context is located.
type RetrievalMode string

const (
	// ModeVector retrieves context via embeddings and the vector index.
	ModeVector RetrievalMode = "vector"
	// ModeLexical ranks document chunks with TF-IDF only. No remote
	// embedding dependency is touched, so the service can answer questions
	// with just the generation backend configured.
	ModeLexical RetrievalMode = "lexical"
)

// Extractor pulls raw text out of an uploaded file.
type Extractor interface {
	Extract(ctx context.Context, path string, fileType extract.FileType) (string, error)
}

// Indexer maintains the chunk index and finds context for questions.
type Indexer interface {
	IngestDocument(ctx context.Context, doc *models.Document) error
	RemoveDocument(ctx context.Context, doc *models.Document) error
	RetrieveContext(ctx context.Context, doc *models.Document, question string) ([]string, error)
}

// Answerer generates an answer grounded on context chunks.
type Answerer interface {
	Answer(ctx context.Context, question string, contextChunks []string) (*answer.Result, error)
}

// QAResult is the outcome of a generate-response request.
type QAResult struct {
	Response         string
	RelevantSections []string
}

// DocumentService owns the document lifecycle: upload, extraction,
// persistence, best-effort indexing and question answering.
type DocumentService struct {
	repo      repositories.DocumentRepository
	extractor Extractor
	indexer   Indexer
	answerer  Answerer
	uploadDir string
	mode      RetrievalMode
	logger    *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	repo repositories.DocumentRepository,
	extractor Extractor,
	indexer Indexer,
	answerer Answerer,
	uploadDir string,
	mode RetrievalMode,
	logger *zap.Logger,
) *DocumentService {
	if mode == "" {
		mode = ModeVector
	}
	return &DocumentService{
		repo:      repo,
		extractor: extractor,
		indexer:   indexer,
		answerer:  answerer,
		uploadDir: uploadDir,
		mode:      mode,
		logger:    logger,
	}
}

// Upload stores an uploaded file, extracts its text, persists the document
// and indexes its chunks. Extraction and indexing are both best effort: an
// unsupported file type or a failed extraction persists the document with
// empty content, and an indexing failure is logged without failing the
// upload.
func (s *DocumentService) Upload(ctx context.Context, title, fileName string, file io.Reader) (*models.Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, services.ErrEmptyTitle
	}

	doc := models.NewDocument(title, fileName)

	path, err := s.saveFile(doc.ID, fileName, file)
	if err != nil {
		return nil, services.WrapInternal("failed to store uploaded file", err)
	}

	// Extraction never aborts the upload. Unsupported types and failed
	// extractions both persist the document with empty content.
	content, err := s.extractor.Extract(ctx, path, doc.FileType)
	if err != nil {
		s.logger.Warn("text extraction failed, storing document without content",
			zap.String("document_id", doc.ID.String()),
			zap.String("file_name", fileName),
			zap.Error(err))
		content = ""
	}
	doc.Content = content

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, services.WrapError(services.ErrorTypeInternal, "failed to persist document", err)
	}

	if err := s.indexer.IngestDocument(ctx, doc); err != nil {
		// best effort, the document row exists either way
		s.logger.Error("indexing failed for uploaded document",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
	}

	return doc, nil
}

// Get retrieves a document by id.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return doc, nil
}

// List retrieves all documents.
func (s *DocumentService) List(ctx context.Context) ([]*models.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, services.WrapError(services.ErrorTypeInternal, "failed to list documents", err)
	}
	return docs, nil
}

// Rename updates a document's title and refreshes the indexed chunk metadata.
func (s *DocumentService) Rename(ctx context.Context, id uuid.UUID, title string) (*models.Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, services.ErrEmptyTitle
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}

	doc.Title = title
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, mapRepoError(err, id)
	}

	if err := s.indexer.IngestDocument(ctx, doc); err != nil {
		s.logger.Error("re-indexing failed after rename",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
	}

	return doc, nil
}

// Delete removes a document and its indexed chunks.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, id)
	}

	if err := s.indexer.RemoveDocument(ctx, doc); err != nil {
		s.logger.Error("failed to remove indexed chunks for deleted document",
			zap.String("document_id", id.String()),
			zap.Error(err))
	}

	return nil
}

// GenerateAnswer answers a question about one document. Context comes from
// the vector index, or from the lexical ranker in ModeLexical. A document
// with nothing indexed still gets an answer: the generator receives a
// placeholder instead of context sections.
func (s *DocumentService) GenerateAnswer(ctx context.Context, documentID uuid.UUID, question string) (*QAResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, services.ErrEmptyQuestion
	}

	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, mapRepoError(err, documentID)
	}

	var sections []string
	if s.mode == ModeLexical {
		sections = ranker.Rank(chunker.Split(doc.Content), question, ranker.DefaultTopK)
	} else {
		sections, err = s.indexer.RetrieveContext(ctx, doc, question)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.answerer.Answer(ctx, question, sections)
	if err != nil {
		return nil, err
	}

	return &QAResult{
		Response:         result.Text,
		RelevantSections: result.UsedContext,
	}, nil
}

func (s *DocumentService) saveFile(id uuid.UUID, fileName string, file io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.uploadDir, fmt.Sprintf("%s_%s", id, filepath.Base(fileName)))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func mapRepoError(err error, id uuid.UUID) error {
	if repositories.IsNotFound(err) {
		return services.NewDomainError(services.ErrorTypeNotFound, "document not found", err).
			WithDetail("document_id", id.String())
	}
	return services.WrapError(services.ErrorTypeInternal, "database operation failed", err)
}
