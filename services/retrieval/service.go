package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/internal/chunker"
	"github.com/upb/ai-docs-prompt/internal/embedding"
	"github.com/upb/ai-docs-prompt/internal/vectorstore"
	"github.com/upb/ai-docs-prompt/models"
	"github.com/upb/ai-docs-prompt/services"
)

// DefaultQueryK is how many nearest chunks a retrieval query returns.
const DefaultQueryK = 5

// Embedder turns text into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string, taskType embedding.TaskType) ([][]float32, error)
}

// VectorIndex is the persistent chunk index used for similarity search.
type VectorIndex interface {
	Upsert(ids []string, embeddings [][]float32, texts []string, metadatas []map[string]string) error
	Query(embedding []float32, k int, filter map[string]string) ([]vectorstore.Match, error)
	DeleteWhere(filter map[string]string) (int, error)
}

// RetrievalService indexes document content and retrieves the chunks most
// relevant to a question.
type RetrievalService struct {
	embedder Embedder
	index    VectorIndex
	queryK   int
	logger   *zap.Logger
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(embedder Embedder, index VectorIndex, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		queryK:   DefaultQueryK,
		logger:   logger,
	}
}

// IngestDocument chunks, embeds and indexes a document's content. Indexing is
// best effort: a failure is logged and returned, but callers treat it as
// non-fatal so an upload still succeeds when the embedding backend is down.
// Re-ingesting a document first drops its previous chunks so edits cannot
// leave stale entries behind.
func (s *RetrievalService) IngestDocument(ctx context.Context, doc *models.Document) error {
	if !doc.HasContent() {
		s.logger.Info("skipping indexing, document has no content",
			zap.String("document_id", doc.ID.String()))
		return nil
	}

	chunks := chunker.Split(doc.Content)
	if len(chunks) == 0 {
		s.logger.Info("skipping indexing, no usable chunks",
			zap.String("document_id", doc.ID.String()))
		return nil
	}

	embeddings, err := s.embedder.Embed(ctx, chunks, embedding.TaskRetrievalDocument)
	if err != nil {
		return services.WrapError(services.ErrorTypeRetrieval, "failed to embed document chunks", err)
	}
	if len(embeddings) != len(chunks) {
		s.logger.Error("embedding count mismatch",
			zap.String("document_id", doc.ID.String()),
			zap.Int("chunks", len(chunks)),
			zap.Int("embeddings", len(embeddings)))
		return services.ErrIndexingFailure
	}

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	for i := range chunks {
		ids[i] = fmt.Sprintf("%s_chunk_%d", doc.ID, i)
		metadatas[i] = map[string]string{
			"document_id":    doc.ID.String(),
			"document_title": doc.Title,
			"chunk_index":    fmt.Sprintf("%d", i),
		}
	}

	if _, err := s.index.DeleteWhere(map[string]string{"document_id": doc.ID.String()}); err != nil {
		return services.WrapError(services.ErrorTypeRetrieval, "failed to clear stale chunks", err)
	}
	if err := s.index.Upsert(ids, embeddings, chunks, metadatas); err != nil {
		return services.WrapError(services.ErrorTypeRetrieval, "failed to store document chunks", err)
	}

	s.logger.Info("document indexed",
		zap.String("document_id", doc.ID.String()),
		zap.Int("chunks", len(chunks)))
	return nil
}

// RemoveDocument drops a document's chunks from the index.
func (s *RetrievalService) RemoveDocument(ctx context.Context, doc *models.Document) error {
	removed, err := s.index.DeleteWhere(map[string]string{"document_id": doc.ID.String()})
	if err != nil {
		return services.WrapError(services.ErrorTypeRetrieval, "failed to remove document chunks", err)
	}
	s.logger.Info("document chunks removed",
		zap.String("document_id", doc.ID.String()),
		zap.Int("removed", removed))
	return nil
}

// RetrieveContext embeds the question and returns the indexed chunks nearest
// to it, restricted to the given document. An empty result is not an error:
// it means nothing relevant is indexed for that document.
func (s *RetrievalService) RetrieveContext(ctx context.Context, doc *models.Document, question string) ([]string, error) {
	embeddings, err := s.embedder.Embed(ctx, []string{question}, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, services.WrapError(services.ErrorTypeRetrieval, "failed to embed query", err)
	}
	if len(embeddings) == 0 {
		return nil, services.NewDomainError(services.ErrorTypeRetrieval, "no embedding returned for query", nil)
	}

	matches, err := s.index.Query(embeddings[0], s.queryK, map[string]string{
		"document_id": doc.ID.String(),
	})
	if err != nil {
		return nil, services.WrapError(services.ErrorTypeRetrieval, "failed to query chunk index", err)
	}

	sections := make([]string, 0, len(matches))
	for _, m := range matches {
		sections = append(sections, m.Text)
	}

	s.logger.Debug("context retrieved",
		zap.String("document_id", doc.ID.String()),
		zap.Int("sections", len(sections)))
	return sections, nil
}
