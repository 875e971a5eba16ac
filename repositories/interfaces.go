package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/upb/ai-docs-prompt/models"
)

// IsNotFound reports whether a repository error means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// DocumentRepository handles document data operations
type DocumentRepository interface {
	// Create persists a new document
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)

	// List retrieves all documents, most recently uploaded first
	List(ctx context.Context) ([]*models.Document, error)

	// Update updates a document's title and content
	Update(ctx context.Context, doc *models.Document) error

	// Delete deletes a document
	Delete(ctx context.Context, id uuid.UUID) error
}
