package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/models"
	"github.com/upb/ai-docs-prompt/repositories"
)

// DocumentRepository implements the repositories.DocumentRepository interface
type DocumentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB, logger *zap.Logger) repositories.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new document
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, title, file_name, file_type, content, uploaded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.FileName,
		doc.FileType,
		doc.Content,
		doc.UploadedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	r.logger.Debug("document created", zap.String("id", doc.ID.String()))
	return nil
}

// GetByID retrieves a document by ID. A missing document wraps sql.ErrNoRows
// so callers can map it to not-found.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `
		SELECT id, title, file_name, file_type, content, uploaded_at, updated_at
		FROM documents
		WHERE id = $1
	`

	doc := &models.Document{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.Title,
		&doc.FileName,
		&doc.FileType,
		&doc.Content,
		&doc.UploadedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document not found: %s: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// List retrieves all documents, most recently uploaded first
func (r *DocumentRepository) List(ctx context.Context) ([]*models.Document, error) {
	query := `
		SELECT id, title, file_name, file_type, content, uploaded_at, updated_at
		FROM documents
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.FileName,
			&doc.FileType,
			&doc.Content,
			&doc.UploadedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Update updates a document's title and content
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents
		SET title = $2, content = $3, updated_at = $4
		WHERE id = $1
	`

	doc.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document not found: %s: %w", doc.ID, sql.ErrNoRows)
	}

	r.logger.Debug("document updated", zap.String("id", doc.ID.String()))
	return nil
}

// Delete deletes a document
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document not found: %s: %w", id, sql.ErrNoRows)
	}

	r.logger.Debug("document deleted", zap.String("id", id.String()))
	return nil
}
