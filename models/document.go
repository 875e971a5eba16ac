package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/upb/ai-docs-prompt/internal/extract"
)

// Document represents an uploaded document and its extracted text content.
// Content is populated once by the text extractor after upload and is
// immutable afterwards; the retrieval pipeline only ever reads it.
type Document struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	Title      string           `json:"title" db:"title"`
	FileName   string           `json:"file_name" db:"file_name"`
	FileType   extract.FileType `json:"file_type" db:"file_type"`
	Content    string           `json:"content" db:"content"`
	UploadedAt time.Time        `json:"uploaded_at" db:"uploaded_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Document model.
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a new Document instance. The file type is resolved
// once from the filename, not re-inspected downstream.
func NewDocument(title, fileName string) *Document {
	now := time.Now()
	return &Document{
		ID:         uuid.New(),
		Title:      title,
		FileName:   fileName,
		FileType:   extract.Detect(fileName),
		UploadedAt: now,
		UpdatedAt:  now,
	}
}

// HasContent reports whether extraction produced any indexable text.
func (d *Document) HasContent() bool {
	return d.Content != ""
}
