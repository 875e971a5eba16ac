package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/internal/extract"
	"github.com/upb/ai-docs-prompt/models"
)

func newMockRepo(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	wrapped := &DB{DB: db, logger: zap.NewNop()}
	return &DocumentRepository{db: wrapped, logger: zap.NewNop()}, mock
}

func documentColumns() []string {
	return []string{"id", "title", "file_name", "file_type", "content", "uploaded_at", "updated_at"}
}

func TestDocumentRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := models.NewDocument("Test Document", "test.txt")
	doc.Content = "some extracted content"

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.Title, doc.FileName, doc.FileType, doc.Content, doc.UploadedAt, doc.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), doc)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(documentColumns()).
		AddRow(id, "Test", "test.txt", string(extract.FileTypePlainText), "content here", now, now)
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs(id).
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Test", doc.Title)
	assert.Equal(t, extract.FileTypePlainText, doc.FileType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)

	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDocumentRepositoryList(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(documentColumns()).
		AddRow(uuid.New(), "Newest", "a.txt", "plain_text", "aaa", now, now).
		AddRow(uuid.New(), "Oldest", "b.pdf", "pdf", "bbb", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WillReturnRows(rows)

	docs, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Newest", docs[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := models.NewDocument("Renamed", "test.txt")

	mock.ExpectExec("UPDATE documents").
		WithArgs(doc.ID, doc.Title, doc.Content, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), doc)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryUpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := models.NewDocument("Ghost", "test.txt")

	mock.ExpectExec("UPDATE documents").
		WithArgs(doc.ID, doc.Title, doc.Content, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), doc)

	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDocumentRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM documents").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), id)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM documents").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)

	assert.ErrorIs(t, err, sql.ErrNoRows)
}
