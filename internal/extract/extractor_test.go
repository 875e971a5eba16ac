package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	calls  int
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	m.calls++
	return m.output, m.err
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		expected FileType
	}{
		{"notes.txt", FileTypePlainText},
		{"NOTES.TXT", FileTypePlainText},
		{"manual.pdf", FileTypePDF},
		{"Manual.PDF", FileTypePDF},
		{"image.png", FileTypeUnsupported},
		{"archive.tar.gz", FileTypeUnsupported},
		{"noextension", FileTypeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.filename))
		})
	}
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello from a text file"), 0600))

	e := New(zap.NewNop())
	content, err := e.Extract(context.Background(), path, FileTypePlainText)

	require.NoError(t, err)
	assert.Equal(t, "hello from a text file", content)
}

func TestExtractPlainTextMissingFile(t *testing.T) {
	e := New(zap.NewNop())
	_, err := e.Extract(context.Background(), "/nonexistent/file.txt", FileTypePlainText)
	assert.Error(t, err)
}

func TestExtractPDF(t *testing.T) {
	runner := &mockRunner{output: []byte("extracted pdf text")}
	e := NewWithRunner(runner, zap.NewNop())

	content, err := e.Extract(context.Background(), "doc.pdf", FileTypePDF)

	require.NoError(t, err)
	assert.Equal(t, "extracted pdf text", content)
	assert.Equal(t, 1, runner.calls)
}

func TestExtractPDFFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext not found")}
	e := NewWithRunner(runner, zap.NewNop())

	_, err := e.Extract(context.Background(), "doc.pdf", FileTypePDF)
	assert.Error(t, err)
}

func TestExtractUnsupportedYieldsEmptyContent(t *testing.T) {
	runner := &mockRunner{}
	e := NewWithRunner(runner, zap.NewNop())

	content, err := e.Extract(context.Background(), "image.png", FileTypeUnsupported)

	require.NoError(t, err)
	assert.Empty(t, content)
	assert.Zero(t, runner.calls)
}
