// Package extract turns uploaded files into raw text. The file type is
// resolved once from the extension at upload time; extraction itself never
// fails document creation; unsupported types simply yield empty content.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileType tags what the extractor can do with an uploaded file.
type FileType string

const (
	FileTypePlainText   FileType = "plain_text"
	FileTypePDF         FileType = "pdf"
	FileTypeUnsupported FileType = "unsupported"
)

// Detect resolves the file type from the filename extension.
func Detect(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return FileTypePlainText
	case ".pdf":
		return FileTypePDF
	default:
		return FileTypeUnsupported
	}
}

// Supported reports whether uploads with this filename are accepted at all.
func Supported(filename string) bool {
	return Detect(filename) != FileTypeUnsupported
}

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor produces raw text from uploaded files. PDF extraction shells out
// to pdftotext through the runner, which tests replace with a double.
type Extractor struct {
	runner CommandRunner
	logger *zap.Logger
}

// New creates an extractor using the real pdftotext binary.
func New(logger *zap.Logger) *Extractor {
	return &Extractor{runner: execRunner{}, logger: logger}
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner, logger *zap.Logger) *Extractor {
	return &Extractor{runner: runner, logger: logger}
}

// Extract returns the raw text content of the file at path. Unsupported
// types yield empty content and no error. Read or conversion failures are
// returned to the caller, which treats them as "content stays empty".
func (e *Extractor) Extract(ctx context.Context, path string, fileType FileType) (string, error) {
	switch fileType {
	case FileTypePlainText:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(data), nil

	case FileTypePDF:
		// "-" writes the extracted text to stdout.
		out, err := e.runner.Run(ctx, "pdftotext", path, "-")
		if err != nil {
			return "", fmt.Errorf("pdf text extraction failed: %w", err)
		}
		return string(out), nil

	default:
		e.logger.Warn("unsupported file type for content extraction",
			zap.String("path", path),
			zap.String("file_type", string(fileType)))
		return "", nil
	}
}
