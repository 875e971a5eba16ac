package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/services"
)

// MaxAttempts is the total number of generation attempts, including the first.
const MaxAttempts = 3

// initialRetryDelay is the wait before the first retry. It doubles after each
// retried attempt.
const initialRetryDelay = 5 * time.Second

// noContextPlaceholder stands in for the joined context when retrieval found
// nothing relevant for the document.
const noContextPlaceholder = "No specific context sections were found in the document for this query."

var promptSeparator = strings.Repeat("-", 40)

// Generator is the remote text generation backend.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Result is a generated answer together with the context it was grounded on.
type Result struct {
	Text        string
	UsedContext []string
}

// AnswerService assembles prompts and calls the generative model with bounded
// retry on quota errors.
type AnswerService struct {
	generator Generator
	sleep     func(time.Duration)
	logger    *zap.Logger
}

// NewAnswerService creates a new answer service
func NewAnswerService(generator Generator, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		generator: generator,
		sleep:     time.Sleep,
		logger:    logger,
	}
}

// Answer generates a response to the question grounded on the given context
// chunks. The remote call is attempted up to MaxAttempts times; only failures
// whose message contains "quota" (case-insensitive) are retried, with the
// delay doubling between attempts. Any other failure aborts immediately.
// Exhausting all attempts on quota errors yields ErrGenerationExhausted with
// the last failure text preserved.
func (s *AnswerService) Answer(ctx context.Context, question string, contextChunks []string) (*Result, error) {
	prompt := buildPrompt(question, contextChunks)

	delay := initialRetryDelay
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		text, err := s.generator.GenerateContent(ctx, prompt)
		if err == nil {
			s.logger.Info("answer generated",
				zap.Int("attempt", attempt),
				zap.Int("context_chunks", len(contextChunks)))
			return &Result{Text: text, UsedContext: contextChunks}, nil
		}

		if !isQuotaError(err) {
			return nil, services.WrapExternal("generation failed", err)
		}

		lastErr = err
		if attempt < MaxAttempts {
			s.logger.Warn("quota error from generation backend, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
			s.sleep(delay)
			delay *= 2
		}
	}

	return nil, services.WrapError(services.ErrorTypeExhausted,
		fmt.Sprintf("generation failed after %d attempts", MaxAttempts), lastErr)
}

func isQuotaError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "quota")
}

func buildPrompt(question string, contextChunks []string) string {
	promptContext := noContextPlaceholder
	if len(contextChunks) > 0 {
		promptContext = strings.Join(contextChunks, "\n\n")
	}

	var b strings.Builder
	b.WriteString("Based on the following relevant sections from the documentation:\n\n")
	b.WriteString(promptSeparator)
	b.WriteString("\n")
	b.WriteString(promptContext)
	b.WriteString("\n")
	b.WriteString(promptSeparator)
	b.WriteString("\n\nPlease answer this question:\n")
	b.WriteString(question)
	b.WriteString("\n\nNote: If the provided sections don't contain enough information to answer the question accurately,\nplease indicate that in your response.\n")
	return b.String()
}
