package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/services"
)

type fakeGenerator struct {
	responses []fakeResponse
	prompts   []string
}

type fakeResponse struct {
	text string
	err  error
}

func (g *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if len(g.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp.text, resp.err
}

func newTestService(gen *fakeGenerator) (*AnswerService, *[]time.Duration) {
	svc := NewAnswerService(gen, zap.NewNop())
	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }
	return svc, &slept
}

func TestAnswerFirstAttemptSucceeds(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{{text: "the answer"}}}
	svc, slept := newTestService(gen)

	result, err := svc.Answer(context.Background(), "how many dice?", []string{"Roll 2 dice to move."})

	require.NoError(t, err)
	assert.Equal(t, "the answer", result.Text)
	assert.Equal(t, []string{"Roll 2 dice to move."}, result.UsedContext)
	assert.Len(t, gen.prompts, 1)
	assert.Empty(t, *slept)
}

func TestAnswerRetriesOnQuotaThenSucceeds(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{err: errors.New("429: Quota exceeded for requests")},
		{err: errors.New("429: quota exceeded")},
		{text: "eventually"},
	}}
	svc, slept := newTestService(gen)

	result, err := svc.Answer(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Equal(t, "eventually", result.Text)
	assert.Len(t, gen.prompts, 3)
	require.Len(t, *slept, 2)
	assert.Equal(t, 5*time.Second, (*slept)[0])
	assert.Equal(t, 10*time.Second, (*slept)[1])
}

func TestAnswerExhaustsQuotaRetries(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{err: errors.New("quota exceeded")},
		{err: errors.New("quota exceeded")},
		{err: errors.New("quota exceeded, last one")},
	}}
	svc, slept := newTestService(gen)

	_, err := svc.Answer(context.Background(), "q", nil)

	require.Error(t, err)
	assert.True(t, services.IsExhaustedError(err))
	assert.Contains(t, err.Error(), "quota exceeded, last one")
	assert.Len(t, gen.prompts, 3)
	// no sleep after the final attempt
	assert.Len(t, *slept, 2)
}

func TestAnswerAbortsOnNonQuotaError(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{
		{err: errors.New("invalid API key")},
	}}
	svc, slept := newTestService(gen)

	_, err := svc.Answer(context.Background(), "q", nil)

	require.Error(t, err)
	assert.True(t, services.IsExternalError(err))
	assert.False(t, services.IsExhaustedError(err))
	assert.Len(t, gen.prompts, 1)
	assert.Empty(t, *slept)
}

func TestAnswerPromptContainsContextAndQuestion(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{{text: "ok"}}}
	svc, _ := newTestService(gen)

	_, err := svc.Answer(context.Background(), "How does combat work?", []string{"First chunk.", "Second chunk."})

	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, strings.Repeat("-", 40))
	assert.Contains(t, prompt, "First chunk.\n\nSecond chunk.")
	assert.Contains(t, prompt, "How does combat work?")
	assert.Contains(t, prompt, "indicate that in your response")
	assert.NotContains(t, prompt, noContextPlaceholder)
}

func TestAnswerPromptUsesPlaceholderWithoutContext(t *testing.T) {
	gen := &fakeGenerator{responses: []fakeResponse{{text: "ok"}}}
	svc, _ := newTestService(gen)

	result, err := svc.Answer(context.Background(), "anything?", nil)

	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], noContextPlaceholder)
	assert.Empty(t, result.UsedContext)
}
