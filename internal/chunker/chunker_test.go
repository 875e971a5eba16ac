package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "empty input",
			text:     "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			text:     "   \n\n  \t  ",
			expected: nil,
		},
		{
			name:     "single paragraph",
			text:     "This is a single paragraph of text.",
			expected: []string{"This is a single paragraph of text."},
		},
		{
			name: "collapses internal whitespace",
			text: "This   paragraph\nhas\t\tmessy    internal spacing.",
			expected: []string{
				"This paragraph has messy internal spacing.",
			},
		},
		{
			name: "discards short segments",
			text: "Too short.\n\nThis paragraph is long enough to keep around.",
			expected: []string{
				"This paragraph is long enough to keep around.",
			},
		},
		{
			name: "multiple blank lines act as one separator",
			text: "The first paragraph has enough text.\n\n\n\nThe second paragraph also has enough text.",
			expected: []string{
				"The first paragraph has enough text.",
				"The second paragraph also has enough text.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Split(tt.text))
		})
	}
}

func TestSplitSectionOrder(t *testing.T) {
	text := `
	Section 1: Introduction
	This is the introduction section of the document.

	Section 2: Game Rules
	When attacking, roll 2 dice. Add your attack modifier to the result.
	If the total is higher than the target's defense, the attack hits.

	Section 3: Combat
	Combat is resolved in turns. Each player takes their turn in order.
	During your turn, you can move and perform one action.
	`

	chunks := Split(text)
	require.Len(t, chunks, 3)
	assert.Contains(t, chunks[0], "Section 1")
	assert.Contains(t, chunks[1], "Section 2")
	assert.Contains(t, chunks[2], "Section 3")
}

func TestSplitNeverReturnsDirtyChunks(t *testing.T) {
	text := "  leading space paragraph with plenty of words  \n\n\ttabbed   paragraph  with   doubled   spaces inside\t\n\nshort\n\nA final paragraph that clears the length threshold."

	for _, chunk := range Split(text) {
		assert.Equal(t, strings.TrimSpace(chunk), chunk)
		assert.NotContains(t, chunk, "  ")
		assert.Greater(t, len(chunk), MinChunkLength)
	}
}
