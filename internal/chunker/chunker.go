// Package chunker splits extracted document text into clean paragraph chunks.
package chunker

import (
	"regexp"
	"strings"
)

// MinChunkLength is the minimum cleaned length for a chunk to be kept.
// Shorter segments carry too little content to be useful retrieval units.
const MinChunkLength = 20

var paragraphSeparator = regexp.MustCompile(`\n\s*\n`)

// Split breaks raw text into paragraph chunks. Paragraphs are separated by
// one or more blank lines. Each chunk has internal whitespace runs collapsed
// to single spaces and is trimmed; chunks whose cleaned length is at or below
// MinChunkLength are discarded. Original paragraph order is preserved.
func Split(text string) []string {
	if text == "" {
		return nil
	}

	segments := paragraphSeparator.Split(text, -1)
	chunks := make([]string, 0, len(segments))
	for _, segment := range segments {
		cleaned := strings.Join(strings.Fields(segment), " ")
		if len(cleaned) > MinChunkLength {
			chunks = append(chunks, cleaned)
		}
	}
	return chunks
}
