// Package ranker selects the chunks most relevant to a query using lexical
// TF-IDF similarity with keyword boosting. It is the retrieval path used when
// no vector index is available, and needs no remote embedding service.
package ranker

import (
	"sort"
	"strings"
)

// DefaultTopK is the number of chunks selected when the caller does not
// specify one.
const DefaultTopK = 3

// keywordBoost is the per-keyword multiplier applied on top of raw cosine
// similarity when re-scoring the selected chunks.
const keywordBoost = 0.2

// contextWindow is the number of sentences kept on each side of a sentence
// that matches a query keyword.
const contextWindow = 2

// Rank scores chunks against the query and returns up to topK contextual
// excerpts, most relevant first. Excerpts are built from the sentences around
// keyword matches; a chunk with no matching sentence is returned whole.
//
// Rank never fails: if the TF-IDF space cannot be built (for example, a
// corpus of pure stop-words), it falls back to the first DefaultTopK chunks
// verbatim. Empty input yields an empty result.
func Rank(chunks []string, query string, topK int) []string {
	if len(chunks) == 0 {
		return []string{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	keywords := extractKeywords(query)

	v, err := newVectorizer(chunks)
	if err != nil {
		return fallback(chunks)
	}

	queryVec := v.vector(query)
	scores := make([]float64, len(chunks))
	for i, chunk := range chunks {
		scores[i] = cosine(queryVec, v.vector(chunk))
	}

	selected := topIndices(scores, topK)

	// Boost by whole-word keyword matches, then re-sort the selection.
	type scoredChunk struct {
		index    int
		combined float64
	}
	rescored := make([]scoredChunk, len(selected))
	for i, idx := range selected {
		matches := countKeywordMatches(chunks[idx], keywords)
		rescored[i] = scoredChunk{
			index:    idx,
			combined: scores[idx] * (1 + keywordBoost*float64(matches)),
		}
	}
	sort.SliceStable(rescored, func(i, j int) bool {
		return rescored[i].combined > rescored[j].combined
	})

	results := make([]string, 0, len(rescored))
	for _, sc := range rescored {
		results = append(results, excerpt(chunks[sc.index], keywords))
	}
	return results
}

// extractKeywords returns the deduplicated lowercase query words longer than
// 3 characters.
func extractKeywords(query string) map[string]struct{} {
	keywords := make(map[string]struct{})
	for _, word := range tokenPattern.FindAllString(strings.ToLower(query), -1) {
		if len(word) > 3 {
			keywords[word] = struct{}{}
		}
	}
	return keywords
}

// countKeywordMatches counts the chunk words present in the keyword set.
// Every occurrence counts, not just distinct words.
func countKeywordMatches(chunk string, keywords map[string]struct{}) int {
	if len(keywords) == 0 {
		return 0
	}
	count := 0
	for _, word := range tokenPattern.FindAllString(strings.ToLower(chunk), -1) {
		if _, ok := keywords[word]; ok {
			count++
		}
	}
	return count
}

// excerpt extracts the sentences around keyword hits, keeping contextWindow
// sentences on each side, deduplicated in first-seen order. When no sentence
// matches, the whole chunk is returned unchanged.
func excerpt(chunk string, keywords map[string]struct{}) string {
	sentences := splitSentences(chunk)
	if len(sentences) == 0 {
		return chunk
	}

	included := make([]bool, len(sentences))
	hit := false
	for i, sentence := range sentences {
		if !sentenceHasKeyword(sentence, keywords) {
			continue
		}
		hit = true
		start := i - contextWindow
		if start < 0 {
			start = 0
		}
		end := i + contextWindow
		if end > len(sentences)-1 {
			end = len(sentences) - 1
		}
		for j := start; j <= end; j++ {
			included[j] = true
		}
	}
	if !hit {
		return chunk
	}

	kept := make([]string, 0, len(sentences))
	for i, sentence := range sentences {
		if included[i] {
			kept = append(kept, sentence)
		}
	}
	return strings.Join(kept, ". ") + "."
}

func splitSentences(chunk string) []string {
	parts := strings.Split(chunk, ".")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func sentenceHasKeyword(sentence string, keywords map[string]struct{}) bool {
	lower := strings.ToLower(sentence)
	for keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// topIndices returns the indices of the k highest scores, in descending score
// order. Ties keep ascending index order.
func topIndices(scores []float64, k int) []int {
	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return scores[indices[i]] > scores[indices[j]]
	})
	if k > len(indices) {
		k = len(indices)
	}
	return indices[:k]
}

func fallback(chunks []string) []string {
	k := DefaultTopK
	if k > len(chunks) {
		k = len(chunks)
	}
	out := make([]string, k)
	copy(out, chunks[:k])
	return out
}
