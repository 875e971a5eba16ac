package ranker

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// vectorizer is a TF-IDF vector space built over a chunk corpus. Query strings
// are projected into the same space so cosine similarity is meaningful.
type vectorizer struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+(?:'[a-z]+)*`)

var errEmptyVocabulary = errors.New("no indexable terms in corpus")

// newVectorizer builds the vocabulary and smoothed IDF values from the corpus.
// English stop-words are excluded from the vocabulary.
func newVectorizer(corpus []string) (*vectorizer, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, errEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		dimension:  len(terms),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v, nil
}

// vector computes the L2-normalized TF-IDF vector for text.
func (v *vectorizer) vector(text string) []float64 {
	vec := make([]float64, v.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// cosine returns the cosine similarity of two same-space vectors. Inputs from
// vector() are already L2-normalized, so the dot product suffices.
func cosine(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than",
		"so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "should", "now", "not", "no",
		"do", "does", "did", "have", "has", "had", "you", "your", "they",
		"their", "we", "our", "he", "she", "his", "her", "its", "what",
		"which", "who", "whom", "when", "where", "why", "how", "all", "any",
		"both", "each", "few", "more", "most", "other", "some",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
