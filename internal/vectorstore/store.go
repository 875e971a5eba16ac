// Package vectorstore provides a persistent named vector collection with
// brute-force nearest-neighbor search and metadata filtering. Vectors are
// kept in memory for search and written through to bbolt so the collection
// survives process restarts.
package vectorstore

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// DefaultCollection is the collection name used by the document index.
const DefaultCollection = "document_embeddings"

// Match is a single nearest-neighbor result.
type Match struct {
	ID       string
	Text     string
	Score    float64
	Metadata map[string]string
}

// Store is a bbolt-backed vector collection. All entries in one collection
// share one embedding dimensionality, fixed by the first vector stored.
type Store struct {
	db         *bbolt.DB
	collection []byte
	logger     *zap.Logger

	mu        sync.RWMutex
	dimension int
	entries   map[string]entry
}

type entry struct {
	vector   []float32
	text     string
	metadata map[string]string
}

type storedEntry struct {
	Vector   []float32         `json:"v"`
	Text     string            `json:"t"`
	Metadata map[string]string `json:"m,omitempty"`
}

// Open opens (or creates) the collection in the bbolt file at path.
func Open(path, collection string, logger *zap.Logger) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	s := &Store{
		db:         db,
		collection: []byte(collection),
		logger:     logger,
		entries:    make(map[string]entry),
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.collection)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create collection %s: %w", collection, err)
	}

	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load collection %s: %w", collection, err)
	}

	logger.Info("vector collection opened",
		zap.String("collection", collection),
		zap.Int("entries", len(s.entries)))

	return s, nil
}

// load reads all persisted entries into the in-memory search index.
func (s *Store) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.collection)
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				// Skip corrupted entries rather than failing the open.
				s.logger.Warn("skipping corrupted vector entry", zap.String("id", string(k)))
				return nil
			}
			s.entries[string(k)] = entry{
				vector:   stored.Vector,
				text:     stored.Text,
				metadata: stored.Metadata,
			}
			if s.dimension == 0 {
				s.dimension = len(stored.Vector)
			}
			return nil
		})
	})
}

// Upsert inserts or replaces entries. The four slices must have equal length;
// an id already present is overwritten. All vectors must match the
// collection's dimensionality once it is established.
func (s *Store) Upsert(ids []string, embeddings [][]float32, texts []string, metadatas []map[string]string) error {
	if len(ids) != len(embeddings) || len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert length mismatch: ids=%d embeddings=%d texts=%d metadatas=%d",
			len(ids), len(embeddings), len(texts), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, emb := range embeddings {
		if s.dimension == 0 {
			s.dimension = len(emb)
		}
		if len(emb) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(emb))
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.collection)
		for i, id := range ids {
			data, err := json.Marshal(storedEntry{
				Vector:   embeddings[i],
				Text:     texts[i],
				Metadata: metadatas[i],
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist vectors: %w", err)
	}

	for i, id := range ids {
		s.entries[id] = entry{
			vector:   embeddings[i],
			text:     texts[i],
			metadata: metadatas[i],
		}
	}
	return nil
}

// Query returns up to k entries nearest to the embedding whose metadata
// matches every key/value pair in filter, most similar first. No matches is
// an empty result, not an error.
func (s *Store) Query(embedding []float32, k int, filter map[string]string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimension != 0 && len(embedding) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(embedding))
	}

	matches := make([]Match, 0, k)
	for id, e := range s.entries {
		if !metadataMatches(e.metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			ID:       id,
			Text:     e.text,
			Score:    cosineSimilarity(embedding, e.vector),
			Metadata: e.metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// DeleteWhere removes every entry whose metadata matches the filter and
// returns how many were removed. Re-ingestion uses this to clear a document's
// stale chunks before inserting fresh ones.
func (s *Store) DeleteWhere(filter map[string]string) (int, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("refusing to delete with an empty filter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []string
	for id, e := range s.entries {
		if metadataMatches(e.metadata, filter) {
			doomed = append(doomed, id)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.collection)
		for _, id := range doomed {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete vectors: %w", err)
	}

	for _, id := range doomed {
		delete(s.entries, id)
	}
	return len(doomed), nil
}

// Count returns the number of entries in the collection.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

func metadataMatches(metadata, filter map[string]string) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
