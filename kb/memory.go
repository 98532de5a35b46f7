package kb

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// InMemoryVectorStore keeps documents and their embeddings in memory and
// searches them by cosine similarity. Adding a document with an ID that is
// already present replaces the old copy, which makes ingestion idempotent.
type InMemoryVectorStore struct {
	mu         sync.RWMutex
	documents  []Document
	embeddings [][]float32
	byID       map[string]int
}

// NewInMemoryVectorStore creates an empty store.
func NewInMemoryVectorStore() *InMemoryVectorStore {
	return &InMemoryVectorStore{
		byID: make(map[string]int),
	}
}

// Add inserts a document with its embedding, replacing any document with the
// same ID.
func (s *InMemoryVectorStore) Add(ctx context.Context, doc Document, embedding []float32) error {
	if doc.ID == "" {
		return fmt.Errorf("document has no ID")
	}
	if len(embedding) == 0 {
		return fmt.Errorf("document %s has no embedding", doc.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.byID[doc.ID]; ok {
		s.documents[i] = doc
		s.embeddings[i] = embedding
		return nil
	}

	s.byID[doc.ID] = len(s.documents)
	s.documents = append(s.documents, doc)
	s.embeddings = append(s.embeddings, embedding)
	return nil
}

// Len returns the number of stored documents.
func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Search returns up to k documents closest to the query embedding.
func (s *InMemoryVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]SearchResult, error) {
	return s.SearchWithFilter(ctx, queryEmbedding, k, nil)
}

// SearchWithFilter returns up to k closest documents whose metadata matches
// every key in filter. A nil or empty filter matches everything.
func (s *InMemoryVectorStore) SearchWithFilter(ctx context.Context, queryEmbedding []float32, k int, filter map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type docScore struct {
		index int
		score float64
	}

	var scores []docScore
	for i, doc := range s.documents {
		if !matchesFilter(doc, filter) {
			continue
		}
		scores = append(scores, docScore{
			index: i,
			score: cosineSimilarity32(queryEmbedding, s.embeddings[i]),
		})
	}

	if len(scores) == 0 {
		return []SearchResult{}, nil
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]SearchResult, k)
	for i := 0; i < k; i++ {
		doc := s.documents[scores[i].index]
		results[i] = SearchResult{
			Content:  doc.Content,
			Metadata: doc.Metadata,
			Distance: 1 - scores[i].score,
		}
	}

	return results, nil
}

func matchesFilter(doc Document, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := doc.Metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
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
