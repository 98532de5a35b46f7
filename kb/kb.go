// Package kb holds the interviewer's question bank: a small in-memory vector
// store over section/question pairs, searched semantically by topic. Retrieval
// is best effort. An empty bank or a query with no hits yields an empty result
// set, never an error, so the caller can always fall back to canned questions.
package kb

import "context"

// Document is a single unit of stored knowledge.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// Entry is one question-bank record before ingestion.
type Entry struct {
	Section  string `json:"section"`
	Question string `json:"question"`
}

// SearchResult is one retrieval hit. Distance is 1 minus cosine similarity,
// so smaller means closer.
type SearchResult struct {
	Content  string
	Metadata map[string]any
	Distance float64
}

// Embedder turns text into a vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the retrieval surface the interview engine depends on.
type Searcher interface {
	SearchQuestions(ctx context.Context, query string, k int) ([]SearchResult, error)
}
