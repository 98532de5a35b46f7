package kb

import (
	"context"
	"fmt"
	"strings"

	"interview-engine/log"
)

// KnowledgeBase pairs an embedder with a vector store and exposes the
// question-bank operations the interview engine uses.
type KnowledgeBase struct {
	store    *InMemoryVectorStore
	embedder Embedder
	logger   log.Logger
}

// KnowledgeBaseOption configures a KnowledgeBase.
type KnowledgeBaseOption func(*KnowledgeBase)

// WithLogger sets the logger.
func WithLogger(l log.Logger) KnowledgeBaseOption {
	return func(kb *KnowledgeBase) { kb.logger = l }
}

// NewKnowledgeBase creates an empty knowledge base over the given embedder.
func NewKnowledgeBase(embedder Embedder, opts ...KnowledgeBaseOption) *KnowledgeBase {
	kb := &KnowledgeBase{
		store:    NewInMemoryVectorStore(),
		embedder: embedder,
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(kb)
	}
	return kb
}

// Len returns the number of ingested questions.
func (kb *KnowledgeBase) Len() int {
	return kb.store.Len()
}

// AddEntries ingests question-bank records. Entries missing a section or a
// question are skipped. Document IDs are derived from position and section,
// so re-ingesting the same bank overwrites rather than duplicates.
func (kb *KnowledgeBase) AddEntries(ctx context.Context, entries []Entry) error {
	added := 0
	for i, entry := range entries {
		section := strings.TrimSpace(entry.Section)
		question := strings.TrimSpace(entry.Question)
		if section == "" || question == "" {
			continue
		}

		content := fmt.Sprintf("Секция: %s\nВопрос: %s", section, question)
		embedding, err := kb.embedder.EmbedQuery(ctx, content)
		if err != nil {
			return fmt.Errorf("embed entry %d: %w", i, err)
		}

		doc := Document{
			ID:      fmt.Sprintf("question_%d_%s", i, section),
			Content: content,
			Metadata: map[string]any{
				"section":  section,
				"question": question,
			},
		}
		if err := kb.store.Add(ctx, doc, embedding); err != nil {
			return err
		}
		added++
	}

	kb.logger.Info("knowledge base: added %d of %d entries", added, len(entries))
	return nil
}

// SearchQuestions performs semantic search over the bank. Failures and empty
// banks both come back as an empty slice; the engine treats missing knowledge
// as a reason to fall back, not to stop the interview.
func (kb *KnowledgeBase) SearchQuestions(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if kb.store.Len() == 0 || k <= 0 {
		return []SearchResult{}, nil
	}

	embedding, err := kb.embedder.EmbedQuery(ctx, query)
	if err != nil {
		kb.logger.Warn("knowledge base: embedding query failed: %v", err)
		return []SearchResult{}, nil
	}

	results, err := kb.store.Search(ctx, embedding, k)
	if err != nil {
		kb.logger.Warn("knowledge base: search failed: %v", err)
		return []SearchResult{}, nil
	}
	return results, nil
}

// QuestionsForTopic returns up to count bank questions relevant to the topic.
// It oversamples the search and keeps only hits that carry both a question
// and a section in their metadata.
func (kb *KnowledgeBase) QuestionsForTopic(ctx context.Context, topic string, count int) ([]SearchResult, error) {
	if count <= 0 {
		return []SearchResult{}, nil
	}

	raw, err := kb.SearchQuestions(ctx, topic, count*3)
	if err != nil {
		return []SearchResult{}, nil
	}

	filtered := make([]SearchResult, 0, count)
	for _, item := range raw {
		question, _ := item.Metadata["question"].(string)
		if question == "" {
			question = item.Content
		}
		section, _ := item.Metadata["section"].(string)
		if question == "" || section == "" {
			continue
		}

		filtered = append(filtered, SearchResult{
			Content:  question,
			Metadata: map[string]any{"section": section, "question": question},
			Distance: item.Distance,
		})
		if len(filtered) >= count {
			break
		}
	}

	return filtered, nil
}
