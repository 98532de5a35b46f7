package kb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder produces deterministic vectors from keyword counts so that
// similarity in tests is predictable.
type keywordEmbedder struct {
	vocab []string
	err   error
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	return &keywordEmbedder{vocab: vocab}
}

func (e *keywordEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.vocab)+1)
	vec[0] = 1
	for i, word := range e.vocab {
		vec[i+1] = float32(strings.Count(lower, word))
	}
	return vec, nil
}

func testBank() []Entry {
	return []Entry{
		{Section: "Python", Question: "Что такое GIL в Python?"},
		{Section: "Python", Question: "Как работают декораторы в Python?"},
		{Section: "SQL", Question: "Чем отличается JOIN от подзапроса в SQL?"},
		{Section: "", Question: "без секции"},
		{Section: "Docker", Question: "   "},
	}
}

func TestKnowledgeBase_AddEntriesSkipsIncomplete(t *testing.T) {
	t.Parallel()

	kb := NewKnowledgeBase(newKeywordEmbedder("python", "sql"))
	require.NoError(t, kb.AddEntries(context.Background(), testBank()))
	assert.Equal(t, 3, kb.Len())
}

func TestKnowledgeBase_ReingestIsIdempotent(t *testing.T) {
	t.Parallel()

	kb := NewKnowledgeBase(newKeywordEmbedder("python", "sql"))
	require.NoError(t, kb.AddEntries(context.Background(), testBank()))
	require.NoError(t, kb.AddEntries(context.Background(), testBank()))
	assert.Equal(t, 3, kb.Len())
}

func TestKnowledgeBase_QuestionsForTopic(t *testing.T) {
	t.Parallel()

	kb := NewKnowledgeBase(newKeywordEmbedder("python", "sql"))
	require.NoError(t, kb.AddEntries(context.Background(), testBank()))

	results, err := kb.QuestionsForTopic(context.Background(), "основы python", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, res := range results {
		assert.Equal(t, "Python", res.Metadata["section"])
		assert.Contains(t, res.Content, "Python")
	}
}

func TestKnowledgeBase_EmptyBankSearch(t *testing.T) {
	t.Parallel()

	kb := NewKnowledgeBase(newKeywordEmbedder("python"))
	results, err := kb.SearchQuestions(context.Background(), "python", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKnowledgeBase_EmbedderFailureFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	emb := newKeywordEmbedder("python")
	kb := NewKnowledgeBase(emb)
	require.NoError(t, kb.AddEntries(context.Background(), testBank()))

	emb.err = errors.New("model unavailable")
	results, err := kb.SearchQuestions(context.Background(), "python", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInMemoryVectorStore_UpsertByID(t *testing.T) {
	t.Parallel()

	store := NewInMemoryVectorStore()
	ctx := context.Background()

	doc := Document{ID: "q1", Content: "первый", Metadata: map[string]any{"section": "Python"}}
	require.NoError(t, store.Add(ctx, doc, []float32{1, 0}))

	doc.Content = "обновлённый"
	require.NoError(t, store.Add(ctx, doc, []float32{0, 1}))

	assert.Equal(t, 1, store.Len())

	results, err := store.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "обновлённый", results[0].Content)
}

func TestInMemoryVectorStore_FilterBySection(t *testing.T) {
	t.Parallel()

	store := NewInMemoryVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, Document{ID: "a", Content: "a", Metadata: map[string]any{"section": "Python"}}, []float32{1, 0}))
	require.NoError(t, store.Add(ctx, Document{ID: "b", Content: "b", Metadata: map[string]any{"section": "SQL"}}, []float32{1, 0}))

	results, err := store.SearchWithFilter(ctx, []float32{1, 0}, 5, map[string]any{"section": "SQL"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Content)
}

func TestLoadJSONBank(t *testing.T) {
	t.Parallel()

	raw := `[
		{"section": "Python", "question": "Что такое GIL?", "grade": "middle"},
		{"section": "SQL", "question": "Что такое индекс?"}
	]`
	entries, err := LoadJSONBank(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Python", entries[0].Section)
	assert.Equal(t, "Что такое индекс?", entries[1].Question)
}

func TestLoadHTMLBank(t *testing.T) {
	t.Parallel()

	raw := `<html><body>
		<ul><li>вопрос вне секции</li></ul>
		<h2>Python</h2>
		<ul><li>Что такое GIL?</li><li>Как работает GC?</li></ul>
		<h2>SQL</h2>
		<ol><li>Что такое индекс?</li></ol>
	</body></html>`

	entries, err := LoadHTMLBank(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Section: "Python", Question: "Что такое GIL?"}, entries[0])
	assert.Equal(t, Entry{Section: "SQL", Question: "Что такое индекс?"}, entries[2])
}
