package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"interview-engine/interview"
	"interview-engine/kb"
	"interview-engine/llm"
	"interview-engine/log"
)

// respondFunc lets a test script model output per prompt.
type respondFunc func(prompt string) (string, error)

type scriptedModel struct {
	respond respondFunc
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt.WriteString(text.Text)
			}
		}
	}
	text, err := m.respond(prompt.String())
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// staticSource is a canned question source for the shared engine.
type staticSource struct {
	results []kb.SearchResult
}

func (s *staticSource) QuestionsForTopic(ctx context.Context, topic string, count int) ([]kb.SearchResult, error) {
	return s.results, nil
}

func bankResult(section, question string) kb.SearchResult {
	return kb.SearchResult{
		Content:  question,
		Metadata: map[string]any{"section": section, "question": question},
	}
}

// flatEmbedder maps every text to the same vector; with a one-entry bank the
// search always returns that entry.
type flatEmbedder struct{}

func (flatEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func newTestEngine(respond respondFunc, knowledge interview.QuestionSource) *interview.Engine {
	inv := llm.NewInvoker(&scriptedModel{respond: respond}, llm.WithLogger(log.NoOpLogger{}))
	return interview.NewEngine(inv, knowledge, interview.DefaultConfig(),
		interview.WithLogger(log.NoOpLogger{}),
		interview.WithRandInt(func(n int) int { return 0 }))
}

func newTestManager(respond respondFunc, knowledge interview.QuestionSource, opts ...ManagerOption) (*Manager, *MemoryStore) {
	store := NewMemoryStore(time.Hour)
	opts = append([]ManagerOption{WithLogger(log.NoOpLogger{})}, opts...)
	return NewManager(newTestEngine(respond, knowledge), store, opts...), store
}

// evalJSON builds an evaluator response with every sub-score at the given
// value.
func evalJSON(score int) string {
	return fmt.Sprintf(`{
		"technical_accuracy": %[1]d, "depth_of_knowledge": %[1]d,
		"practical_experience": %[1]d, "communication_clarity": %[1]d,
		"problem_solving_approach": %[1]d, "examples_and_use_cases": %[1]d,
		"red_flags": [], "weaknesses": [], "strengths": ["ответ по делу"]
	}`, score)
}
