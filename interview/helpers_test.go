package interview

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"interview-engine/kb"
	"interview-engine/llm"
	"interview-engine/log"
)

// respondFunc lets a test script model output per prompt.
type respondFunc func(prompt string) (string, error)

// scriptedModel implements llms.Model over a respond function.
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

var errModelDown = errors.New("model down")

// failingModel always errors, driving every agent down its fallback path.
func failingModel() respondFunc {
	return func(string) (string, error) { return "", errModelDown }
}

// staticKnowledge is a canned QuestionSource.
type staticKnowledge struct {
	results []kb.SearchResult
	err     error
}

func (s *staticKnowledge) QuestionsForTopic(ctx context.Context, topic string, count int) ([]kb.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func bankResult(section, question string) kb.SearchResult {
	return kb.SearchResult{
		Content:  question,
		Metadata: map[string]any{"section": section, "question": question},
	}
}

// newTestEngine builds an Engine over a scripted model with deterministic
// randomness (always the first candidate) and silent logging.
func newTestEngine(respond respondFunc, knowledge QuestionSource, cfg Config) *Engine {
	inv := llm.NewInvoker(&scriptedModel{respond: respond}, llm.WithLogger(log.NoOpLogger{}))
	return NewEngine(inv, knowledge, cfg,
		WithLogger(log.NoOpLogger{}),
		WithRandInt(func(n int) int { return 0 }))
}

// planned returns a state with a ready-made plan, positioned at topicIndex.
func planned(topics []Topic, topicIndex int) State {
	state := NewState("резюме", "вакансия", "")
	for i := range topics {
		if topics[i].MaxQuestions == 0 {
			topics[i].MaxQuestions = 2
		}
	}
	state.Plan = &Plan{Topics: topics, MaxTotalQuestions: 10, InterviewStyle: "conversational"}
	state.TopicIndex = topicIndex
	if topicIndex < len(topics) {
		state.CurrentTopic = topics[topicIndex].Name
	}
	return state
}

// scored appends an evaluation with the given score for the state's current
// topic. Sub-scores sit in the middle so the unknown-response heuristic
// stays quiet unless the total itself drops under its threshold.
func scored(state State, score float64) State {
	return state.AppendEvaluation(Evaluation{
		Topic:        state.CurrentTopic,
		ScorePercent: score,
		Scores:       DetailedScores{5, 5, 5, 5, 5, 5},
	})
}
