package interview

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_ParsesModelPlan(t *testing.T) {
	t.Parallel()

	respond := func(prompt string) (string, error) {
		return `{"topics": [
			{"name": "Resume Discussion", "description": "опыт"},
			{"name": "Python", "description": "основы языка"}
		], "interview_style": "conversational"}`, nil
	}
	e := newTestEngine(respond, nil, DefaultConfig())

	out, err := e.Plan(context.Background(), NewState("резюме", "вакансия", ""))
	require.NoError(t, err)
	require.NotNil(t, out.Plan)
	require.Len(t, out.Plan.Topics, 2)
	assert.Equal(t, 10, out.Plan.MaxTotalQuestions)
	for _, topic := range out.Plan.Topics {
		assert.Equal(t, 2, topic.MaxQuestions)
	}
}

func TestPlan_FallbackOnModelFailure(t *testing.T) {
	t.Parallel()

	e := newTestEngine(failingModel(), nil, DefaultConfig())
	out, err := e.Plan(context.Background(), NewState("резюме", "вакансия", ""))
	require.NoError(t, err)
	require.NotNil(t, out.Plan)

	assert.Len(t, out.Plan.Topics, 8)
	assert.Equal(t, TopicResumeDiscussion, out.Plan.Topics[0].Name)
	assert.Positive(t, out.Plan.MaxTotalQuestions)
	for _, topic := range out.Plan.Topics {
		assert.Equal(t, 2, topic.MaxQuestions)
	}
}

func TestPlan_FallbackOnJSONWithoutTopics(t *testing.T) {
	t.Parallel()

	respond := func(prompt string) (string, error) {
		return `{"interview_style": "conversational"}`, nil
	}
	e := newTestEngine(respond, nil, DefaultConfig())

	out, err := e.Plan(context.Background(), NewState("резюме", "вакансия", ""))
	require.NoError(t, err)
	assert.Len(t, out.Plan.Topics, 8)
}

// interviewModel scripts a full interview: a one-topic plan, resume
// questions, weak evaluations flagged as "does not know", guided hints and
// a rejecting report.
func interviewModel(t *testing.T) respondFunc {
	return func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "план собеседования"):
			return `{"topics": [{"name": "Resume Discussion", "description": "опыт"}], "interview_style": "conversational"}`, nil
		case strings.Contains(prompt, "Задай вопрос"):
			return "Расскажите о вашем последнем проекте?", nil
		case strings.Contains(prompt, "Оцени ответ"):
			return `{"technical_accuracy": 1, "depth_of_knowledge": 1, "practical_experience": 1,
				"communication_clarity": 2, "problem_solving_approach": 1, "examples_and_use_cases": 1,
				"red_flags": ["Кандидат не знает основ"], "weaknesses": ["нет ответа по сути"]}`, nil
		case strings.Contains(prompt, "Переформулируй предыдущий вопрос"):
			return "Уточните: какую задачу в проекте вы решали лично?", nil
		case strings.Contains(prompt, "финальный отчет"):
			return "Кандидат не раскрыл ни одной темы. РЕШЕНИЕ: REJECT", nil
		case strings.Contains(prompt, "Сгенерируй"):
			return "Приведите пример задачи, которую вы решали самостоятельно?", nil
		default:
			t.Fatalf("unexpected prompt: %s", prompt)
			return "", nil
		}
	}
}

func TestRun_EndToEndUnknownCandidate(t *testing.T) {
	t.Parallel()

	e := newTestEngine(interviewModel(t), &staticKnowledge{}, DefaultConfig())

	answers := 0
	provider := func(ctx context.Context, q Question) (string, error) {
		answers++
		return "Не знаю", nil
	}

	final, err := e.Run(context.Background(), "Python developer, 3 years", "Backend Python role", "", provider)
	require.NoError(t, err)

	// One topic with a quota of two: the resume question, then the guided
	// hint after the unknown answer, then the report.
	assert.Equal(t, 2, answers)
	assert.Equal(t, 2, final.QuestionsAsked)
	require.Len(t, final.Evaluations, 2)
	assert.Equal(t, RecommendationReject, final.Recommendation)
	assert.Contains(t, final.Report, "REJECT")
	assert.Equal(t, TopicResumeDiscussion, final.Evaluations[1].Topic)
	assert.Equal(t, QuestionTypeHint, final.LastQuestionType)
}

func TestRun_ControllerHintAfterUnknownAnswer(t *testing.T) {
	t.Parallel()

	e := newTestEngine(interviewModel(t), &staticKnowledge{}, DefaultConfig())

	state := planned([]Topic{{Name: TopicResumeDiscussion, MaxQuestions: 2}}, 0)
	state.CurrentQuestion = &Question{ID: "resume_q_0", Content: "Расскажите о проекте?"}
	state = e.RecordAnswer(state, "Не знаю")

	state, err := e.Evaluate(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, state.Evaluations, 1)
	assert.True(t, isUnknownResponse(state.Evaluations[0], e.Config().UnknownMarkers))

	d := e.Decide(state)
	assert.Equal(t, ActionProvideHint, d.Action)

	state = e.Apply(context.Background(), state, d)
	require.NotNil(t, state.GeneratedQuestion)
	assert.Equal(t, NodeConversation, e.Route(state))
}

func TestRun_StepCeilingStopsRunawayLoop(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxSteps = 3
	e := newTestEngine(interviewModel(t), &staticKnowledge{}, cfg)

	provider := func(ctx context.Context, q Question) (string, error) {
		return "ответ", nil
	}

	_, err := e.Run(context.Background(), "резюме", "вакансия", "", provider)
	require.Error(t, err)
}
