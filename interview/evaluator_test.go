package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalState() State {
	state := planned([]Topic{{Name: "Python"}}, 0)
	state.CurrentQuestion = &Question{ID: "q1", Content: "Что такое GIL?"}
	state.LastAnswer = "Глобальная блокировка интерпретатора."
	return state
}

func TestEvaluate_WeightedScore(t *testing.T) {
	t.Parallel()

	respond := func(prompt string) (string, error) {
		return `{"technical_accuracy": 8, "depth_of_knowledge": 6, "practical_experience": 7,
			"communication_clarity": 9, "problem_solving_approach": 5, "examples_and_use_cases": 4,
			"strengths": ["чёткое определение"], "weaknesses": []}`, nil
	}
	e := newTestEngine(respond, nil, DefaultConfig())

	out, err := e.Evaluate(context.Background(), evalState())
	require.NoError(t, err)
	require.Len(t, out.Evaluations, 1)

	ev := out.Evaluations[0]
	assert.Equal(t, "Python", ev.Topic)
	assert.InDelta(t, 8*10*0.25+6*10*0.20+7*10*0.20+9*10*0.15+5*10*0.10+4*10*0.10, ev.ScorePercent, 1e-9)
	assert.Equal(t, []string{"чёткое определение"}, ev.Analysis.Strengths)
	assert.Equal(t, "Что такое GIL?", ev.Question)
}

func TestEvaluate_ScoreBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
		want     float64
	}{
		{
			"all tens is exactly 100",
			`{"technical_accuracy": 10, "depth_of_knowledge": 10, "practical_experience": 10,
			  "communication_clarity": 10, "problem_solving_approach": 10, "examples_and_use_cases": 10}`,
			100.0,
		},
		{
			"all zeros is exactly 0",
			`{"technical_accuracy": 0, "depth_of_knowledge": 0, "practical_experience": 0,
			  "communication_clarity": 0, "problem_solving_approach": 0, "examples_and_use_cases": 0}`,
			0.0,
		},
		{
			"out-of-range values are clamped",
			`{"technical_accuracy": 15, "depth_of_knowledge": -3, "practical_experience": 10,
			  "communication_clarity": 10, "problem_solving_approach": 10, "examples_and_use_cases": 10}`,
			10*10*0.25 + 0 + 100*0.20 + 100*0.15 + 100*0.10 + 100*0.10,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(func(string) (string, error) { return tc.response, nil }, nil, DefaultConfig())
			out, err := e.Evaluate(context.Background(), evalState())
			require.NoError(t, err)
			require.Len(t, out.Evaluations, 1)
			assert.InDelta(t, tc.want, out.Evaluations[0].ScorePercent, 1e-9)
		})
	}
}

func TestEvaluate_MissingSubScoreDefaultsToFive(t *testing.T) {
	t.Parallel()

	respond := func(prompt string) (string, error) {
		return `{"technical_accuracy": 10}`, nil
	}
	e := newTestEngine(respond, nil, DefaultConfig())

	out, err := e.Evaluate(context.Background(), evalState())
	require.NoError(t, err)
	ev := out.Evaluations[0]
	assert.Equal(t, 10, ev.Scores.TechnicalAccuracy)
	assert.Equal(t, 5, ev.Scores.DepthOfKnowledge)
	assert.Equal(t, 5, ev.Scores.Examples)
}

func TestEvaluate_FencedJSONIsAccepted(t *testing.T) {
	t.Parallel()

	respond := func(prompt string) (string, error) {
		return "```json\n{\"technical_accuracy\": 7, \"depth_of_knowledge\": 7, \"practical_experience\": 7, \"communication_clarity\": 7, \"problem_solving_approach\": 7, \"examples_and_use_cases\": 7}\n```", nil
	}
	e := newTestEngine(respond, nil, DefaultConfig())

	out, err := e.Evaluate(context.Background(), evalState())
	require.NoError(t, err)
	assert.InDelta(t, 70.0, out.Evaluations[0].ScorePercent, 1e-9)
}

func TestEvaluate_FallbackOnModelFailure(t *testing.T) {
	t.Parallel()

	e := newTestEngine(failingModel(), nil, DefaultConfig())
	out, err := e.Evaluate(context.Background(), evalState())
	require.NoError(t, err)
	require.Len(t, out.Evaluations, 1)

	ev := out.Evaluations[0]
	assert.InDelta(t, 29.5, ev.ScorePercent, 1e-9)
	assert.Equal(t, DetailedScores{3, 3, 2, 4, 3, 2}, ev.Scores)
	assert.Equal(t, []string{"Участвовал в интервью"}, ev.Analysis.Strengths)
}

func TestEvaluate_FallbackOnMalformedJSON(t *testing.T) {
	t.Parallel()

	respond := func(prompt string) (string, error) {
		return "Отличный ответ, примерно на семёрку.", nil
	}
	e := newTestEngine(respond, nil, DefaultConfig())

	out, err := e.Evaluate(context.Background(), evalState())
	require.NoError(t, err)
	assert.InDelta(t, 29.5, out.Evaluations[0].ScorePercent, 1e-9)
}
