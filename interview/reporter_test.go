package interview

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluatedState(scores ...float64) State {
	state := planned([]Topic{{Name: "Python"}}, 0)
	for _, s := range scores {
		state = state.AppendEvaluation(Evaluation{
			Topic:        "Python",
			ScorePercent: s,
			Scores:       DetailedScores{7, 6, 6, 8, 5, 5},
			Analysis: Analysis{
				Strengths:  []string{"хорошая коммуникация"},
				Weaknesses: []string{"мало примеров"},
			},
		})
	}
	return state
}

func TestReport_NoEvaluations(t *testing.T) {
	t.Parallel()

	e := newTestEngine(failingModel(), nil, DefaultConfig())
	out, err := e.Report(context.Background(), planned([]Topic{{Name: "Python"}}, 0))
	require.NoError(t, err)
	assert.Contains(t, out.Report, "нет оценок")
	assert.Empty(t, out.Recommendation)
}

func TestReport_RecommendationExtraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		response string
		want     string
	}{
		{"Кандидат уверенно отвечал. РЕШЕНИЕ: HIRE", RecommendationHire},
		{"Слабые ответы. РЕШЕНИЕ: REJECT", RecommendationReject},
		{"Смешанное впечатление, требуется второе интервью.", RecommendationMaybe},
		// When the model mentions both, the reject wins.
		{"Не HIRE: слишком много пробелов. РЕШЕНИЕ: REJECT", RecommendationReject},
	}

	for _, tc := range cases {
		e := newTestEngine(func(string) (string, error) { return tc.response, nil }, nil, DefaultConfig())
		out, err := e.Report(context.Background(), evaluatedState(75))
		require.NoError(t, err)
		assert.Equal(t, tc.want, out.Recommendation, tc.response)
		assert.Equal(t, tc.response, out.Report)
	}
}

func TestReport_DeterministicFallbackThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		scores []float64
		want   string
	}{
		{[]float64{85, 90}, RecommendationHire},
		{[]float64{70, 65}, RecommendationMaybe},
		{[]float64{30, 40}, RecommendationReject},
	}

	for _, tc := range cases {
		e := newTestEngine(failingModel(), nil, DefaultConfig())
		out, err := e.Report(context.Background(), evaluatedState(tc.scores...))
		require.NoError(t, err)
		assert.Equal(t, tc.want, out.Recommendation)
		assert.Contains(t, out.Report, "ОТЧЕТ ПО ИНТЕРВЬЮ")
		assert.Contains(t, out.Report, "РЕШЕНИЕ: "+tc.want)
		assert.Contains(t, out.Report, "• Тема: Python")
	}
}

func TestBuildTopicsSummary(t *testing.T) {
	t.Parallel()

	summary := buildTopicsSummary([]Evaluation{{
		Topic:        "SQL",
		ScorePercent: 62.5,
		Scores:       DetailedScores{7, 6, 5, 8, 5, 5},
	}})

	assert.Contains(t, summary, "• Тема: SQL")
	assert.Contains(t, summary, "Итоговая оценка: 62.5%")
	assert.Contains(t, summary, "Техническая точность: 7/10")
	assert.Contains(t, summary, "Коммуникация: 8/10")
}

func TestDedupAndTopN(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "a", "c", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, dedup(items))
	assert.Equal(t, []string{"a", "b"}, topN(dedup(items), 2))
	assert.Equal(t, []string{"a", "b", "c"}, topN(dedup(items), 10))
}

func TestRenderReportHTML_Sanitizes(t *testing.T) {
	t.Parallel()

	html := RenderReportHTML("# Отчет\n\nСильные стороны: **SQL**\n\n<script>alert(1)</script>")
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>SQL</strong>")
	assert.False(t, strings.Contains(html, "<script>"))
}
