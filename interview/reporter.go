package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Final recommendations.
const (
	RecommendationHire   = "HIRE"
	RecommendationMaybe  = "MAYBE"
	RecommendationReject = "REJECT"
)

// Report aggregates all evaluations into the final narrative and
// recommendation. On model failure it synthesizes a deterministic report
// from the average score.
func (e *Engine) Report(ctx context.Context, state State) (State, error) {
	e.logger.Debug("agent: reporter")

	if len(state.Evaluations) == 0 {
		state.Report = "Отчет не может быть создан: нет оценок."
		return state, nil
	}

	summary := buildTopicsSummary(state.Evaluations)
	avg := averageScore(state.Evaluations)

	var inconsistencies, redFlags, strengths, weaknesses []string
	for _, ev := range state.Evaluations {
		inconsistencies = append(inconsistencies, ev.Analysis.Inconsistencies...)
		redFlags = append(redFlags, ev.Analysis.RedFlags...)
		strengths = append(strengths, ev.Analysis.Strengths...)
		weaknesses = append(weaknesses, ev.Analysis.Weaknesses...)
	}

	text, err := e.generateReport(ctx, state, summary, avg,
		topN(inconsistencies, 10), topN(redFlags, 10),
		topN(dedup(strengths), 10), topN(dedup(weaknesses), 10))
	if err != nil {
		e.logger.Warn("reporter: model failed, using deterministic report: %v", err)
		state.Recommendation = thresholdRecommendation(avg)
		state.Report = strings.Join([]string{
			"ОТЧЕТ ПО ИНТЕРВЬЮ",
			fmt.Sprintf("ОБЩАЯ ОЦЕНКА: %.1f%%", avg),
			fmt.Sprintf("РЕШЕНИЕ: %s", state.Recommendation),
			"",
			summary,
		}, "\n")
		return state, nil
	}

	recommendation := RecommendationMaybe
	if strings.Contains(text, RecommendationHire) {
		recommendation = RecommendationHire
	}
	if strings.Contains(text, RecommendationReject) {
		recommendation = RecommendationReject
	}

	state.Report = text
	state.Recommendation = recommendation
	e.logger.Info("reporter: recommendation %s (avg %.1f%%)", recommendation, avg)
	return state, nil
}

func (e *Engine) generateReport(ctx context.Context, state State, summary string, avg float64,
	inconsistencies, redFlags, strengths, weaknesses []string) (string, error) {

	prompt, err := formatPrompt(reportPrompt, map[string]any{
		"resume":          truncate(state.Resume, 500),
		"job_description": truncate(state.JobDescription, 300),
		"topics_summary":  summary,
		"avg_score":       fmt.Sprintf("%.1f", avg),
		"inconsistencies": joinOrNone(inconsistencies),
		"red_flags":       joinOrNone(redFlags),
		"strengths":       joinOrNone(strengths),
		"weaknesses":      joinOrNone(weaknesses),
	})
	if err != nil {
		return "", err
	}
	return e.inv.Invoke(ctx, prompt)
}

// buildTopicsSummary renders the per-topic score table that goes both into
// the report prompt and into the deterministic fallback report.
func buildTopicsSummary(evaluations []Evaluation) string {
	var parts []string
	for _, ev := range evaluations {
		parts = append(parts, strings.Join([]string{
			fmt.Sprintf("• Тема: %s", ev.Topic),
			fmt.Sprintf("  - Итоговая оценка: %.1f%%", ev.ScorePercent),
			fmt.Sprintf("  - Техническая точность: %d/10", ev.Scores.TechnicalAccuracy),
			fmt.Sprintf("  - Глубина знаний: %d/10", ev.Scores.DepthOfKnowledge),
			fmt.Sprintf("  - Практический опыт: %d/10", ev.Scores.PracticalExperience),
			fmt.Sprintf("  - Коммуникация: %d/10", ev.Scores.CommunicationClarity),
		}, "\n"))
	}
	return strings.Join(parts, "\n")
}

func averageScore(evaluations []Evaluation) float64 {
	if len(evaluations) == 0 {
		return 0
	}
	sum := 0.0
	for _, ev := range evaluations {
		sum += ev.ScorePercent
	}
	return sum / float64(len(evaluations))
}

// thresholdRecommendation is the deterministic verdict used when the model
// cannot write the report.
func thresholdRecommendation(avg float64) string {
	switch {
	case avg >= 80:
		return RecommendationHire
	case avg >= 65:
		return RecommendationMaybe
	default:
		return RecommendationReject
	}
}

// dedup keeps the first occurrence of each string, preserving order.
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func topN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "нет"
	}
	return strings.Join(items, "; ")
}

// RenderReportHTML renders a report to sanitized HTML for embedding in a
// web page. The report text is treated as Markdown.
func RenderReportHTML(report string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML([]byte(report), p, renderer)
	return string(bluemonday.UGCPolicy().SanitizeBytes(rendered))
}
