package interview

import (
	"context"
)

// Evaluation weights. The six sub-scores are 0-10; the weighted sum times 10
// yields a 0-100 percentage.
const (
	weightTechnicalAccuracy    = 0.25
	weightDepthOfKnowledge     = 0.20
	weightPracticalExperience  = 0.20
	weightCommunicationClarity = 0.15
	weightProblemSolving       = 0.10
	weightExamples             = 0.10
)

// scorePercent computes the weighted percentage of one set of sub-scores.
func scorePercent(s DetailedScores) float64 {
	return float64(s.TechnicalAccuracy)*10*weightTechnicalAccuracy +
		float64(s.DepthOfKnowledge)*10*weightDepthOfKnowledge +
		float64(s.PracticalExperience)*10*weightPracticalExperience +
		float64(s.CommunicationClarity)*10*weightCommunicationClarity +
		float64(s.ProblemSolving)*10*weightProblemSolving +
		float64(s.Examples)*10*weightExamples
}

// rawEvaluation mirrors the JSON the evaluator prompt demands. Sub-scores
// are pointers so a missing key can default to 5 instead of 0.
type rawEvaluation struct {
	TechnicalAccuracy    *int     `json:"technical_accuracy"`
	DepthOfKnowledge     *int     `json:"depth_of_knowledge"`
	PracticalExperience  *int     `json:"practical_experience"`
	CommunicationClarity *int     `json:"communication_clarity"`
	ProblemSolving       *int     `json:"problem_solving_approach"`
	Examples             *int     `json:"examples_and_use_cases"`
	Inconsistencies      []string `json:"inconsistencies"`
	RedFlags             []string `json:"red_flags"`
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
	FollowUpSuggestions  []string `json:"follow_up_suggestions"`
}

func scoreOrDefault(v *int) int {
	if v == nil {
		return 5
	}
	return clampScore(*v)
}

// Evaluate scores the last answer with one model call and appends the
// evaluation record. A model or parse failure appends the fixed
// low-confidence fallback evaluation instead; the turn always produces
// exactly one record.
func (e *Engine) Evaluate(ctx context.Context, state State) (State, error) {
	e.logger.Debug("agent: evaluator")

	question := ""
	if state.CurrentQuestion != nil {
		question = state.CurrentQuestion.Content
	}
	answer := state.LastAnswer

	raw, err := e.scoreAnswer(ctx, state, question, answer)
	if err != nil {
		e.logger.Warn("evaluator: falling back to fixed evaluation: %v", err)
		return state.AppendEvaluation(fallbackEvaluation(state.CurrentTopic, question, answer)), nil
	}

	scores := DetailedScores{
		TechnicalAccuracy:    scoreOrDefault(raw.TechnicalAccuracy),
		DepthOfKnowledge:     scoreOrDefault(raw.DepthOfKnowledge),
		PracticalExperience:  scoreOrDefault(raw.PracticalExperience),
		CommunicationClarity: scoreOrDefault(raw.CommunicationClarity),
		ProblemSolving:       scoreOrDefault(raw.ProblemSolving),
		Examples:             scoreOrDefault(raw.Examples),
	}

	ev := Evaluation{
		Topic:        state.CurrentTopic,
		ScorePercent: scorePercent(scores),
		Scores:       scores,
		Analysis: Analysis{
			Inconsistencies:     raw.Inconsistencies,
			RedFlags:            raw.RedFlags,
			Strengths:           raw.Strengths,
			Weaknesses:          raw.Weaknesses,
			FollowUpSuggestions: raw.FollowUpSuggestions,
		},
		Question: question,
		Answer:   answer,
	}

	e.logger.Info("evaluator: topic %q scored %.1f%%", ev.Topic, ev.ScorePercent)
	return state.AppendEvaluation(ev), nil
}

func (e *Engine) scoreAnswer(ctx context.Context, state State, question, answer string) (*rawEvaluation, error) {
	prompt, err := formatPrompt(evaluatorPrompt, map[string]any{
		"alignment": e.cfg.Alignment,
		"role":      state.Role,
		"topic":     state.CurrentTopic,
		"question":  question,
		"answer":    answer,
	})
	if err != nil {
		return nil, err
	}

	text, err := e.inv.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw rawEvaluation
	if err := parseLLMJSON(text, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// fallbackEvaluation is the deterministic low-confidence record used when
// the model cannot score an answer. Scores {3,3,2,4,3,2} work out to 29.5%.
func fallbackEvaluation(topic, question, answer string) Evaluation {
	scores := DetailedScores{
		TechnicalAccuracy:    3,
		DepthOfKnowledge:     3,
		PracticalExperience:  2,
		CommunicationClarity: 4,
		ProblemSolving:       3,
		Examples:             2,
	}
	return Evaluation{
		Topic:        topic,
		ScorePercent: scorePercent(scores),
		Scores:       scores,
		Analysis: Analysis{
			Inconsistencies:     []string{},
			RedFlags:            []string{},
			Strengths:           []string{"Участвовал в интервью"},
			Weaknesses:          []string{"Требуется дополнительная оценка"},
			FollowUpSuggestions: []string{},
		},
		Question: question,
		Answer:   answer,
	}
}
