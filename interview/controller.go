package interview

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Action is a controller decision outcome.
type Action string

const (
	ActionContinue           Action = "continue"
	ActionSkipTopic          Action = "skip_topic"
	ActionDeepenTopic        Action = "deepen_topic"
	ActionSameLevel          Action = "same_level_question"
	ActionProvideHint        Action = "provide_hint"
	ActionIncreaseDifficulty Action = "increase_difficulty"
)

// Difficulty labels injected into the generation prompt.
const (
	difficultyHarder    = "продвинутый и повышенной сложности"
	difficultyDeepening = "детализированный и углубляющийся в нюансы"
	difficultySameLevel = "сопоставимой сложности"
)

// questionStyles rotate with the question counter to discourage repetitive
// phrasing.
var questionStyles = []string{
	"теоретический",
	"практический",
	"сравнительный",
	"примерный",
	"проблемный",
}

// generatedFallbackPool replaces generated questions that came back empty,
// too short or identical to the previous one.
var generatedFallbackPool = []string{
	"Расскажите о задаче, которой вы особенно гордитесь: цель, ваш вклад, результат.",
	"Как вы обычно подходите к решению нетривиальных задач? Опишите шаги.",
	"Приведите пример случая, когда вы улучшили качество или эффективность процесса.",
	"Какие инструменты и практики помогают вам поддерживать качество работы?",
	"Опишите ситуацию, когда возникла сложность: что сделали, к какому выводу пришли?",
}

// Decision is the controller's verdict for one turn. ResetDeepening and
// ResetHints mark counter resets that Apply must carry into the state.
type Decision struct {
	Action         Action
	Reason         string
	ResetDeepening bool
	ResetHints     bool
}

// policyInput is everything the decision rules read, precomputed once so
// the rules stay side-effect free.
type policyInput struct {
	scores        []float64
	lastScore     float64
	lastEval      *Evaluation
	poorStreak    int
	goodStreak    int
	mediumStreak  int
	inTopic       int
	topicMax      int
	deepening     int
	hints         int
	hasEvaluation bool
}

// policyRule is one row of the ordered decision table. The first rule that
// returns a non-nil decision wins.
type policyRule struct {
	name  string
	check func(in policyInput, cfg Config) *Decision
}

// policyRules is the controller's decision table, evaluated top to bottom.
var policyRules = []policyRule{
	{"first question of topic", func(in policyInput, cfg Config) *Decision {
		if !in.hasEvaluation {
			return &Decision{Action: ActionContinue, Reason: "Первый вопрос по теме"}
		}
		return nil
	}},
	{"topic quota reached", func(in policyInput, cfg Config) *Decision {
		if in.inTopic >= in.topicMax {
			return &Decision{
				Action: ActionSkipTopic,
				Reason: fmt.Sprintf("Достигнут лимит вопросов в теме (%d/%d)", in.inTopic, in.topicMax),
			}
		}
		return nil
	}},
	{"deepening cap reached", func(in policyInput, cfg Config) *Decision {
		if in.deepening >= cfg.MaxDeepeningQuestions {
			return &Decision{
				Action:         ActionSameLevel,
				Reason:         fmt.Sprintf("Достигнут лимит уточняющих вопросов (%d/%d)", in.deepening, cfg.MaxDeepeningQuestions),
				ResetDeepening: true,
			}
		}
		return nil
	}},
	{"hint cap reached", func(in policyInput, cfg Config) *Decision {
		if in.hints >= cfg.MaxHints {
			return &Decision{
				Action:     ActionSameLevel,
				Reason:     fmt.Sprintf("Достигнут лимит подсказок (%d/%d)", in.hints, cfg.MaxHints),
				ResetHints: true,
			}
		}
		return nil
	}},
	{"unknown response", func(in policyInput, cfg Config) *Decision {
		if in.lastEval != nil && isUnknownResponse(*in.lastEval, cfg.UnknownMarkers) && in.hints < cfg.MaxHints {
			return &Decision{
				Action: ActionProvideHint,
				Reason: "Зафиксировано отсутствие ответа или неуверенность кандидата",
			}
		}
		return nil
	}},
	{"inconsistencies or red flags", func(in policyInput, cfg Config) *Decision {
		if in.lastEval != nil &&
			(len(in.lastEval.Analysis.Inconsistencies) > 0 || len(in.lastEval.Analysis.RedFlags) > 0) {
			return &Decision{
				Action: ActionDeepenTopic,
				Reason: "Найдены несостыковки или красные флаги в ответе",
			}
		}
		return nil
	}},
	{"streaks", func(in policyInput, cfg Config) *Decision {
		switch {
		case in.poorStreak >= cfg.MaxPoorAnswers:
			return &Decision{Action: ActionSkipTopic, Reason: fmt.Sprintf("%d плохих ответов подряд", in.poorStreak)}
		case in.goodStreak >= cfg.MaxGoodAnswers:
			return &Decision{Action: ActionSkipTopic, Reason: fmt.Sprintf("%d хороших ответов подряд", in.goodStreak)}
		case in.mediumStreak >= cfg.MaxMediumAnswers:
			return &Decision{Action: ActionSkipTopic, Reason: fmt.Sprintf("%d средних ответов подряд", in.mediumStreak)}
		}
		return nil
	}},
	{"last score branch", func(in policyInput, cfg Config) *Decision {
		switch {
		case in.lastScore >= scoreDeepenFrom:
			return &Decision{Action: ActionDeepenTopic, Reason: fmt.Sprintf("Хороший результат (%.0f%%) - продолжаем тему", in.lastScore)}
		case in.lastScore >= scorePoorBelow:
			return &Decision{Action: ActionSameLevel, Reason: fmt.Sprintf("Средний результат (%.0f%%) - вопрос того же уровня", in.lastScore)}
		default:
			return &Decision{Action: ActionProvideHint, Reason: fmt.Sprintf("Слабый результат (%.0f%%) - даем подсказку", in.lastScore)}
		}
	}},
}

// Decide runs the decision table over the current topic's evaluation
// history. It is pure: no model calls, no state mutation.
func (e *Engine) Decide(state State) Decision {
	in := policyInput{
		scores:    state.TopicScores(),
		lastEval:  state.LastEvaluation(),
		inTopic:   state.QuestionsInTopic,
		topicMax:  e.cfg.MaxQuestionsPerTopic,
		deepening: state.DeepeningCount,
		hints:     state.HintsGiven,
	}
	if topic := state.CurrentTopicSpec(); topic != nil && topic.MaxQuestions > 0 {
		in.topicMax = topic.MaxQuestions
	}
	if len(in.scores) > 0 {
		in.hasEvaluation = true
		in.lastScore = in.scores[len(in.scores)-1]
		in.poorStreak = streak(in.scores, func(s float64) bool { return s < scorePoorBelow })
		in.goodStreak = streak(in.scores, func(s float64) bool { return s >= scoreGoodFrom })
		in.mediumStreak = streak(in.scores, func(s float64) bool { return s >= scorePoorBelow && s < scoreGoodFrom })
	}

	for _, rule := range policyRules {
		if d := rule.check(in, e.cfg); d != nil {
			e.logger.Debug("controller: rule %q fired: %s - %s", rule.name, d.Action, d.Reason)
			return *d
		}
	}

	// The last-score branch always decides, so this is unreachable.
	return Decision{Action: ActionContinue, Reason: "Нет применимого правила"}
}

// streak counts consecutive scores matching the predicate from the most
// recent backward.
func streak(scores []float64, match func(float64) bool) int {
	n := 0
	for i := len(scores) - 1; i >= 0; i-- {
		if !match(scores[i]) {
			break
		}
		n++
	}
	return n
}

// isUnknownResponse classifies an evaluation as a "does not know" answer:
// a marker phrase in the red flags or weaknesses, or at least four of the
// six sub-scores at 2 or below, or a total under 10 percent.
func isUnknownResponse(ev Evaluation, markers []string) bool {
	for _, text := range append(append([]string{}, ev.Analysis.RedFlags...), ev.Analysis.Weaknesses...) {
		lower := strings.ToLower(text)
		for _, marker := range markers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}

	low := 0
	for _, s := range []int{
		ev.Scores.TechnicalAccuracy,
		ev.Scores.DepthOfKnowledge,
		ev.Scores.PracticalExperience,
		ev.Scores.CommunicationClarity,
		ev.Scores.ProblemSolving,
		ev.Scores.Examples,
	} {
		if s <= 2 {
			low++
		}
	}
	if low >= 4 {
		return true
	}

	return ev.ScorePercent < 10
}

// Apply executes a decision against the state: advancing the topic, or
// generating the follow-up question the decision calls for.
func (e *Engine) Apply(ctx context.Context, state State, d Decision) State {
	e.logger.Debug("controller: %s - %s", d.Action, d.Reason)

	if d.ResetDeepening {
		state.DeepeningCount = 0
	}
	if d.ResetHints {
		state.HintsGiven = 0
	}

	switch d.Action {
	case ActionSkipTopic:
		return controllerSkipTopic(state)
	case ActionDeepenTopic:
		return e.continueWithGenerated(ctx, state, difficultyDeepening, QuestionTypeDeepening)
	case ActionSameLevel:
		return e.continueWithGenerated(ctx, state, difficultySameLevel, QuestionTypeSameLevel)
	case ActionIncreaseDifficulty:
		return e.continueWithGenerated(ctx, state, difficultyHarder, QuestionTypeHarder)
	case ActionProvideHint:
		return e.continueWithHint(ctx, state)
	default:
		state.ControllerDecision = DecisionContinueStandard
		return state
	}
}

// Control is the graph node: decide, then apply.
func (e *Engine) Control(ctx context.Context, state State) (State, error) {
	e.logger.Debug("agent: adaptive controller")
	return e.Apply(ctx, state, e.Decide(state)), nil
}

func controllerSkipTopic(state State) State {
	state.ControllerDecision = DecisionSkipTopic
	state.TopicIndex++
	state.QuestionsInTopic = 0
	state.DeepeningCount = 0
	state.HintsGiven = 0
	state.QuestionType = ""
	return state
}

func (e *Engine) continueWithGenerated(ctx context.Context, state State, difficulty, questionType string) State {
	question := e.generateQuestion(ctx, state, difficulty)
	state.ControllerDecision = DecisionContinueTopic
	state.GeneratedQuestion = &question
	state.QuestionType = questionType
	return state
}

func (e *Engine) continueWithHint(ctx context.Context, state State) State {
	var weaknesses []string
	if ev := state.LastEvaluation(); ev != nil {
		weaknesses = ev.Analysis.Weaknesses
	}

	question := e.generateGuidedQuestion(ctx, state, weaknesses)
	state.ControllerDecision = DecisionContinueTopic
	state.GeneratedQuestion = &question
	state.QuestionType = QuestionTypeHint
	return state
}

// generateQuestion asks the model for a follow-up of the given difficulty,
// rotating the question style with the global counter. Unusable output is
// replaced from the fixed fallback pool.
func (e *Engine) generateQuestion(ctx context.Context, state State, difficulty string) Question {
	topic := state.CurrentTopic
	style := questionStyles[state.QuestionsAsked%len(questionStyles)]

	prevQuestion := ""
	if state.CurrentQuestion != nil {
		prevQuestion = state.CurrentQuestion.Content
	}

	text := ""
	prompt, err := formatPrompt(generatedQuestionPrompt, map[string]any{
		"alignment":        e.cfg.Alignment,
		"difficulty":       difficulty,
		"question_type":    style,
		"topic":            topic,
		"current_question": prevQuestion,
		"last_answer":      truncate(state.LastAnswer, 200),
		"question_number":  state.QuestionsAsked,
	})
	if err == nil {
		text, err = e.inv.Invoke(ctx, prompt)
	}
	if err != nil {
		e.logger.Warn("controller: question generation failed: %v", err)
	}

	text = sanitizeQuestion(text, topic)
	if utf8.RuneCountInString(text) < 10 || text == prevQuestion {
		text = generatedFallbackPool[state.QuestionsAsked%len(generatedFallbackPool)]
	}

	e.logger.Debug("controller: generated %s question: %q", difficulty, truncate(text, 60))
	return Question{
		ID:         fmt.Sprintf("llm_%s_%d", difficulty, state.QuestionsAsked),
		Content:    text,
		Source:     SourceLLM,
		Difficulty: difficulty,
	}
}

// generateGuidedQuestion rephrases the previous question to nudge the
// candidate toward an unaddressed weakness without naming it.
func (e *Engine) generateGuidedQuestion(ctx context.Context, state State, weaknesses []string) Question {
	topic := state.CurrentTopic
	prevQuestion := ""
	if state.CurrentQuestion != nil {
		prevQuestion = state.CurrentQuestion.Content
	}

	improvementHint := "ключевой аспект, который вы не раскрыли достаточно конкретно"
	if len(weaknesses) > 0 {
		hint := weaknesses
		if len(hint) > 2 {
			hint = hint[:2]
		}
		improvementHint = strings.Join(hint, ", ")
	}

	text := ""
	prompt, err := formatPrompt(guidedQuestionPrompt, map[string]any{
		"alignment":        e.cfg.Alignment,
		"topic":            topic,
		"prev_question":    prevQuestion,
		"last_answer":      truncate(state.LastAnswer, 300),
		"improvement_hint": improvementHint,
		"question_number":  state.QuestionsAsked,
	})
	if err == nil {
		text, err = e.inv.Invoke(ctx, prompt)
	}
	if err != nil {
		e.logger.Warn("controller: guided question generation failed: %v", err)
	}

	text = sanitizeQuestion(text, topic)
	if utf8.RuneCountInString(text) < 10 {
		base := "конкретные шаги/метрики вашего подхода"
		if len(weaknesses) > 0 {
			base = weaknesses[0]
		}
		text = fmt.Sprintf("Уточните, пожалуйста, %s: как именно вы это делаете на практике?", base)
	}

	e.logger.Debug("controller: guided question: %q", truncate(text, 100))
	return Question{
		ID:         fmt.Sprintf("llm_guided_%d", state.QuestionsAsked),
		Content:    text,
		Source:     SourceLLM,
		Difficulty: "guided",
	}
}
