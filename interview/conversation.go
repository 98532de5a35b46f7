package interview

import (
	"context"
	"fmt"
	"strings"
)

// AnswerProvider supplies the candidate's answer to a question during an
// autonomous run. Blocking is fine; the caller owns the context.
type AnswerProvider func(ctx context.Context, question Question) (string, error)

// StageQuestion resolves which question the turn will ask: the controller's
// generated question wins over the selector's. When the controller did not
// label the generated question, its type is inferred from the text.
func (e *Engine) StageQuestion(state State) State {
	if gq := state.GeneratedQuestion; gq != nil && gq.Content != "" {
		e.logger.Debug("conversation: using controller-generated question")
		staged := *gq
		if staged.ID == "" {
			staged.ID = fmt.Sprintf("generated_%d", state.QuestionsAsked)
		}
		state.CurrentQuestion = &staged
		if state.QuestionType == "" {
			state.QuestionType = inferQuestionType(staged.Content)
		}
		return state
	}

	if state.CurrentQuestion == nil {
		state.CurrentQuestion = &Question{ID: "current_question", Content: "Вопрос не найден"}
	}
	return state
}

// inferQuestionType classifies an unlabeled generated question by its
// phrasing, so hint and deepening counters still advance when the label got
// lost.
func inferQuestionType(content string) string {
	text := strings.ToLower(content)
	switch {
	case strings.Contains(text, "важно обратить внимание"):
		return QuestionTypeHint
	case strings.Contains(text, "углубленный"), strings.Contains(text, "детализированный"):
		return QuestionTypeDeepening
	default:
		return QuestionTypeGenerated
	}
}

// RecordAnswer books one completed turn: it appends the question/answer pair
// to the transcript, advances the counters according to the question type
// and clears the transient signaling fields.
//
// QuestionsAsked and QuestionsInTopic advance by exactly one per turn. The
// deepening and hint counters advance only for their own question type.
func (e *Engine) RecordAnswer(state State, answer string) State {
	question := state.CurrentQuestion
	if question == nil {
		question = &Question{ID: "current_question", Content: "Вопрос не найден"}
		state.CurrentQuestion = question
	}

	state = state.MarkAsked(question.ID)
	state = state.AppendMessages(
		Message{Role: RoleInterviewer, Content: question.Content},
		Message{Role: RoleCandidate, Content: answer},
	)
	state.LastAnswer = answer
	state.QuestionsAsked++
	state.QuestionsInTopic++

	switch state.QuestionType {
	case QuestionTypeDeepening:
		state.DeepeningCount++
		state.LastQuestionType = QuestionTypeDeepening
	case QuestionTypeHint:
		state.HintsGiven++
		state.LastQuestionType = QuestionTypeHint
	default:
		state.LastQuestionType = QuestionTypeNormal
	}

	e.logger.Debug("conversation: turn recorded, asked=%d in_topic=%d type=%s",
		state.QuestionsAsked, state.QuestionsInTopic, state.LastQuestionType)

	return state.clearTransients()
}

// ConversationTurn is the autonomous-mode node: stage the question, obtain
// the answer from the provider, record the turn.
func (e *Engine) ConversationTurn(ctx context.Context, state State, provide AnswerProvider) (State, error) {
	state = e.StageQuestion(state)

	question := *state.CurrentQuestion
	e.logger.Info("question: %s", question.Content)

	answer, err := provide(ctx, question)
	if err != nil {
		return state, fmt.Errorf("obtaining candidate answer: %w", err)
	}

	return e.RecordAnswer(state, answer), nil
}
