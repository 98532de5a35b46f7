package interview

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// TopicResumeDiscussion is the distinguished topic handled by the
// resume-question path instead of retrieval.
const TopicResumeDiscussion = "Resume Discussion"

// Question sources recorded on selected questions.
const (
	SourceSelector = "selector"
	SourceLLM      = "llm"
)

// neutralQuestionPool is the selector's last resort: role-agnostic questions
// that keep the interview moving when retrieval and generation both fail.
var neutralQuestionPool = []string{
	"Расскажите о последней задаче: контекст, цель, что сделали, какой результат?",
	"Как вы проверяете корректность и качество своей работы?",
	"Опишите ваш типичный подход к разбору требований перед началом задачи.",
	"Приведите пример, когда вы улучшили процесс или сократили время выполнения работы.",
	"Как вы выбираете инструменты и подходы для решения задачи и оцениваете их эффективность?",
}

// designRoles are role names that get the portfolio-flavored canned resume
// question when generation fails.
var designRoles = map[string]bool{
	"ux/ui designer": true,
	"ux designer":    true,
	"ui/ux designer": true,
	"дизайнер":       true,
	"ux":             true,
	"ui":             true,
}

// InterviewComplete reports whether the selector has nothing left to ask:
// the global question budget is spent or the topic cursor ran off the plan.
func (s State) InterviewComplete() bool {
	if s.Plan == nil {
		return false
	}
	return s.QuestionsAsked >= s.Plan.MaxTotalQuestions || s.TopicIndex >= len(s.Plan.Topics)
}

// Select picks the next question for the current topic. It either produces a
// question, or advances to the next topic (SkipTopic set) when the topic
// quota is spent, or leaves the state untouched when the interview is
// complete. It never returns an error for missing knowledge; every failure
// path lands on the neutral question pool.
func (e *Engine) Select(ctx context.Context, state State) (State, error) {
	e.logger.Debug("agent: selector")

	if state.Plan == nil || state.InterviewComplete() {
		e.logger.Info("selector: interview complete (%d questions, topic %d)",
			state.QuestionsAsked, state.TopicIndex)
		return state, nil
	}

	topic := state.Plan.Topics[state.TopicIndex]
	if state.QuestionsInTopic >= topic.MaxQuestions {
		e.logger.Info("selector: topic %q quota reached (%d/%d)",
			topic.Name, state.QuestionsInTopic, topic.MaxQuestions)
		return advanceTopic(state), nil
	}

	if topic.Name == TopicResumeDiscussion {
		return e.selectResumeQuestion(ctx, state, topic), nil
	}
	return e.selectFromKnowledge(ctx, state, topic), nil
}

// advanceTopic moves the cursor to the next topic and resets every
// topic-scoped counter.
func advanceTopic(state State) State {
	state.SkipTopic = true
	state.TopicIndex++
	state.QuestionsInTopic = 0
	state.DeepeningCount = 0
	state.HintsGiven = 0
	return state
}

// selectResumeQuestion generates one open-ended question about the resume.
// On failure it substitutes a role-aware canned question.
func (e *Engine) selectResumeQuestion(ctx context.Context, state State, topic Topic) State {
	content, err := e.generateResumeQuestion(ctx, state)
	if err != nil {
		e.logger.Warn("selector: resume question generation failed: %v", err)
		content = cannedResumeQuestion(state.Role)
		id := fmt.Sprintf("resume_q_%d", state.QuestionsInTopic)
		return setSelectedQuestion(state, topic.Name, id, content)
	}

	baseID := fmt.Sprintf("resume_q_%d", state.QuestionsInTopic)
	id := baseID
	for suffix := 1; state.AskedQuestionIDs[id]; suffix++ {
		id = fmt.Sprintf("%s_%d", baseID, suffix)
	}

	e.logger.Info("selector: resume question: %q", truncate(content, 80))
	return setSelectedQuestion(state, topic.Name, id, content)
}

func (e *Engine) generateResumeQuestion(ctx context.Context, state State) (string, error) {
	prompt, err := formatPrompt(resumeQuestionPrompt, map[string]any{
		"alignment":       e.cfg.Alignment,
		"role":            state.Role,
		"resume":          truncate(state.Resume, 600),
		"job_description": truncate(state.JobDescription, 600),
		"q_index":         state.QuestionsInTopic + 1,
	})
	if err != nil {
		return "", err
	}
	return e.inv.Invoke(ctx, prompt)
}

func cannedResumeQuestion(role string) string {
	if designRoles[strings.ToLower(strings.TrimSpace(role))] {
		return "Кратко опишите один проект из портфолио: цель, процесс, ваша роль и результат."
	}
	return "Расскажите о самом важном проекте из резюме и вашей роли в нём."
}

// ragCandidate is a retrieval hit normalized to an ID and question text.
type ragCandidate struct {
	id      string
	content string
}

// selectFromKnowledge queries the question bank for the topic, filters out
// already-asked questions (unless that would starve the selection), picks
// one at random, and falls back to the neutral pool when nothing usable
// comes back.
func (e *Engine) selectFromKnowledge(ctx context.Context, state State, topic Topic) State {
	results, err := e.knowledge.QuestionsForTopic(ctx, topic.Name, 5)
	if err != nil {
		e.logger.Warn("selector: retrieval failed (%v), using fallback pool", err)
		return e.fallbackQuestion(state, topic)
	}
	e.logger.Debug("selector: %d candidate questions for %q", len(results), topic.Name)

	var candidates []ragCandidate
	for _, res := range results {
		question, _ := res.Metadata["question"].(string)
		if question != "" {
			candidates = append(candidates, ragCandidate{id: question, content: question})
			continue
		}
		content := res.Content
		if _, after, found := strings.Cut(content, "Вопрос:"); found {
			content, _, _ = strings.Cut(after, "\n")
		}
		content = strings.TrimSpace(content)
		if content != "" {
			candidates = append(candidates, ragCandidate{
				id:      fmt.Sprintf("rag_q_%d", state.TopicIndex),
				content: content,
			})
		}
	}

	if len(candidates) == 0 {
		return e.fallbackQuestion(state, topic)
	}

	fresh := make([]ragCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !state.AskedQuestionIDs[c.id] {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		e.logger.Warn("selector: all candidates already asked, allowing repeats")
		fresh = candidates
	}

	chosen := fresh[e.intn(len(fresh))]
	if utf8.RuneCountInString(strings.TrimSpace(chosen.content)) <= 15 {
		e.logger.Warn("selector: candidate too short, using fallback pool")
		return e.fallbackQuestion(state, topic)
	}

	e.logger.Info("selector: question selected: %q", truncate(chosen.content, 60))
	return setSelectedQuestion(state, topic.Name, chosen.id, chosen.content)
}

// fallbackQuestion returns the first neutral pool question not asked yet, or
// the last pool entry when the pool is exhausted. The interview never stalls
// for lack of a question.
func (e *Engine) fallbackQuestion(state State, topic Topic) State {
	content := neutralQuestionPool[len(neutralQuestionPool)-1]
	for _, q := range neutralQuestionPool {
		if !state.AskedQuestionIDs[q] {
			content = q
			break
		}
	}

	id := fmt.Sprintf("fallback_%d", state.TopicIndex)
	state = state.MarkAsked(content)
	state.SkipTopic = false
	state.CurrentTopic = topic.Name
	state.CurrentQuestion = &Question{ID: id, Content: content, Source: SourceSelector}
	return state
}

func setSelectedQuestion(state State, topicName, id, content string) State {
	state = state.MarkAsked(id)
	state.SkipTopic = false
	state.CurrentTopic = topicName
	state.CurrentQuestion = &Question{ID: id, Content: content, Source: SourceSelector}
	return state
}
