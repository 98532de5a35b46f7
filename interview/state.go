// Package interview implements the adaptive interview engine: a planner that
// turns a resume and a job description into a topic plan, a selector that
// picks the next question, a conversation turn manager, an answer evaluator,
// an adaptive controller that decides whether to deepen, hint or skip, and a
// reporter that aggregates everything into a final recommendation. The stages
// are wired into a state graph and threaded through a single State value.
//
// Every model call has a deterministic fallback. A failed or malformed model
// response degrades the interview, it never aborts it.
package interview

import (
	"github.com/tmc/langchaingo/llms"
)

// Message roles in the interview transcript.
const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
)

// Controller decisions recorded in State.ControllerDecision.
const (
	DecisionContinueTopic    = "continue_topic"
	DecisionSkipTopic        = "skip_topic"
	DecisionContinueStandard = "continue_standard"
)

// Question types recorded by the conversation turn manager.
const (
	QuestionTypeNormal    = "normal"
	QuestionTypeGenerated = "generated"
	QuestionTypeDeepening = "deepening"
	QuestionTypeHint      = "hint"
	QuestionTypeHarder    = "harder"
	QuestionTypeSameLevel = "same_level"
)

// Topic is one planned interview subject with its own question quota.
type Topic struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	MaxQuestions int    `json:"max_questions"`
}

// Plan is the interview plan produced once by the planner.
type Plan struct {
	Topics            []Topic `json:"topics"`
	MaxTotalQuestions int     `json:"max_total_questions"`
	InterviewStyle    string  `json:"interview_style"`
}

// Question is a single question with a stable identifier used for
// de-duplication.
type Question struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Source     string `json:"source,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToMessageContent converts a transcript entry to a langchaingo message for
// model calls that want conversation context.
func (m Message) ToMessageContent() llms.MessageContent {
	role := llms.ChatMessageTypeHuman
	if m.Role == RoleInterviewer {
		role = llms.ChatMessageTypeAI
	}
	return llms.TextParts(role, m.Content)
}

// DetailedScores are the six sub-scores of one evaluation, each in [0,10].
type DetailedScores struct {
	TechnicalAccuracy    int `json:"technical_accuracy"`
	DepthOfKnowledge     int `json:"depth_of_knowledge"`
	PracticalExperience  int `json:"practical_experience"`
	CommunicationClarity int `json:"communication_clarity"`
	ProblemSolving       int `json:"problem_solving_approach"`
	Examples             int `json:"examples_and_use_cases"`
}

// Analysis carries the evaluator's free-text findings.
type Analysis struct {
	Inconsistencies     []string `json:"inconsistencies"`
	RedFlags            []string `json:"red_flags"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	FollowUpSuggestions []string `json:"follow_up_suggestions"`
}

// Evaluation is one scored answer. Immutable once appended to the state.
type Evaluation struct {
	Topic        string         `json:"topic"`
	ScorePercent float64        `json:"score_percent"`
	Scores       DetailedScores `json:"detailed_scores"`
	Analysis     Analysis       `json:"analysis"`
	Question     string         `json:"question"`
	Answer       string         `json:"answer"`
}

// State is the single record threaded through every stage of the interview.
// Stages receive it by value and return the updated copy, so a stage failure
// can never leave it half-written.
type State struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
	Role           string `json:"role"`

	Plan *Plan `json:"interview_plan,omitempty"`

	CurrentTopic    string    `json:"current_topic,omitempty"`
	CurrentQuestion *Question `json:"current_question,omitempty"`
	LastAnswer      string    `json:"last_candidate_answer,omitempty"`

	Messages []Message `json:"messages"`

	Evaluations []Evaluation `json:"answer_evaluations"`

	QuestionsAsked   int `json:"questions_asked_count"`
	QuestionsInTopic int `json:"questions_in_current_topic"`
	DeepeningCount   int `json:"deepening_questions_count"`
	HintsGiven       int `json:"hints_given_count"`
	TopicIndex       int `json:"current_topic_index"`

	AskedQuestionIDs map[string]bool `json:"asked_question_ids"`

	Recommendation string `json:"final_recommendation,omitempty"`
	Report         string `json:"report,omitempty"`

	// Transient signaling between controller, router and the next turn.
	GeneratedQuestion  *Question `json:"generated_question,omitempty"`
	ControllerDecision string    `json:"controller_decision,omitempty"`
	SkipTopic          bool      `json:"skip_topic,omitempty"`
	QuestionType       string    `json:"question_type,omitempty"`
	LastQuestionType   string    `json:"last_question_type,omitempty"`
}

// NewState creates the initial state for one interview session.
func NewState(resume, jobDescription, role string) State {
	return State{
		Resume:           resume,
		JobDescription:   jobDescription,
		Role:             role,
		Messages:         []Message{},
		Evaluations:      []Evaluation{},
		AskedQuestionIDs: map[string]bool{},
	}
}

// MarkAsked records a question ID in the asked set, copying the map so the
// previous state value stays untouched.
func (s State) MarkAsked(id string) State {
	asked := make(map[string]bool, len(s.AskedQuestionIDs)+1)
	for k := range s.AskedQuestionIDs {
		asked[k] = true
	}
	asked[id] = true
	s.AskedQuestionIDs = asked
	return s
}

// AppendMessages appends transcript entries without sharing the backing
// array with the previous state value.
func (s State) AppendMessages(msgs ...Message) State {
	out := make([]Message, 0, len(s.Messages)+len(msgs))
	out = append(out, s.Messages...)
	out = append(out, msgs...)
	s.Messages = out
	return s
}

// AppendEvaluation appends an evaluation record the same way.
func (s State) AppendEvaluation(ev Evaluation) State {
	out := make([]Evaluation, 0, len(s.Evaluations)+1)
	out = append(out, s.Evaluations...)
	out = append(out, ev)
	s.Evaluations = out
	return s
}

// LastEvaluation returns the most recent evaluation, or nil.
func (s State) LastEvaluation() *Evaluation {
	if len(s.Evaluations) == 0 {
		return nil
	}
	return &s.Evaluations[len(s.Evaluations)-1]
}

// TopicScores returns the scores of all evaluations for the current topic,
// oldest first.
func (s State) TopicScores() []float64 {
	var scores []float64
	for _, ev := range s.Evaluations {
		if ev.Topic == s.CurrentTopic {
			scores = append(scores, ev.ScorePercent)
		}
	}
	return scores
}

// CurrentTopicSpec returns the topic the cursor points at, or nil when all
// topics are exhausted.
func (s State) CurrentTopicSpec() *Topic {
	if s.Plan == nil || s.TopicIndex < 0 || s.TopicIndex >= len(s.Plan.Topics) {
		return nil
	}
	return &s.Plan.Topics[s.TopicIndex]
}

// clearTransients drops the signaling fields after a conversation turn.
func (s State) clearTransients() State {
	s.GeneratedQuestion = nil
	s.ControllerDecision = ""
	s.SkipTopic = false
	s.QuestionType = ""
	return s
}
