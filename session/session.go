// Package session manages step-wise interview sessions: an external caller
// creates a session, receives one question at a time and submits answers,
// while the engine's planner, selector, evaluator and controller run in
// between. Sessions are persisted through a pluggable Store so a process
// restart or a multi-instance deployment does not lose running interviews.
package session

import (
	"context"
	"errors"
	"time"

	"interview-engine/interview"
	"interview-engine/kb"
)

// Session lifecycle statuses.
const (
	StatusWaitingForAnswer = "waiting_for_answer"
	StatusCompleted        = "completed"
)

// Client errors. Stores and the manager wrap them so callers can branch with
// errors.Is.
var (
	ErrNotFound          = errors.New("session not found")
	ErrNotAwaitingAnswer = errors.New("session is not awaiting an answer")
)

// Session is one persisted interview. The full engine state rides along, so
// any instance holding the record can continue the interview.
type Session struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	State     interview.State `json:"state"`
	Knowledge []kb.Entry      `json:"knowledge,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Progress is the caller-visible view of the interview counters.
type Progress struct {
	QuestionsAsked   int     `json:"questions_asked"`
	QuestionsInTopic int     `json:"questions_in_current_topic"`
	DeepeningCount   int     `json:"deepening_questions_count"`
	HintsCount       int     `json:"hints_given_count"`
	TopicIndex       int     `json:"current_topic_index"`
	TotalTopics      int     `json:"total_topics"`
	Percent          float64 `json:"percent"`
}

// Response is what the manager returns after every operation: either the next
// question to ask, or the final report once the interview completed.
type Response struct {
	InterviewID    string   `json:"interview_id"`
	Status         string   `json:"status"`
	Question       string   `json:"question,omitempty"`
	QuestionSource string   `json:"question_source,omitempty"`
	QuestionType   string   `json:"question_type,omitempty"`
	Topic          string   `json:"topic,omitempty"`
	Progress       Progress `json:"progress"`
	Report         string   `json:"report,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Status is the read-only session summary.
type Status struct {
	InterviewID string    `json:"interview_id"`
	Status      string    `json:"status"`
	Topic       string    `json:"topic,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists sessions. Implementations apply their own expiry: an expired
// session behaves exactly like a missing one.
type Store interface {
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Put inserts or replaces the session and refreshes its expiry.
	Put(ctx context.Context, s *Session) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

func progressOf(state interview.State, maxTotal int) Progress {
	totalTopics := 0
	if state.Plan != nil {
		totalTopics = len(state.Plan.Topics)
		if state.Plan.MaxTotalQuestions > 0 {
			maxTotal = state.Plan.MaxTotalQuestions
		}
	}

	percent := 0.0
	if maxTotal > 0 {
		percent = float64(state.QuestionsAsked) / float64(maxTotal) * 100
		if percent > 100 {
			percent = 100
		}
	}

	return Progress{
		QuestionsAsked:   state.QuestionsAsked,
		QuestionsInTopic: state.QuestionsInTopic,
		DeepeningCount:   state.DeepeningCount,
		HintsCount:       state.HintsGiven,
		TopicIndex:       state.TopicIndex,
		TotalTopics:      totalTopics,
		Percent:          percent,
	}
}
