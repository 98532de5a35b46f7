package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"interview-engine/interview"
	"interview-engine/kb"
	"interview-engine/log"
)

// Manager drives step-wise interviews over a shared Engine and a Store.
// Operations on the same session are serialized; different sessions proceed
// concurrently.
type Manager struct {
	engine   *interview.Engine
	store    Store
	embedder kb.Embedder
	logger   log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	banks map[string]interview.QuestionSource
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithEmbedder enables per-session question banks: sessions created with
// their own knowledge entries get a private knowledge base built over this
// embedder. Without it, such sessions fall back to the shared engine.
func WithEmbedder(e kb.Embedder) ManagerOption {
	return func(m *Manager) { m.embedder = e }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager over the given engine and store.
func NewManager(engine *interview.Engine, store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		engine: engine,
		store:  store,
		logger: log.GetDefaultLogger(),
		locks:  map[string]*sync.Mutex{},
		banks:  map[string]interview.QuestionSource{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new interview: it builds the plan, selects the first
// question and persists the session. Optional knowledge entries give the
// session a private question bank instead of the shared one.
func (m *Manager) Create(ctx context.Context, resume, jobDescription, role string, knowledge []kb.Entry) (*Response, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Status:    StatusWaitingForAnswer,
		State:     interview.NewState(resume, jobDescription, role),
		Knowledge: knowledge,
		CreatedAt: time.Now().UTC(),
	}

	eng := m.engineFor(ctx, sess)

	state, err := eng.Plan(ctx, sess.State)
	if err != nil {
		return nil, fmt.Errorf("planning interview: %w", err)
	}

	state, err = m.advanceToQuestion(ctx, eng, sess, state)
	if err != nil {
		return nil, err
	}
	sess.State = state

	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}

	m.logger.Info("session %s created (%d topics)", sess.ID, len(state.Plan.Topics))
	return m.responseFor(sess), nil
}

// Question returns the pending question for the session, or the final report
// once the interview completed. It never advances the interview.
func (m *Manager) Question(ctx context.Context, id string) (*Response, error) {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.responseFor(sess), nil
}

// Submit records the candidate's answer, evaluates it, lets the controller
// decide how to continue and returns either the next question or the final
// report.
func (m *Manager) Submit(ctx context.Context, id, answer string) (*Response, error) {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusWaitingForAnswer {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotAwaitingAnswer)
	}

	eng := m.engineFor(ctx, sess)

	state := eng.RecordAnswer(sess.State, answer)
	state, err = eng.Evaluate(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("evaluating answer: %w", err)
	}
	state, err = eng.Control(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("adapting interview: %w", err)
	}

	switch eng.Route(state) {
	case interview.NodeConversation:
		// The controller produced a follow-up for the same topic.
		state = eng.StageQuestion(state)
	case interview.NodeReporter:
		state, err = m.finish(ctx, eng, state)
		if err != nil {
			return nil, err
		}
		sess.Status = StatusCompleted
	default:
		state, err = m.advanceToQuestion(ctx, eng, sess, state)
		if err != nil {
			return nil, err
		}
	}

	sess.State = state
	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return m.responseFor(sess), nil
}

// Status returns the session summary without advancing anything.
func (m *Manager) Status(ctx context.Context, id string) (*Status, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Status{
		InterviewID: sess.ID,
		Status:      sess.Status,
		Topic:       sess.State.CurrentTopic,
		Progress:    progressOf(sess.State, m.engine.Config().MaxTotalQuestions),
		CreatedAt:   sess.CreatedAt,
		UpdatedAt:   sess.UpdatedAt,
	}, nil
}

// Delete removes the session and its cached private bank.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.locks, id)
	delete(m.banks, id)
	m.mu.Unlock()
	return nil
}

// advanceToQuestion runs the selector until it yields a question, skipping
// exhausted topics, or finishes the interview when the plan is spent. The
// loop is bounded by the topic count; the selector advances the cursor on
// every skip.
func (m *Manager) advanceToQuestion(ctx context.Context, eng *interview.Engine, sess *Session, state interview.State) (interview.State, error) {
	maxHops := 1
	if state.Plan != nil {
		maxHops += len(state.Plan.Topics)
	}

	for hop := 0; hop < maxHops; hop++ {
		if state.InterviewComplete() {
			out, err := m.finish(ctx, eng, state)
			if err != nil {
				return state, err
			}
			sess.Status = StatusCompleted
			return out, nil
		}

		next, err := eng.Select(ctx, state)
		if err != nil {
			return state, fmt.Errorf("selecting question: %w", err)
		}
		state = next
		if state.SkipTopic {
			continue
		}
		if state.CurrentQuestion != nil {
			sess.Status = StatusWaitingForAnswer
			return state, nil
		}
	}

	out, err := m.finish(ctx, eng, state)
	if err != nil {
		return state, err
	}
	sess.Status = StatusCompleted
	return out, nil
}

func (m *Manager) finish(ctx context.Context, eng *interview.Engine, state interview.State) (interview.State, error) {
	out, err := eng.Report(ctx, state)
	if err != nil {
		return state, fmt.Errorf("building report: %w", err)
	}
	return out, nil
}

// engineFor returns the shared engine, or one bound to the session's private
// question bank. Banks are built once per session and cached; a bank that
// fails to build degrades to the shared engine.
func (m *Manager) engineFor(ctx context.Context, sess *Session) *interview.Engine {
	if len(sess.Knowledge) == 0 {
		return m.engine
	}

	m.mu.Lock()
	source, ok := m.banks[sess.ID]
	m.mu.Unlock()
	if ok {
		return m.engine.WithKnowledge(source)
	}

	if m.embedder == nil {
		m.logger.Warn("session %s has its own question bank but the manager has no embedder", sess.ID)
		return m.engine
	}

	bank := kb.NewKnowledgeBase(m.embedder, kb.WithLogger(m.logger))
	if err := bank.AddEntries(ctx, sess.Knowledge); err != nil {
		m.logger.Warn("session %s: building question bank failed: %v", sess.ID, err)
		return m.engine
	}

	m.mu.Lock()
	m.banks[sess.ID] = bank
	m.mu.Unlock()
	return m.engine.WithKnowledge(bank)
}

func (m *Manager) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := m.store.Put(ctx, sess); err != nil {
		return fmt.Errorf("persisting session %s: %w", sess.ID, err)
	}
	return nil
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *Manager) responseFor(sess *Session) *Response {
	resp := &Response{
		InterviewID: sess.ID,
		Status:      sess.Status,
		Topic:       sess.State.CurrentTopic,
		Progress:    progressOf(sess.State, m.engine.Config().MaxTotalQuestions),
	}

	if sess.Status == StatusCompleted {
		resp.Report = sess.State.Report
		resp.Recommendation = sess.State.Recommendation
		return resp
	}

	if q := sess.State.CurrentQuestion; q != nil {
		resp.Question = q.Content
		resp.QuestionSource = q.Source
	}
	resp.QuestionType = sess.State.QuestionType
	if resp.QuestionType == "" {
		resp.QuestionType = interview.QuestionTypeNormal
	}
	return resp
}
