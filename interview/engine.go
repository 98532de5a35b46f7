package interview

import (
	"context"
	"errors"
	"math/rand/v2"

	"interview-engine/graph"
	"interview-engine/kb"
	"interview-engine/llm"
	"interview-engine/log"
)

var errPlanWithoutTopics = errors.New("plan has no topics")

// QuestionSource is what the selector needs from the knowledge base.
type QuestionSource interface {
	QuestionsForTopic(ctx context.Context, topic string, count int) ([]kb.SearchResult, error)
}

// Engine wires the interview agents together. One Engine is safe to share
// across sessions; all per-interview data lives in State.
type Engine struct {
	inv       *llm.Invoker
	knowledge QuestionSource
	cfg       Config
	logger    log.Logger
	intn      func(n int) int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(l log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithRandInt replaces the randomness used for candidate tie-breaking.
// Tests pass a deterministic function.
func WithRandInt(fn func(n int) int) EngineOption {
	return func(e *Engine) { e.intn = fn }
}

// NewEngine creates an Engine. A nil knowledge source is allowed; the
// selector then always lands on its fallback pool for non-resume topics.
func NewEngine(inv *llm.Invoker, knowledge QuestionSource, cfg Config, opts ...EngineOption) *Engine {
	if knowledge == nil {
		knowledge = emptySource{}
	}
	e := &Engine{
		inv:       inv,
		knowledge: knowledge,
		cfg:       cfg,
		logger:    log.GetDefaultLogger(),
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// WithKnowledge returns a copy of the engine bound to a different knowledge
// source. Used for sessions that bring their own question bank.
func (e *Engine) WithKnowledge(knowledge QuestionSource) *Engine {
	clone := *e
	if knowledge == nil {
		knowledge = emptySource{}
	}
	clone.knowledge = knowledge
	return &clone
}

type emptySource struct{}

func (emptySource) QuestionsForTopic(ctx context.Context, topic string, count int) ([]kb.SearchResult, error) {
	return nil, nil
}

// BuildGraph assembles the interview workflow:
//
//	planner -> selector -> conversation -> evaluator -> controller
//	                ^            ^                          |
//	                +------------+--------- router ---------+
//	                                          |
//	                                       reporter -> END
//
// The selector's outgoing edge is conditional: a topic skip loops back into
// the selector, completion goes straight to the reporter, otherwise the
// selected question moves on to the conversation turn.
func (e *Engine) BuildGraph(provide AnswerProvider) (*graph.Runnable[State], error) {
	g := graph.NewStateGraph[State]()

	g.AddNode(NodePlanner, "builds the interview plan", func(ctx context.Context, s State) (State, error) {
		return e.Plan(ctx, s)
	})
	g.AddNode(NodeSelector, "selects the next question", func(ctx context.Context, s State) (State, error) {
		return e.Select(ctx, s)
	})
	g.AddNode(NodeConversation, "asks the question and records the answer", func(ctx context.Context, s State) (State, error) {
		return e.ConversationTurn(ctx, s, provide)
	})
	g.AddNode(NodeEvaluator, "scores the last answer", func(ctx context.Context, s State) (State, error) {
		return e.Evaluate(ctx, s)
	})
	g.AddNode(NodeController, "decides how the interview continues", func(ctx context.Context, s State) (State, error) {
		return e.Control(ctx, s)
	})
	g.AddNode(NodeReporter, "writes the final report", func(ctx context.Context, s State) (State, error) {
		return e.Report(ctx, s)
	})

	g.SetEntryPoint(NodePlanner)
	g.AddEdge(NodePlanner, NodeSelector)
	g.AddConditionalEdge(NodeSelector, func(ctx context.Context, s State) string {
		switch {
		case s.InterviewComplete():
			return NodeReporter
		case s.SkipTopic:
			return NodeSelector
		default:
			return NodeConversation
		}
	})
	g.AddEdge(NodeConversation, NodeEvaluator)
	g.AddEdge(NodeEvaluator, NodeController)
	g.AddConditionalEdge(NodeController, func(ctx context.Context, s State) string {
		return e.Route(s)
	})
	g.AddEdge(NodeReporter, graph.END)

	return g.Compile()
}

// Run conducts a full interview autonomously, pulling answers from the
// provider, and returns the final state with report and recommendation set.
func (e *Engine) Run(ctx context.Context, resume, jobDescription, role string, provide AnswerProvider) (State, error) {
	runnable, err := e.BuildGraph(provide)
	if err != nil {
		return State{}, err
	}

	e.logger.Info("starting interview run")
	final, err := runnable.InvokeWithConfig(ctx, NewState(resume, jobDescription, role),
		&graph.Config{MaxSteps: e.cfg.MaxSteps})
	if err != nil {
		return final, err
	}

	e.logger.Info("interview run finished")
	return final, nil
}
