// Package graph implements a small typed state graph: named nodes connected
// by static or conditional edges, executed sequentially from an entry point
// until END is reached or the step ceiling trips. Node functions receive the
// shared state and return the updated state; the runner threads it through.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMaxStepsExceeded is returned when execution hits the step ceiling.
	// The ceiling guarantees termination even if routing enters a cycle.
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
)

// DefaultMaxSteps is the step ceiling applied when Config does not set one.
const DefaultMaxSteps = 50

// Node represents a node in the graph.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function takes the current state and returns the updated state.
	Function func(ctx context.Context, state S) (S, error)
}

// Edge represents a static edge between two nodes.
type Edge struct {
	From string
	To   string
}

// Config carries per-invocation execution options.
type Config struct {
	// MaxSteps limits the number of node executions in a single invocation.
	// Zero means DefaultMaxSteps.
	MaxSteps int
}

// StateGraph is a state-based graph with compile-time type safety.
// The type parameter S is the state threaded through every node.
type StateGraph[S any] struct {
	nodes            map[string]Node[S]
	edges            []Edge
	conditionalEdges map[string]func(ctx context.Context, state S) string
	entryPoint       string
}

// NewStateGraph creates a new instance of StateGraph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
	}
}

// AddNode adds a new node to the state graph with the given name, description
// and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a static edge between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge adds an edge whose target node is determined at runtime
// from the state. The condition may return END to finish execution.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// Runnable represents a compiled state graph that can be invoked.
type Runnable[S any] struct {
	graph *StateGraph[S]
}

// Compile validates the graph and returns a Runnable instance.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}

	return &Runnable[S]{graph: g}, nil
}

// Invoke executes the compiled state graph with the given input state.
func (r *Runnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the compiled state graph with the given input
// state and config.
func (r *Runnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	state := initialState

	maxSteps := DefaultMaxSteps
	if config != nil && config.MaxSteps > 0 {
		maxSteps = config.MaxSteps
	}

	current := r.graph.entryPoint
	for steps := 0; current != END; steps++ {
		if steps >= maxSteps {
			return state, fmt.Errorf("%w: %d", ErrMaxStepsExceeded, maxSteps)
		}

		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return state, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		var err error
		state, err = node.Function(ctx, state)
		if err != nil {
			return state, fmt.Errorf("error in node %s: %w", current, err)
		}

		current, err = r.nextNode(ctx, current, state)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

// nextNode resolves the successor of a node: conditional edges win over
// static edges.
func (r *Runnable[S]) nextNode(ctx context.Context, from string, state S) (string, error) {
	if condition, ok := r.graph.conditionalEdges[from]; ok {
		next := condition(ctx, state)
		if next == "" {
			return "", fmt.Errorf("conditional edge returned empty next node from %s", from)
		}
		return next, nil
	}

	for _, edge := range r.graph.edges {
		if edge.From == from {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}
