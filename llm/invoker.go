// Package llm is the model-call boundary of the engine: a prompt goes in,
// text comes out. Every call carries a timeout, and timeouts, transport
// errors and empty responses all surface as plain errors so that callers can
// treat them identically and fall back.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"interview-engine/log"
)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("empty model response")

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 8 * time.Second

// Invoker wraps an llms.Model with a per-call timeout and temperature.
type Invoker struct {
	model       llms.Model
	timeout     time.Duration
	temperature float64
	logger      log.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) InvokerOption {
	return func(i *Invoker) { i.timeout = d }
}

// WithTemperature sets the sampling temperature passed on every call.
func WithTemperature(t float64) InvokerOption {
	return func(i *Invoker) { i.temperature = t }
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(l log.Logger) InvokerOption {
	return func(i *Invoker) { i.logger = l }
}

// NewInvoker creates an Invoker over the given model.
func NewInvoker(model llms.Model, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		model:       model,
		timeout:     DefaultTimeout,
		temperature: 0.1,
		logger:      log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke sends a single prompt and returns the trimmed response text.
func (i *Invoker) Invoke(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, i.model, prompt,
		llms.WithTemperature(i.temperature))
	if err != nil {
		i.logger.Debug("model call failed after %s: %v", time.Since(start), err)
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}

	i.logger.Debug("model call took %s, %d chars", time.Since(start), len(text))
	return text, nil
}
