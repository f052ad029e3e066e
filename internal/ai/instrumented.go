package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/metrics"
)

// Instrumented bounds each call with a timeout and records its duration.
type Instrumented struct {
	next      Completer
	provider  string
	operation string
	timeout   time.Duration
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// InstrumentOption configures an Instrumented completer.
type InstrumentOption func(*Instrumented)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) InstrumentOption {
	return func(i *Instrumented) { i.timeout = d }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) InstrumentOption {
	return func(i *Instrumented) {
		if r != nil {
			i.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) InstrumentOption {
	return func(i *Instrumented) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithOperation sets the operation label, "complete" by default.
func WithOperation(op string) InstrumentOption {
	return func(i *Instrumented) { i.operation = op }
}

// Instrument wraps next.
func Instrument(next Completer, provider string, opts ...InstrumentOption) *Instrumented {
	i := &Instrumented{
		next:      next,
		provider:  provider,
		operation: "complete",
		recorder:  metrics.Nop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Complete implements Completer. Timeouts surface as ErrUnavailable.
func (i *Instrumented) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := i.next.Complete(ctx, messages)
	elapsed := time.Since(start)

	if err != nil && !errors.Is(err, ErrUnavailable) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	i.recorder.ObserveAIRequest(i.provider, i.operation, metrics.Outcome(err), elapsed)
	if err != nil {
		i.logger.Warn("AI request failed",
			"provider", i.provider,
			"operation", i.operation,
			"messages", len(messages),
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
		return "", err
	}
	i.logger.Debug("AI request completed",
		"provider", i.provider,
		"operation", i.operation,
		"duration_ms", elapsed.Milliseconds())
	return reply, nil
}
