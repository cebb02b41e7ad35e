package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/owlpost/notifykit/pkg/logger"
)

// Dispatcher runs task handlers on background goroutines.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used to report handler failures.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher with no handlers registered.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterHandler registers a handler, replacing any previous registration
// for the same payload type.
func (d *Dispatcher) RegisterHandler(h Handler) {
	if h == nil {
		return
	}
	d.mu.Lock()
	d.handlers[h.Name()] = h
	d.mu.Unlock()
}

// Enqueue schedules the payload's handler to run on its own goroutine and
// returns immediately. The handler runs with a context detached from the
// caller's cancellation: enqueueing is a commitment, not a request-scoped
// operation. Handler errors are logged, not returned.
func (d *Dispatcher) Enqueue(ctx context.Context, payload any) error {
	if payload == nil {
		return ErrPayloadNil
	}

	name := qualifiedStructName(payload)

	d.mu.RLock()
	handler, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrHandlerNotFound, name)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	taskCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := handler.Handle(taskCtx, raw); err != nil {
			d.logger.LogAttrs(taskCtx, slog.LevelError, "Task handler failed",
				slog.String("task", name),
				logger.Error(err),
			)
		}
	}()

	return nil
}

// Wait blocks until every enqueued task has finished. Intended for graceful
// shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
