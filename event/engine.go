// Package event serves asynchronous (Event type) invocations that carry a
// batch of hello events. Responses are discarded by Lambda, so only failures
// are reported.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/logging"
)

var ErrStopped = errors.New("event: engine is stopped")

type Engine struct {
	*Options
	handler hello.HandlerFunc
	running atomic.Int32
}

// NewEngine creates an engine in running state.
func NewEngine(handler hello.HandlerFunc, opts ...Option) *Engine {
	e := &Engine{
		Options: NewOptions(opts...),
		handler: handler,
	}
	if e.Logger == nil {
		e.Logger = logging.New()
	}
	e.running.Store(1)
	return e
}

func (e *Engine) Start() {
	e.running.Store(1)
}

func (e *Engine) Stop() {
	e.running.Store(0)
}

func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

// Invoke implements lambda.Handler. The returned payload is always empty.
func (e *Engine) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	if !e.IsRunning() {
		return nil, ErrStopped
	}

	items, err := DecodeBatch(e.Codec, payload)
	if err != nil {
		if e.DebugMode {
			e.Logger.Infof("[Event] Decode payload error: %v", err)
		}
		return nil, err
	}

	return nil, e.processItems(ctx, items)
}

func (e *Engine) processItems(ctx context.Context, items []hello.Event) error {
	var lastErr error

	for i, item := range items {
		if !e.IsRunning() {
			if e.DebugMode {
				e.Logger.Infof("[Event] Engine stopped during processing item %d", i)
			}
			return fmt.Errorf("event: engine stopped during processing")
		}

		err := e.processItem(ctx, i, item)
		if err == nil {
			continue
		}
		if e.DebugMode {
			e.Logger.Infof("[Event] Error processing item %d: %v", i, err)
		}

		switch e.RunMode {
		case RunModePartial, RunModeReentrant:
			lastErr = err
		default:
			return err
		}
	}

	if e.RunMode == RunModeReentrant {
		return lastErr
	}
	return nil
}

func (e *Engine) processItem(ctx context.Context, index int, item hello.Event) (err error) {
	if e.DebugMode {
		e.Logger.Infof("[Event] Request: %d %s", index, hello.Format(item))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event: item %d: panic: %v", index, r)
		}
	}()

	if _, err := e.handler(ctx, item); err != nil {
		return fmt.Errorf("event: item %d: %w", index, err)
	}
	return nil
}
