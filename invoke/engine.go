// Package invoke serves the handler for direct (RequestResponse and Event)
// Lambda invocations.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/logging"
)

var ErrStopped = errors.New("invoke: engine is stopped")

// Engine adapts a hello.HandlerFunc to the lambda.Handler byte contract.
type Engine struct {
	*Options
	handler hello.HandlerFunc
	codec   Codec
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
	codec, err := CodecByName(e.Codec)
	if err != nil {
		panic(err)
	}
	e.codec = codec
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

// Invoke decodes payload, runs the handler and encodes its response.
func (e *Engine) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	if !e.IsRunning() {
		return nil, ErrStopped
	}

	event, err := e.codec.DecodeEvent(payload)
	if err != nil {
		if e.DebugMode {
			e.Logger.Infof("[Invoke] Decode payload error: %v", err)
		}
		return nil, fmt.Errorf("invoke: invalid payload: %w", err)
	}

	if e.DebugMode {
		e.Logger.Infof("[Invoke] Request: %s", hello.Format(event))
	}

	rsp, err := e.call(ctx, event)
	if err != nil {
		if e.DebugMode {
			e.Logger.Infof("[Invoke] Error: %v", err)
		}
		return nil, err
	}

	if e.DebugMode {
		e.Logger.Infof("[Invoke] Response: %d %s", rsp.StatusCode, rsp.Body)
	}

	return e.codec.EncodeResponse(rsp)
}

// call runs the handler, turning a panic into an error.
func (e *Engine) call(ctx context.Context, event hello.Event) (rsp hello.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invoke: panic: %v", r)
		}
	}()
	return e.handler(ctx, event)
}
