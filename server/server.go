// Package server picks the serving mode of the hello function from
// lambda.yaml and runs it.
package server

import (
	"fmt"

	"github.com/aura-studio/lambda-hello/event"
	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/http"
	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/aura-studio/lambda-hello/logging"
	"github.com/aura-studio/lambda-hello/sqs"
	"github.com/sirupsen/logrus"
)

// HandlerName is the handler value function configs use to reach hello in http mode.
const HandlerName = "hello"

// Serve runs the selected mode. invoke, event and sqs hand control to the Lambda
// runtime and do not return; http returns when the server is closed.
func Serve(opts ...Option) error {
	options := NewOptions(opts...)
	logger := logging.New(options.Log...)
	h := hello.New(hello.WithLogger(logger))

	switch options.Lambda {
	case ModeInvoke, "":
		invoke.Serve(h.Handle, invokeOptions(options, logger)...)
		return nil
	case ModeEvent:
		event.Serve(h.Handle, append([]event.Option{event.WithLogger(logger)}, options.Event...)...)
		return nil
	case ModeSQS:
		sqs.Serve(h.Handle, append([]sqs.Option{sqs.WithLogger(logger)}, options.Sqs...)...)
		return nil
	case ModeHTTP:
		return http.Serve(httpOptions(options, logger, h)...)
	default:
		return fmt.Errorf("server: unknown lambda mode %q", options.Lambda)
	}
}

func invokeOptions(options *Options, logger logrus.FieldLogger) []invoke.Option {
	return append([]invoke.Option{invoke.WithLogger(logger)}, options.Invoke...)
}

// httpOptions registers hello with the gateway behind a JSON invoke engine.
func httpOptions(options *Options, logger logrus.FieldLogger, h *hello.Handler) []http.Option {
	opts := append(invokeOptions(options, logger), invoke.WithCodec(invoke.CodecJSON))
	engine := invoke.NewEngine(h.Handle, opts...)
	return append([]http.Option{
		http.WithLogger(logger),
		http.WithHandler(HandlerName, engine),
	}, options.Http...)
}

func Close() error {
	if err := http.Close(); err != nil {
		return err
	}
	sqs.Close()
	event.Close()
	invoke.Close()
	return nil
}
