package server

import (
	"github.com/aura-studio/lambda-hello/event"
	"github.com/aura-studio/lambda-hello/http"
	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/aura-studio/lambda-hello/logging"
	"github.com/aura-studio/lambda-hello/sqs"
)

const (
	ModeInvoke = "invoke"
	ModeEvent  = "event"
	ModeSQS    = "sqs"
	ModeHTTP   = "http"
)

type Option interface {
	Apply(*Options)
}

type Options struct {
	Lambda string
	Log    []logging.Option
	Invoke []invoke.Option
	Event  []event.Option
	Sqs    []sqs.Option
	Http   []http.Option
}

type serveOptionFunc func(*Options)

func (f serveOptionFunc) Apply(o *Options) { f(o) }

func NewOptions(opts ...Option) *Options {
	options := &Options{Lambda: ModeInvoke}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	return options
}

func WithLambda(mode string) Option {
	return serveOptionFunc(func(o *Options) {
		o.Lambda = mode
	})
}

func WithLogOptions(opts ...logging.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Log = append(o.Log, opts...)
	})
}

func WithInvokeOptions(opts ...invoke.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Invoke = append(o.Invoke, opts...)
	})
}

func WithEventOptions(opts ...event.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Event = append(o.Event, opts...)
	})
}

func WithSqsOptions(opts ...sqs.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Sqs = append(o.Sqs, opts...)
	})
}

func WithHttpOptions(opts ...http.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Http = append(o.Http, opts...)
	})
}

type serveConfigOption struct {
	lambda    string
	logOpt    logging.Option
	invokeOpt invoke.Option
	eventOpt  event.Option
	sqsOpt    sqs.Option
	httpOpt   http.Option
}

func (o serveConfigOption) Apply(opts *Options) {
	if o.lambda != "" {
		opts.Lambda = o.lambda
	}
	if o.logOpt != nil {
		opts.Log = append(opts.Log, o.logOpt)
	}
	if o.invokeOpt != nil {
		opts.Invoke = append(opts.Invoke, o.invokeOpt)
	}
	if o.eventOpt != nil {
		opts.Event = append(opts.Event, o.eventOpt)
	}
	if o.sqsOpt != nil {
		opts.Sqs = append(opts.Sqs, o.sqsOpt)
	}
	if o.httpOpt != nil {
		opts.Http = append(opts.Http, o.httpOpt)
	}
}
