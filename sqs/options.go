package sqs

import (
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	SQSClient SQSClient
	// ReplyQueueURL is used when a message carries no ReplyQueueUrl attribute.
	ReplyQueueURL string
	SuspendMode   bool
	PartialMode   bool
	ReplyMode     bool
	DebugMode     bool
	Logger        logrus.FieldLogger
}

var defaultOptions = &Options{
	SQSClient:     nil,
	ReplyQueueURL: "",
	SuspendMode:   false,
	PartialMode:   false,
	ReplyMode:     false,
	DebugMode:     false,
	Logger:        nil,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

func WithSQSClient(client SQSClient) Option {
	return OptionFunc(func(o *Options) {
		o.SQSClient = client
	})
}

func WithReplyQueueURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.ReplyQueueURL = url
	})
}

// WithSuspendMode makes the first failing record abort the whole batch with an error.
func WithSuspendMode(suspend bool) Option {
	return OptionFunc(func(o *Options) {
		o.SuspendMode = suspend
	})
}

// WithPartialMode reports failed records through SQSEventResponse so only they are retried.
func WithPartialMode(partial bool) Option {
	return OptionFunc(func(o *Options) {
		o.PartialMode = partial
	})
}

// WithReplyMode sends each response to the record's reply queue.
func WithReplyMode(reply bool) Option {
	return OptionFunc(func(o *Options) {
		o.ReplyMode = reply
	})
}

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

func WithLogger(logger logrus.FieldLogger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}
