package sqscli

import (
	"time"

	"github.com/aura-studio/lambda-hello/sqs"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Options struct {
	SQSClient sqs.SQSClient
	// QueueURL is the queue the function is subscribed to.
	QueueURL string
	// ReplyQueueURL enables Call; replies are collected from it by a listener.
	ReplyQueueURL  string
	DefaultTimeout time.Duration
	// WaitTimeSeconds is the long-poll duration of the reply listener.
	WaitTimeSeconds int32
	// Logger receives reply listener failures.
	Logger logrus.FieldLogger
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	DefaultTimeout:  30 * time.Second,
	WaitTimeSeconds: 20,
	Logger:          nil,
}

func NewOptions(opts ...Option) *Options {
	o := deepcopy.Copy(defaultOptions).(*Options)
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
	return o
}

func WithSQSClient(client sqs.SQSClient) Option {
	return OptionFunc(func(o *Options) {
		o.SQSClient = client
	})
}

func WithQueueURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.QueueURL = url
	})
}

func WithReplyQueueURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.ReplyQueueURL = url
	})
}

func WithDefaultTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultTimeout = timeout
	})
}

func WithWaitTimeSeconds(seconds int32) Option {
	return OptionFunc(func(o *Options) {
		o.WaitTimeSeconds = seconds
	})
}

func WithLogger(logger logrus.FieldLogger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}
