package hello

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
	Logger logrus.FieldLogger
}

var defaultOptions = &Options{
	Logger: nil,
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

// WithLogger sets the logger that receives the per-invocation event line.
func WithLogger(logger logrus.FieldLogger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}
