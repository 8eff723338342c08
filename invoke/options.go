package invoke

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
	Codec     string
	DebugMode bool
	Logger    logrus.FieldLogger
}

var defaultOptions = &Options{
	Codec:     CodecJSON,
	DebugMode: false,
	Logger:    nil,
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

// WithCodec selects the payload codec by name. It panics on unknown names.
func WithCodec(name string) Option {
	return OptionFunc(func(o *Options) {
		if _, err := CodecByName(name); err != nil {
			panic(err)
		}
		o.Codec = name
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
