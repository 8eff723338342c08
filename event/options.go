package event

import (
	"fmt"

	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type RunMode string

const (
	RunModeStrict    RunMode = "strict"    // stop at the first failure
	RunModePartial   RunMode = "partial"   // run every item, report success
	RunModeBatch     RunMode = "batch"     // any failure fails the invocation
	RunModeReentrant RunMode = "reentrant" // run every item, report the last failure
)

type Options struct {
	RunMode   RunMode
	Codec     string
	DebugMode bool
	Logger    logrus.FieldLogger
}

var defaultOptions = &Options{
	RunMode:   RunModeBatch,
	Codec:     invoke.CodecJSON,
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

func WithRunMode(mode RunMode) Option {
	return OptionFunc(func(o *Options) {
		switch mode {
		case RunModeStrict, RunModePartial, RunModeBatch, RunModeReentrant:
			o.RunMode = mode
		default:
			panic("event: unrecognized run mode: " + string(mode))
		}
	})
}

// WithCodec selects the batch wire format, json or proto.
func WithCodec(name string) Option {
	return OptionFunc(func(o *Options) {
		switch name {
		case invoke.CodecJSON, invoke.CodecProto:
			o.Codec = name
		default:
			panic(fmt.Errorf("event: unrecognized codec: %q", name))
		}
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
