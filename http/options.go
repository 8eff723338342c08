package http

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Option interface {
	Apply(o *Options)
}

type HttpOption func(*Options)

func (f HttpOption) Apply(o *Options) { f(o) }

type Options struct {
	Address   string
	DebugMode bool
	CorsMode  bool
	// RoutesFile is read when no routes are given with WithRoutes. Empty
	// means the default locations are searched.
	RoutesFile string
	ConfigDir  string
	// EnvFile is loaded before function configs are expanded. A missing
	// file is skipped.
	EnvFile   string
	Routes    []Route
	Functions []Function
	// Handlers maps a function config's handler field to the in-process
	// implementation that serves it.
	Handlers map[string]lambda.Handler
	Logger   logrus.FieldLogger
}

var defaultOptions = &Options{
	Address:    ":3000",
	DebugMode:  false,
	CorsMode:   false,
	RoutesFile: "",
	ConfigDir:  "configs",
	EnvFile:    ".env",
	Routes:     nil,
	Functions:  nil,
	Handlers:   map[string]lambda.Handler{},
	Logger:     nil,
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

func WithAddress(addr string) Option {
	return HttpOption(func(o *Options) {
		o.Address = addr
	})
}

func WithDebugMode() Option {
	return HttpOption(func(o *Options) {
		o.DebugMode = true
	})
}

func WithCors() Option {
	return HttpOption(func(o *Options) {
		o.CorsMode = true
	})
}

func WithRoutesFile(path string) Option {
	return HttpOption(func(o *Options) {
		o.RoutesFile = path
	})
}

func WithConfigDir(dir string) Option {
	return HttpOption(func(o *Options) {
		o.ConfigDir = dir
	})
}

func WithEnvFile(path string) Option {
	return HttpOption(func(o *Options) {
		o.EnvFile = path
	})
}

// WithRoutes replaces routes.json. Entries are validated like file entries.
func WithRoutes(routes ...Route) Option {
	return HttpOption(func(o *Options) {
		o.Routes = append(o.Routes, routes...)
	})
}

// WithFunctions replaces the config directory.
func WithFunctions(functions ...Function) Option {
	return HttpOption(func(o *Options) {
		o.Functions = append(o.Functions, functions...)
	})
}

func WithHandler(name string, handler lambda.Handler) Option {
	return HttpOption(func(o *Options) {
		if o.Handlers == nil {
			o.Handlers = map[string]lambda.Handler{}
		}
		o.Handlers[name] = handler
	})
}

func WithLogger(logger logrus.FieldLogger) Option {
	return HttpOption(func(o *Options) {
		o.Logger = logger
	})
}
