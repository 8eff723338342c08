package logging

import (
	"fmt"
	"io"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Level     string
	Format    Format
	Timestamp bool
	// Output defaults to os.Stdout, which the Lambda runtime forwards to CloudWatch.
	Output io.Writer
}

var defaultOptions = &Options{
	Level:     "info",
	Format:    FormatText,
	Timestamp: false,
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

// WithLevel sets the minimum level. It panics on names logrus does not know.
func WithLevel(level string) Option {
	return OptionFunc(func(o *Options) {
		if _, err := logrus.ParseLevel(level); err != nil {
			panic(fmt.Errorf("logging: %w", err))
		}
		o.Level = level
	})
}

func WithFormat(format Format) Option {
	return OptionFunc(func(o *Options) {
		switch format {
		case FormatText, FormatJSON:
			o.Format = format
		default:
			panic("logging: unrecognized format: " + string(format))
		}
	})
}

func WithTimestamp(timestamp bool) Option {
	return OptionFunc(func(o *Options) {
		o.Timestamp = timestamp
	})
}

func WithOutput(w io.Writer) Option {
	return OptionFunc(func(o *Options) {
		o.Output = w
	})
}

// WithVerbose is shorthand for debug level, used by the CLI --verbose flag.
func WithVerbose(verbose bool) Option {
	return OptionFunc(func(o *Options) {
		if verbose {
			o.Level = logrus.DebugLevel.String()
		}
	})
}
