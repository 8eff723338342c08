package invokecli

import (
	"context"
	"time"

	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/mohae/deepcopy"
)

// LambdaClient is the subset of the AWS Lambda API the client needs.
type LambdaClient interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput,
		optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
	GetFunction(ctx context.Context, params *lambda.GetFunctionInput,
		optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
}

type Options struct {
	LambdaClient   LambdaClient
	FunctionName   string
	Qualifier      string
	Codec          string
	DefaultTimeout time.Duration
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	Codec:          invoke.CodecJSON,
	DefaultTimeout: 30 * time.Second,
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

func WithLambdaClient(client LambdaClient) Option {
	return OptionFunc(func(o *Options) {
		o.LambdaClient = client
	})
}

func WithFunctionName(name string) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionName = name
	})
}

// WithQualifier targets a version or alias of the function.
func WithQualifier(qualifier string) Option {
	return OptionFunc(func(o *Options) {
		o.Qualifier = qualifier
	})
}

// WithCodec must match the codec the deployed engine was configured with.
func WithCodec(name string) Option {
	return OptionFunc(func(o *Options) {
		if _, err := invoke.CodecByName(name); err != nil {
			panic(err)
		}
		o.Codec = name
	})
}

func WithDefaultTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultTimeout = timeout
	})
}
