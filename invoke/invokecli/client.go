// Package invokecli calls a deployed hello function through the AWS Lambda API.
package invokecli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

type Client struct {
	*Options
	codec invoke.Codec
}

// NewClient builds a client. Without WithLambdaClient it loads the default
// AWS configuration (environment, shared config files, instance role).
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		Options: NewOptions(opts...),
	}
	if c.FunctionName == "" {
		return nil, errors.New("invokecli: function name is required")
	}
	codec, err := invoke.CodecByName(c.Codec)
	if err != nil {
		return nil, err
	}
	c.codec = codec

	if c.LambdaClient == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("invokecli: load aws config: %w", err)
		}
		c.LambdaClient = lambda.NewFromConfig(cfg)
	}
	return c, nil
}

// Call invokes the function synchronously and decodes its response.
func (c *Client) Call(ctx context.Context, event hello.Event) (hello.Response, error) {
	out, err := c.invoke(ctx, event, types.InvocationTypeRequestResponse)
	if err != nil {
		return hello.Response{}, err
	}
	if out.FunctionError != nil && *out.FunctionError != "" {
		return hello.Response{}, fmt.Errorf("invokecli: function error (%s): %s", *out.FunctionError, out.Payload)
	}
	rsp, err := c.codec.DecodeResponse(out.Payload)
	if err != nil {
		return hello.Response{}, fmt.Errorf("invokecli: decode response: %w", err)
	}
	return rsp, nil
}

// Send queues an asynchronous invocation. The function's response is discarded
// by Lambda, so only acceptance is reported.
func (c *Client) Send(ctx context.Context, event hello.Event) error {
	out, err := c.invoke(ctx, event, types.InvocationTypeEvent)
	if err != nil {
		return err
	}
	if out.StatusCode != http.StatusAccepted {
		return fmt.Errorf("invokecli: unexpected status %d for async invocation", out.StatusCode)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, event hello.Event, typ types.InvocationType) (*lambda.InvokeOutput, error) {
	payload, err := c.codec.EncodeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("invokecli: encode event: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.DefaultTimeout)
		defer cancel()
	}

	input := &lambda.InvokeInput{
		FunctionName:   aws.String(c.FunctionName),
		InvocationType: typ,
		Payload:        payload,
	}
	if c.Qualifier != "" {
		input.Qualifier = aws.String(c.Qualifier)
	}

	out, err := c.LambdaClient.Invoke(ctx, input)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("invokecli: invoke %s: timeout", c.FunctionName)
		}
		return nil, fmt.Errorf("invokecli: invoke %s: %w", c.FunctionName, err)
	}
	return out, nil
}

// FunctionInfo is the deployed configuration of the function.
type FunctionInfo struct {
	FunctionName  string            `json:"functionName"`
	Runtime       string            `json:"runtime"`
	Handler       string            `json:"handler"`
	MemorySize    int32             `json:"memorySize"`
	Timeout       int32             `json:"timeout"`
	LastModified  string            `json:"lastModified"`
	CodeSize      int64             `json:"codeSize"`
	State         string            `json:"state"`
	Architectures []string          `json:"architectures"`
	Description   string            `json:"description,omitempty"`
	Environment   map[string]string `json:"environment,omitempty"`
	Layers        []string          `json:"layers,omitempty"`
}

// Info reads the function's configuration with GetFunction. A function
// reporting no architecture runs on x86_64.
func (c *Client) Info(ctx context.Context) (*FunctionInfo, error) {
	input := &lambda.GetFunctionInput{
		FunctionName: aws.String(c.FunctionName),
	}
	if c.Qualifier != "" {
		input.Qualifier = aws.String(c.Qualifier)
	}

	out, err := c.LambdaClient.GetFunction(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("invokecli: get function %s: %w", c.FunctionName, err)
	}
	cfg := out.Configuration
	if cfg == nil {
		return nil, fmt.Errorf("invokecli: get function %s: no configuration returned", c.FunctionName)
	}

	info := &FunctionInfo{
		FunctionName: aws.ToString(cfg.FunctionName),
		Runtime:      string(cfg.Runtime),
		Handler:      aws.ToString(cfg.Handler),
		MemorySize:   aws.ToInt32(cfg.MemorySize),
		Timeout:      aws.ToInt32(cfg.Timeout),
		LastModified: aws.ToString(cfg.LastModified),
		CodeSize:     cfg.CodeSize,
		State:        string(cfg.State),
		Description:  aws.ToString(cfg.Description),
	}
	for _, arch := range cfg.Architectures {
		info.Architectures = append(info.Architectures, string(arch))
	}
	if len(info.Architectures) == 0 {
		info.Architectures = []string{string(types.ArchitectureX8664)}
	}
	if cfg.Environment != nil && len(cfg.Environment.Variables) > 0 {
		info.Environment = cfg.Environment.Variables
	}
	for _, layer := range cfg.Layers {
		info.Layers = append(info.Layers, aws.ToString(layer.Arn))
	}
	return info, nil
}
