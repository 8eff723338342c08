// Package eventcli queues batches of events for a function served in event mode.
package eventcli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aura-studio/lambda-hello/event"
	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

type Client struct {
	*Options
}

// NewClient builds a client. Without WithLambdaClient it loads the default
// AWS configuration.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		Options: NewOptions(opts...),
	}
	if c.FunctionName == "" {
		return nil, errors.New("eventcli: function name is required")
	}
	if c.LambdaClient == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("eventcli: load aws config: %w", err)
		}
		c.LambdaClient = lambda.NewFromConfig(cfg)
	}
	return c, nil
}

// Send queues a batch holding a single event.
func (c *Client) Send(ctx context.Context, item hello.Event) error {
	return c.SendBatch(ctx, []hello.Event{item})
}

// SendBatch queues all items in one invocation. It returns once Lambda has
// accepted the invocation; handler failures are not reported back.
func (c *Client) SendBatch(ctx context.Context, items []hello.Event) error {
	payload, err := event.EncodeBatch(c.Codec, items)
	if err != nil {
		return err
	}

	out, err := c.LambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.FunctionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("eventcli: lambda invoke failed: %w", err)
	}
	if out.StatusCode != http.StatusAccepted {
		return fmt.Errorf("eventcli: unexpected status %d for event invocation", out.StatusCode)
	}
	return nil
}
