// Package sqscli sends events to a hello function subscribed to an SQS queue
// and, when a reply queue is configured, waits for its responses.
package sqscli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/logging"
	"github.com/aura-studio/lambda-hello/sqs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
)

var ErrNoReplyQueue = errors.New("sqscli: no reply queue configured")

type Client struct {
	*Options
	pendingRequests sync.Map // correlationId -> chan hello.Response
	stopChan        chan struct{}
	closeOnce       sync.Once
	wg              sync.WaitGroup
}

// NewClient builds a client and, if a reply queue is set, starts the reply
// listener. Without WithSQSClient it loads the default AWS configuration.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		Options:  NewOptions(opts...),
		stopChan: make(chan struct{}),
	}
	if c.QueueURL == "" {
		return nil, errors.New("sqscli: queue url is required")
	}
	if c.Logger == nil {
		c.Logger = logging.New()
	}

	if c.SQSClient == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("sqscli: load aws config: %w", err)
		}
		c.SQSClient = awssqs.NewFromConfig(cfg)
	}

	if c.ReplyQueueURL != "" {
		c.wg.Add(1)
		go c.listener()
	}

	return c, nil
}

// Close stops the reply listener. In-flight calls keep waiting until their
// own timeout.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
}

func (c *Client) listener() {
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.stopChan
		cancel()
	}()

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		output, err := c.SQSClient.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
			QueueUrl:              aws.String(c.ReplyQueueURL),
			MaxNumberOfMessages:   10,
			WaitTimeSeconds:       c.WaitTimeSeconds,
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			select {
			case <-c.stopChan:
				return
			default:
			}
			c.Logger.Warnf("[SQS] Receive from %s failed: %v", c.ReplyQueueURL, err)
			select {
			case <-c.stopChan:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, msg := range output.Messages {
			c.handleIncomingMessage(msg)
			// An undeleted reply is redelivered after its visibility timeout
			// and dropped then as it no longer matches a pending call.
			if _, err := c.SQSClient.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
				QueueUrl:      aws.String(c.ReplyQueueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				c.Logger.Warnf("[SQS] Delete reply %s failed: %v", aws.ToString(msg.MessageId), err)
			}
		}
	}
}

// handleIncomingMessage drops replies that are malformed or belong to no
// pending call, e.g. one that already timed out.
func (c *Client) handleIncomingMessage(msg types.Message) {
	if msg.Body == nil {
		return
	}
	attr, ok := msg.MessageAttributes[sqs.AttrCorrelationID]
	if !ok || attr.StringValue == nil {
		return
	}

	var rsp hello.Response
	if err := json.Unmarshal([]byte(*msg.Body), &rsp); err != nil {
		return
	}

	if ch, ok := c.pendingRequests.Load(*attr.StringValue); ok {
		select {
		case ch.(chan hello.Response) <- rsp:
		default:
		}
	}
}

// Send enqueues one event and returns the SQS message id.
func (c *Client) Send(ctx context.Context, event hello.Event) (string, error) {
	return c.send(ctx, event, nil)
}

// Call enqueues an event tagged with a fresh correlation id and waits for the
// matching reply.
func (c *Client) Call(ctx context.Context, event hello.Event) (hello.Response, error) {
	if c.ReplyQueueURL == "" {
		return hello.Response{}, ErrNoReplyQueue
	}

	correlationID := uuid.New().String()
	respChan := make(chan hello.Response, 1)
	c.pendingRequests.Store(correlationID, respChan)
	defer c.pendingRequests.Delete(correlationID)

	_, err := c.send(ctx, event, map[string]types.MessageAttributeValue{
		sqs.AttrReplyQueueURL: {
			DataType:    aws.String("String"),
			StringValue: aws.String(c.ReplyQueueURL),
		},
		sqs.AttrCorrelationID: {
			DataType:    aws.String("String"),
			StringValue: aws.String(correlationID),
		},
	})
	if err != nil {
		return hello.Response{}, err
	}

	timeout := c.DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case rsp := <-respChan:
		return rsp, nil
	case <-timer.C:
		return hello.Response{}, fmt.Errorf("sqscli: call %s: request timeout", correlationID)
	case <-ctx.Done():
		return hello.Response{}, ctx.Err()
	}
}

func (c *Client) send(ctx context.Context, event hello.Event, attrs map[string]types.MessageAttributeValue) (string, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("sqscli: encode event: %w", err)
	}

	out, err := c.SQSClient.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:          aws.String(c.QueueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("sqscli: send message: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
