// Package sqs serves the handler for SQS-triggered invocations, optionally
// replying on a second queue.
package sqs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/logging"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Message attributes understood by the engine and set by sqscli.
const (
	AttrReplyQueueURL = "ReplyQueueUrl"
	AttrCorrelationID = "CorrelationId"
)

type SQSClient interface {
	SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
}

type Engine struct {
	*Options
	handler   hello.HandlerFunc
	running   atomic.Int32
	sqsClient SQSClient
}

// NewEngine creates an engine in running state. In reply mode without an
// injected client it loads the default AWS configuration and panics on failure.
func NewEngine(handler hello.HandlerFunc, opts ...Option) *Engine {
	e := &Engine{
		Options: NewOptions(opts...),
		handler: handler,
	}
	if e.Logger == nil {
		e.Logger = logging.New()
	}

	if e.Options.SQSClient != nil {
		e.sqsClient = e.Options.SQSClient
	} else if e.ReplyMode {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			panic(fmt.Errorf("sqs: load aws config: %w", err))
		}
		e.sqsClient = awssqs.NewFromConfig(cfg)
	}

	e.running.Store(1)
	return e
}

func (e *Engine) Start() {
	e.running.Store(1)
}

func (e *Engine) Stop() {
	e.running.Store(0)
}

func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

// Invoke handles one SQS batch. In partial mode failures are reported per
// record; otherwise any failure fails the batch so SQS retries all of it.
func (e *Engine) Invoke(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	resp, err := e.handleMessages(ctx, ev)
	if err != nil {
		return resp, err
	}
	if e.PartialMode {
		return resp, nil
	}
	if len(resp.BatchItemFailures) > 0 {
		return events.SQSEventResponse{}, fmt.Errorf("sqs: batch item failures: %d", len(resp.BatchItemFailures))
	}
	return events.SQSEventResponse{}, nil
}

func (e *Engine) handleMessages(ctx context.Context, ev events.SQSEvent) (resp events.SQSEventResponse, err error) {
	fail := func(msg events.SQSMessage, cause error) error {
		if e.DebugMode {
			e.Logger.Infof("[SQS] Message %s failed: %v", msg.MessageId, cause)
		}
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
		if e.SuspendMode {
			return fmt.Errorf("sqs: message %s: %w", msg.MessageId, cause)
		}
		return nil
	}

	for _, msg := range ev.Records {
		if !e.IsRunning() {
			if err := fail(msg, fmt.Errorf("engine is stopped")); err != nil {
				return resp, err
			}
			continue
		}

		event, decodeErr := decodeBody(msg.Body)
		if decodeErr != nil {
			if err := fail(msg, fmt.Errorf("decode body: %w", decodeErr)); err != nil {
				return resp, err
			}
			continue
		}

		if e.DebugMode {
			e.Logger.Infof("[SQS] Request: %s %s", msg.MessageId, hello.Format(event))
		}

		rsp, callErr := e.call(ctx, event)
		if callErr != nil {
			if err := fail(msg, callErr); err != nil {
				return resp, err
			}
			continue
		}

		if e.DebugMode {
			e.Logger.Infof("[SQS] Response: %s %d %s", msg.MessageId, rsp.StatusCode, rsp.Body)
		}

		if !e.ReplyMode {
			continue
		}
		if replyErr := e.reply(ctx, msg, rsp); replyErr != nil {
			if err := fail(msg, fmt.Errorf("reply: %w", replyErr)); err != nil {
				return resp, err
			}
		}
	}

	return resp, nil
}

func (e *Engine) call(ctx context.Context, event hello.Event) (rsp hello.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.handler(ctx, event)
}

// reply is a no-op when neither the message nor the options name a reply queue.
func (e *Engine) reply(ctx context.Context, msg events.SQSMessage, rsp hello.Response) error {
	queueURL := attribute(msg, AttrReplyQueueURL)
	if queueURL == "" {
		queueURL = e.ReplyQueueURL
	}
	if queueURL == "" {
		return nil
	}
	if e.sqsClient == nil {
		return fmt.Errorf("no sqs client configured")
	}

	correlationID := attribute(msg, AttrCorrelationID)
	if correlationID == "" {
		correlationID = msg.MessageId
	}

	body, err := json.Marshal(rsp)
	if err != nil {
		return err
	}

	_, err = e.sqsClient.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			AttrCorrelationID: {
				DataType:    aws.String("String"),
				StringValue: aws.String(correlationID),
			},
		},
	})
	return err
}

func attribute(msg events.SQSMessage, name string) string {
	if a, ok := msg.MessageAttributes[name]; ok && a.StringValue != nil {
		return *a.StringValue
	}
	return ""
}

// decodeBody reads a JSON event from a record body; an empty body is a nil event.
func decodeBody(body string) (hello.Event, error) {
	b := bytes.TrimSpace([]byte(body))
	if len(b) == 0 {
		return nil, nil
	}
	var event any
	if err := json.Unmarshal(b, &event); err != nil {
		return nil, err
	}
	return event, nil
}
