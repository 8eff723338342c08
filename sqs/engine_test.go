package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus/hooks/test"
)

type mockSQSClient struct {
	mu      sync.Mutex
	sent    []*awssqs.SendMessageInput
	sendErr error
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, params)
	return &awssqs.SendMessageOutput{MessageId: aws.String("reply-id")}, nil
}

func (m *mockSQSClient) ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error) {
	return &awssqs.ReceiveMessageOutput{}, nil
}

func (m *mockSQSClient) DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error) {
	return &awssqs.DeleteMessageOutput{}, nil
}

func newHelloEngine(opts ...Option) (*Engine, *test.Hook) {
	logger, hook := test.NewNullLogger()
	h := hello.New(hello.WithLogger(logger))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewEngine(h.Handle, opts...), hook
}

func record(id, body string, attrs map[string]string) events.SQSMessage {
	msg := events.SQSMessage{MessageId: id, Body: body}
	if len(attrs) > 0 {
		msg.MessageAttributes = map[string]events.SQSMessageAttribute{}
		for k, v := range attrs {
			v := v
			msg.MessageAttributes[k] = events.SQSMessageAttribute{DataType: "String", StringValue: &v}
		}
	}
	return msg
}

func TestEngine_Invoke(t *testing.T) {
	e, hook := newHelloEngine()

	ev := events.SQSEvent{Records: []events.SQSMessage{
		record("m1", `{"key":"value"}`, nil),
		record("m2", ``, nil),
	}}

	resp, err := e.Invoke(context.Background(), ev)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(resp.BatchItemFailures) != 0 {
		t.Errorf("BatchItemFailures = %v", resp.BatchItemFailures)
	}

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	if entries[0].Message != `Received event: {"key":"value"}` {
		t.Errorf("Message = %q", entries[0].Message)
	}
	if entries[1].Message != `Received event: null` {
		t.Errorf("Message = %q", entries[1].Message)
	}
}

func TestEngine_InvalidBodyFailsBatch(t *testing.T) {
	e, _ := newHelloEngine()

	ev := events.SQSEvent{Records: []events.SQSMessage{
		record("m1", `{"ok":true}`, nil),
		record("m2", `{broken`, nil),
	}}

	_, err := e.Invoke(context.Background(), ev)
	if err == nil || !strings.Contains(err.Error(), "batch item failures: 1") {
		t.Errorf("Invoke() error = %v", err)
	}
}

func TestEngine_PartialMode(t *testing.T) {
	e, hook := newHelloEngine(WithPartialMode(true))

	ev := events.SQSEvent{Records: []events.SQSMessage{
		record("m1", `{broken`, nil),
		record("m2", `{}`, nil),
		record("m3", `[1,2`, nil),
	}}

	resp, err := e.Invoke(context.Background(), ev)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	var ids []string
	for _, f := range resp.BatchItemFailures {
		ids = append(ids, f.ItemIdentifier)
	}
	if strings.Join(ids, ",") != "m1,m3" {
		t.Errorf("failures = %v, want m1,m3", ids)
	}
	if n := len(hook.AllEntries()); n != 1 {
		t.Errorf("log entries = %d, want 1", n)
	}
}

func TestEngine_SuspendMode(t *testing.T) {
	e, hook := newHelloEngine(WithSuspendMode(true), WithPartialMode(true))

	ev := events.SQSEvent{Records: []events.SQSMessage{
		record("m1", `{broken`, nil),
		record("m2", `{}`, nil),
	}}

	_, err := e.Invoke(context.Background(), ev)
	if err == nil || !strings.Contains(err.Error(), "message m1") {
		t.Errorf("Invoke() error = %v", err)
	}
	if n := len(hook.AllEntries()); n != 0 {
		t.Errorf("log entries = %d, want 0 (m2 must not run)", n)
	}
}

func TestEngine_Stopped(t *testing.T) {
	e, hook := newHelloEngine(WithPartialMode(true))
	e.Stop()

	resp, err := e.Invoke(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		record("m1", `{}`, nil),
		record("m2", `{}`, nil),
	}})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(resp.BatchItemFailures) != 2 {
		t.Errorf("failures = %d, want 2", len(resp.BatchItemFailures))
	}
	if n := len(hook.AllEntries()); n != 0 {
		t.Errorf("log entries = %d, want 0", n)
	}

	e.Start()
	if !e.IsRunning() {
		t.Error("engine should run after Start")
	}
}

func TestEngine_HandlerPanic(t *testing.T) {
	e := NewEngine(func(ctx context.Context, event hello.Event) (hello.Response, error) {
		panic("boom")
	}, WithPartialMode(true))

	resp, err := e.Invoke(context.Background(), events.SQSEvent{Records: []events.SQSMessage{record("m1", `{}`, nil)}})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(resp.BatchItemFailures) != 1 {
		t.Errorf("failures = %v", resp.BatchItemFailures)
	}
}

func TestEngine_Reply(t *testing.T) {
	mock := &mockSQSClient{}
	e, _ := newHelloEngine(WithReplyMode(true), WithSQSClient(mock), WithReplyQueueURL("https://sqs/default"))

	ev := events.SQSEvent{Records: []events.SQSMessage{
		record("m1", `{}`, map[string]string{AttrReplyQueueURL: "https://sqs/reply", AttrCorrelationID: "c-1"}),
		record("m2", `{}`, nil),
	}}

	if _, err := e.Invoke(context.Background(), ev); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(mock.sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(mock.sent))
	}

	first := mock.sent[0]
	if aws.ToString(first.QueueUrl) != "https://sqs/reply" {
		t.Errorf("QueueUrl = %q", aws.ToString(first.QueueUrl))
	}
	if got := aws.ToString(first.MessageAttributes[AttrCorrelationID].StringValue); got != "c-1" {
		t.Errorf("CorrelationId = %q, want c-1", got)
	}

	var rsp hello.Response
	if err := json.Unmarshal([]byte(aws.ToString(first.MessageBody)), &rsp); err != nil {
		t.Fatal(err)
	}
	if rsp.StatusCode != 200 || rsp.Body != hello.Body {
		t.Errorf("reply = %+v", rsp)
	}

	second := mock.sent[1]
	if aws.ToString(second.QueueUrl) != "https://sqs/default" {
		t.Errorf("QueueUrl = %q", aws.ToString(second.QueueUrl))
	}
	if got := aws.ToString(second.MessageAttributes[AttrCorrelationID].StringValue); got != "m2" {
		t.Errorf("CorrelationId = %q, want message id", got)
	}
}

func TestEngine_ReplyError(t *testing.T) {
	mock := &mockSQSClient{sendErr: errors.New("throttled")}
	e, _ := newHelloEngine(WithReplyMode(true), WithSQSClient(mock), WithPartialMode(true))

	resp, err := e.Invoke(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		record("m1", `{}`, map[string]string{AttrReplyQueueURL: "https://sqs/reply"}),
		record("m2", `{}`, nil),
	}})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "m1" {
		t.Errorf("failures = %v, want only m1", resp.BatchItemFailures)
	}
}

func TestWithConfig(t *testing.T) {
	yamlContent := `
debug: true
reply: true
replyQueueUrl: https://sqs/replies
suspend: false
partial: true
`
	o := NewOptions(WithConfig([]byte(yamlContent)))
	if !o.DebugMode || !o.ReplyMode || o.SuspendMode || !o.PartialMode {
		t.Errorf("options = %+v", o)
	}
	if o.ReplyQueueURL != "https://sqs/replies" {
		t.Errorf("ReplyQueueURL = %q", o.ReplyQueueURL)
	}
}
