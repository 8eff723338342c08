package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus/hooks/test"
)

// batchWithFailure is a batch of N items where item failIndex fails.
type batchWithFailure struct {
	batchSize int
	failIndex int
}

func genBatchWithFailure() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(2, 10),
		gen.IntRange(0, 9),
	).Map(func(values []interface{}) batchWithFailure {
		batchSize := values[0].(int)
		return batchWithFailure{batchSize: batchSize, failIndex: values[1].(int) % batchSize}
	})
}

// trackingHandler records the index of every item it sees and fails on one.
type trackingHandler struct {
	processed []int
	failAt    int
}

func (h *trackingHandler) Handle(ctx context.Context, ev hello.Event) (hello.Response, error) {
	idx := int(ev.(map[string]any)["i"].(float64))
	h.processed = append(h.processed, idx)
	if idx == h.failAt {
		panic(fmt.Sprintf("intentional failure at item %d", idx))
	}
	return hello.Response{StatusCode: 200, Body: hello.Body}, nil
}

func batchPayload(t testing.TB, n int) []byte {
	items := make([]hello.Event, n)
	for i := range items {
		items[i] = map[string]any{"i": i}
	}
	b, err := EncodeBatch(invoke.CodecJSON, items)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func runBatch(t *testing.T, mode RunMode, params batchWithFailure) (*trackingHandler, error) {
	h := &trackingHandler{failAt: params.failIndex}
	logger, _ := test.NewNullLogger()
	e := NewEngine(h.Handle, WithRunMode(mode), WithLogger(logger))
	_, err := e.Invoke(context.Background(), batchPayload(t, params.batchSize))
	return h, err
}

func TestRunModes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("strict stops at the failing item", prop.ForAll(
		func(p batchWithFailure) bool {
			h, err := runBatch(t, RunModeStrict, p)
			return err != nil && len(h.processed) == p.failIndex+1
		},
		genBatchWithFailure(),
	))

	properties.Property("batch fails the invocation at the failing item", prop.ForAll(
		func(p batchWithFailure) bool {
			h, err := runBatch(t, RunModeBatch, p)
			return err != nil && len(h.processed) == p.failIndex+1
		},
		genBatchWithFailure(),
	))

	properties.Property("partial runs every item and succeeds", prop.ForAll(
		func(p batchWithFailure) bool {
			h, err := runBatch(t, RunModePartial, p)
			return err == nil && len(h.processed) == p.batchSize
		},
		genBatchWithFailure(),
	))

	properties.Property("reentrant runs every item and reports the failure", prop.ForAll(
		func(p batchWithFailure) bool {
			h, err := runBatch(t, RunModeReentrant, p)
			return err != nil && len(h.processed) == p.batchSize &&
				strings.Contains(err.Error(), fmt.Sprintf("item %d", p.failIndex))
		},
		genBatchWithFailure(),
	))

	properties.TestingRun(t)
}

func TestEngine_HelloBatch(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := hello.New(hello.WithLogger(logger))
	e := NewEngine(h.Handle, WithLogger(logger))

	out, err := e.Invoke(context.Background(), []byte(`{"items":[{"a":1},null,"x"]}`))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out != nil {
		t.Errorf("payload = %q, want none", out)
	}

	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("log entries = %d, want 3", len(entries))
	}
	want := []string{`Received event: {"a":1}`, `Received event: null`, `Received event: "x"`}
	for i, entry := range entries {
		if entry.Message != want[i] {
			t.Errorf("entry %d = %q, want %q", i, entry.Message, want[i])
		}
	}
}

func TestEngine_ProtoBatch(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := hello.New(hello.WithLogger(logger))
	e := NewEngine(h.Handle, WithLogger(logger), WithCodec(invoke.CodecProto))

	payload, err := EncodeBatch(invoke.CodecProto, []hello.Event{map[string]any{"k": "v"}, 2.5})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Invoke(context.Background(), payload); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if n := len(hook.AllEntries()); n != 2 {
		t.Errorf("log entries = %d, want 2", n)
	}
}

func TestEngine_InvalidPayload(t *testing.T) {
	e := NewEngine(func(ctx context.Context, ev hello.Event) (hello.Response, error) {
		t.Error("handler must not run")
		return hello.Response{}, nil
	})
	if _, err := e.Invoke(context.Background(), []byte(`{"items":`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestEngine_EmptyPayload(t *testing.T) {
	e := NewEngine(func(ctx context.Context, ev hello.Event) (hello.Response, error) {
		t.Error("handler must not run")
		return hello.Response{}, nil
	})
	if _, err := e.Invoke(context.Background(), nil); err != nil {
		t.Errorf("Invoke(nil) error = %v", err)
	}
}

func TestEngine_HandlerError(t *testing.T) {
	e := NewEngine(func(ctx context.Context, ev hello.Event) (hello.Response, error) {
		return hello.Response{}, errors.New("nope")
	})
	_, err := e.Invoke(context.Background(), []byte(`{"items":[1]}`))
	if err == nil || !strings.Contains(err.Error(), "event: item 0: nope") {
		t.Errorf("error = %v", err)
	}
}

func TestEngine_Stopped(t *testing.T) {
	e := NewEngine(func(ctx context.Context, ev hello.Event) (hello.Response, error) {
		return hello.Response{}, nil
	})
	e.Stop()
	if _, err := e.Invoke(context.Background(), []byte(`{"items":[]}`)); !errors.Is(err, ErrStopped) {
		t.Errorf("error = %v, want ErrStopped", err)
	}
	e.Start()
	if _, err := e.Invoke(context.Background(), []byte(`{"items":[]}`)); err != nil {
		t.Errorf("error after Start = %v", err)
	}
}

func TestWithConfig(t *testing.T) {
	o := NewOptions(WithConfig([]byte("debug: true\nrun: reentrant\ncodec: proto\n")))
	if !o.DebugMode || o.RunMode != RunModeReentrant || o.Codec != invoke.CodecProto {
		t.Errorf("options = %+v", o)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown run mode")
		}
	}()
	NewOptions(WithConfig([]byte("run: sometimes\n")))
}
