package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/invoke"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Batch is the payload of one asynchronous invocation. In JSON it is
// {"items":[...]}; in proto it is a structpb.ListValue of the items.
type Batch struct {
	Items []hello.Event `json:"items"`
}

func EncodeBatch(codec string, items []hello.Event) ([]byte, error) {
	switch codec {
	case invoke.CodecJSON, "":
		if items == nil {
			items = []hello.Event{}
		}
		return json.Marshal(Batch{Items: items})
	case invoke.CodecProto:
		list, err := structpb.NewList(items)
		if err != nil {
			return nil, fmt.Errorf("event: encode batch: %w", err)
		}
		return proto.Marshal(list)
	default:
		return nil, fmt.Errorf("event: unrecognized codec: %q", codec)
	}
}

// DecodeBatch treats an empty payload as an empty batch.
func DecodeBatch(codec string, payload []byte) ([]hello.Event, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}
	switch codec {
	case invoke.CodecJSON, "":
		var batch Batch
		if err := json.Unmarshal(payload, &batch); err != nil {
			return nil, fmt.Errorf("event: invalid json payload: %w", err)
		}
		return batch.Items, nil
	case invoke.CodecProto:
		var list structpb.ListValue
		if err := proto.Unmarshal(payload, &list); err != nil {
			return nil, fmt.Errorf("event: invalid protobuf payload: %w", err)
		}
		return list.AsSlice(), nil
	default:
		return nil, fmt.Errorf("event: unrecognized codec: %q", codec)
	}
}
