package invoke

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aura-studio/lambda-hello/hello"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	CodecJSON  = "json"
	CodecProto = "proto"
)

// Codec converts between invocation payloads and handler values.
// Both directions are provided so clients and the engine share one wire format.
type Codec interface {
	EncodeEvent(event hello.Event) ([]byte, error)
	DecodeEvent(payload []byte) (hello.Event, error)
	EncodeResponse(rsp hello.Response) ([]byte, error)
	DecodeResponse(payload []byte) (hello.Response, error)
}

func CodecByName(name string) (Codec, error) {
	switch name {
	case CodecJSON, "":
		return JSONCodec{}, nil
	case CodecProto:
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("invoke: unrecognized codec: %q", name)
	}
}

// JSONCodec is the wire format of the Lambda runtime API.
type JSONCodec struct{}

func (JSONCodec) EncodeEvent(event hello.Event) ([]byte, error) {
	return json.Marshal(event)
}

// DecodeEvent treats an empty payload as a nil event.
func (JSONCodec) DecodeEvent(payload []byte) (hello.Event, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}
	var event any
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}

func (JSONCodec) EncodeResponse(rsp hello.Response) ([]byte, error) {
	return json.Marshal(rsp)
}

func (JSONCodec) DecodeResponse(payload []byte) (hello.Response, error) {
	var rsp hello.Response
	if err := json.Unmarshal(payload, &rsp); err != nil {
		return hello.Response{}, err
	}
	return rsp, nil
}

// ProtoCodec carries the event as a google.protobuf.Value and the response
// as a google.protobuf.Struct with statusCode and body fields.
type ProtoCodec struct{}

func (ProtoCodec) EncodeEvent(event hello.Event) ([]byte, error) {
	v, err := structpb.NewValue(event)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(v)
}

func (ProtoCodec) DecodeEvent(payload []byte) (hello.Event, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var v structpb.Value
	if err := proto.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return v.AsInterface(), nil
}

func (ProtoCodec) EncodeResponse(rsp hello.Response) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"statusCode": rsp.StatusCode,
		"body":       rsp.Body,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (ProtoCodec) DecodeResponse(payload []byte) (hello.Response, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(payload, &s); err != nil {
		return hello.Response{}, err
	}
	return hello.Response{
		StatusCode: int(s.GetFields()["statusCode"].GetNumberValue()),
		Body:       s.GetFields()["body"].GetStringValue(),
	}, nil
}
