// Package hello implements the function served by every mode of this module.
// It logs the event it receives and answers with a fixed greeting.
package hello

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aura-studio/lambda-hello/logging"
)

const (
	StatusCode = http.StatusOK
	Body       = "Hello from Lambda!"
	LogLabel   = "Received event:"
)

// Event is the payload delivered by the invoking platform. It is logged, never inspected.
type Event = any

// Response is the value returned to the platform on every invocation.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// HandlerFunc is the shape the serving modes accept.
// The runtime context arrives through ctx.
type HandlerFunc func(ctx context.Context, event Event) (Response, error)

type Handler struct {
	*Options
}

func New(opts ...Option) *Handler {
	h := &Handler{
		Options: NewOptions(opts...),
	}
	if h.Logger == nil {
		h.Logger = logging.New()
	}
	return h
}

// Handle logs the event and returns the fixed response. The context is
// accepted for runtime metadata but not read, and the error is always nil.
func (h *Handler) Handle(ctx context.Context, event Event) (Response, error) {
	h.Logger.Info(LogLabel + " " + Format(event))

	return Response{
		StatusCode: StatusCode,
		Body:       Body,
	}, nil
}

// Format renders an event on a single line as compact JSON. Values JSON
// cannot encode (channels, funcs, cyclic data) fall back to fmt's %v form,
// quoted so embedded newlines stay escaped.
func Format(event Event) string {
	b, err := json.Marshal(event)
	if err != nil {
		return strconv.Quote(fmt.Sprintf("%v", event))
	}
	return string(b)
}
