// Package client sends requests to a local gateway started by the http
// package and decodes its error replies.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var ErrRouteNotFound = errors.New("client: route not found")

// InvocationError is the gateway's 500 reply when a function fails.
type InvocationError struct {
	Detail string
}

func (e *InvocationError) Error() string {
	return "client: lambda invocation failed: " + e.Detail
}

// Request is one call through the gateway. Headers are added on top of the
// client defaults.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    []byte
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Get returns the value at a gjson path of a JSON body.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Failure reports the gateway's own error replies: ErrRouteNotFound for an
// unmatched route and *InvocationError for a failed function. Any other
// response, including a function's own 4xx/5xx, is nil.
func (r *Response) Failure() error {
	if !gjson.ValidBytes(r.Body) {
		return nil
	}
	msg := r.Get("message").String()
	switch {
	case r.StatusCode == http.StatusNotFound && msg == "Route not found":
		return ErrRouteNotFound
	case r.StatusCode == http.StatusInternalServerError && msg == "Lambda invocation failed":
		return &InvocationError{Detail: r.Get("detail").String()}
	}
	return nil
}

type Client struct {
	*Options
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		Options: NewOptions(opts...),
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// HealthCheck asks the gateway's /health-check endpoint whether it is serving.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.Get(ctx, "/health-check")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(resp.Body)) != "OK" {
		return fmt.Errorf("client: health check returned %d", resp.StatusCode)
	}
	return nil
}

// Do sends req. Gateway error replies are returned as responses; use
// Response.Failure to tell them apart from function output.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	timeout := c.DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	for key, value := range c.Headers {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("client: %s %s: request timeout", method, req.Path)
		}
		return nil, fmt.Errorf("client: %s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}
