package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions}

// Result is a function response reduced to what the gateway writes back.
type Result struct {
	StatusCode int
	Headers    map[string]string
	// Body is nil when the function returned no body.
	Body *string
}

func (e *Engine) InstallHandlers() error {
	e.Use(e.HealthCheck)

	for _, route := range e.routes {
		switch {
		case route.Path == DefaultPath:
			e.defaultRoutes = append(e.defaultRoutes, route)
		case route.IsGreedy():
			e.greedyRoutes = append(e.greedyRoutes, route)
		default:
			if err := e.register(route); err != nil {
				return err
			}
		}
		e.Logger.Infof("Registered route %s %s -> %s", route.Method, route.Path, route.Lambda)
	}

	// Longer templates are more specific and are tried first.
	sort.SliceStable(e.greedyRoutes, func(i, j int) bool {
		return strings.Count(e.greedyRoutes[i].Path, "/") > strings.Count(e.greedyRoutes[j].Path, "/")
	})

	e.NoRoute(e.PageNotFound)
	return nil
}

func (e *Engine) HandleAllMethods(relativePath string, handlers ...gin.HandlerFunc) {
	for _, method := range methods {
		e.Handle(method, relativePath, handlers...)
	}
}

// register reports gin's route conflicts as errors instead of panics.
func (e *Engine) register(route Route) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("http: register route %s %s: %v", route.Method, route.Path, r)
		}
	}()

	handler := e.routeHandler(route)
	if route.Method == MethodAny {
		e.HandleAllMethods(route.GinPath(), handler)
		return nil
	}
	e.Handle(route.Method, route.GinPath(), handler)
	return nil
}

// HealthCheck answers /health-check ahead of routing, so it also works
// next to a root catch-all route.
func (e *Engine) HealthCheck(c *gin.Context) {
	if c.Request.URL.Path != "/health-check" {
		c.Next()
		return
	}
	c.String(http.StatusOK, "OK")
	c.Abort()
}

// PageNotFound serves requests gin's tree did not match: greedy routes
// first, then $default routes for the method, then a 404.
func (e *Engine) PageNotFound(c *gin.Context) {
	method := c.Request.Method
	for _, route := range e.greedyRoutes {
		if !route.Allows(method) {
			continue
		}
		if params, ok := route.MatchGreedy(c.Request.URL.Path); ok {
			c.Params = params
			e.routeHandler(route)(c)
			return
		}
	}
	for _, route := range e.defaultRoutes {
		if route.Allows(method) {
			e.routeHandler(route)(c)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	c.Abort()
}

func (e *Engine) routeHandler(route Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := e.invoke(c, route)
		if err != nil {
			e.Logger.Errorf("Error invoking function %s: %v", route.Lambda, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Lambda invocation failed",
				"detail":  err.Error(),
			})
			c.Abort()
			return
		}

		for k, v := range result.Headers {
			c.Header(k, v)
		}
		if result.Body == nil {
			c.Status(result.StatusCode)
			c.Writer.WriteHeaderNow()
			c.Abort()
			return
		}
		contentType := result.Headers["content-type"]
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		c.Data(result.StatusCode, contentType, []byte(*result.Body))
		c.Abort()
	}
}

func (e *Engine) invoke(c *gin.Context, route Route) (Result, error) {
	fn, ok := e.functions[route.Lambda]
	if !ok {
		return Result{}, fmt.Errorf("function %q is not defined in local configs", route.Lambda)
	}
	handler, ok := e.Handlers[fn.Handler]
	if !ok {
		return Result{}, fmt.Errorf("no handler registered for %q", fn.Handler)
	}

	requestID := uuid.New().String()
	payload, err := buildEvent(c, route, requestID, time.Now())
	if err != nil {
		return Result{}, fmt.Errorf("build event: %w", err)
	}
	if e.DebugMode {
		e.Logger.Debugf("[HTTP] Request: %s %s %s", fn.Name, requestID, payload)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), fn.TimeoutDuration())
	defer cancel()
	ctx = lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{
		AwsRequestID:       requestID,
		InvokedFunctionArn: "arn:aws:lambda:local:000000000000:function:" + fn.Name,
	})

	type reply struct {
		payload []byte
		err     error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		out, err := handler.Invoke(ctx, payload)
		done <- reply{payload: out, err: err}
	}()

	var out reply
	select {
	case out = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("task timed out after %d seconds", fn.Timeout)
		}
		return Result{}, ctx.Err()
	}
	if out.err != nil {
		return Result{}, out.err
	}
	if e.DebugMode {
		e.Logger.Debugf("[HTTP] Response: %s %s %s", fn.Name, requestID, out.payload)
	}
	return normalizeResult(out.payload)
}

// normalizeResult requires a JSON object. A missing or non-numeric statusCode
// means 200 and a non-string body is sent as its JSON encoding.
func normalizeResult(payload []byte) (Result, error) {
	if !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		return Result{}, errors.New("function must return an object with statusCode/body fields")
	}

	body := gjson.GetBytes(payload, "body")
	if body.Exists() && body.Type != gjson.String {
		var err error
		payload, err = sjson.SetBytes(payload, "body", body.Raw)
		if err != nil {
			return Result{}, err
		}
	}
	doc := gjson.ParseBytes(payload)

	result := Result{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{},
	}
	if sc := doc.Get("statusCode"); sc.Type == gjson.Number {
		result.StatusCode = int(sc.Int())
		if result.StatusCode < 100 || result.StatusCode > 999 {
			return Result{}, fmt.Errorf("invalid statusCode %d", result.StatusCode)
		}
	}
	doc.Get("headers").ForEach(func(key, value gjson.Result) bool {
		name := strings.ToLower(key.String())
		switch {
		case value.IsArray():
			var parts []string
			for _, v := range value.Array() {
				parts = append(parts, v.String())
			}
			result.Headers[name] = strings.Join(parts, ", ")
		case value.Type == gjson.Null:
		default:
			result.Headers[name] = value.String()
		}
		return true
	})
	if b := doc.Get("body"); b.Exists() {
		s := b.String()
		result.Body = &s
	}
	return result, nil
}
