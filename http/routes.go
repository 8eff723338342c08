package http

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// DefaultPath is the catch-all route served for requests no other route matches.
const DefaultPath = "$default"

const MethodAny = "ANY"

type Route struct {
	Method string `json:"method" validate:"required,oneof=GET POST PUT DELETE PATCH OPTIONS HEAD ANY"`
	Path   string `json:"path" validate:"required,routepath"`
	Lambda string `json:"lambda" validate:"required"`
}

// RouteKey is the API Gateway route key: "$default" or "<METHOD> <path>".
func (r Route) RouteKey() string {
	if r.Path == DefaultPath {
		return DefaultPath
	}
	return r.Method + " " + r.Path
}

var (
	greedyParam   = regexp.MustCompile(`\{([^+}]+)\+\}`)
	pathParam     = regexp.MustCompile(`\{([^}]+)\}`)
	greedySegment = regexp.MustCompile(`^\{([^+}]+)\+\}$`)
	paramSegment  = regexp.MustCompile(`^\{([^+}]+)\}$`)
)

// Allows reports whether the route answers the request method.
func (r Route) Allows(method string) bool {
	return r.Method == MethodAny || r.Method == method
}

// IsGreedy reports whether the last path segment is a {name+} parameter.
// Such routes are matched by MatchGreedy instead of gin's tree, which
// rejects a catch-all next to static siblings.
func (r Route) IsGreedy() bool {
	segs := strings.Split(r.Path, "/")
	return greedySegment.MatchString(segs[len(segs)-1])
}

// MatchGreedy matches path against a greedy route. Leading segments match
// literally or bind {name}; the greedy segment binds the non-empty rest.
func (r Route) MatchGreedy(path string) (gin.Params, bool) {
	tmpl := strings.Split(strings.Trim(r.Path, "/"), "/")
	segs := strings.Split(strings.Trim(path, "/"), "/")
	last := len(tmpl) - 1

	greedy := greedySegment.FindStringSubmatch(tmpl[last])
	if greedy == nil || len(segs) <= last {
		return nil, false
	}

	var params gin.Params
	for i, t := range tmpl[:last] {
		if m := paramSegment.FindStringSubmatch(t); m != nil {
			if segs[i] == "" {
				return nil, false
			}
			params = append(params, gin.Param{Key: m[1], Value: segs[i]})
			continue
		}
		if t != segs[i] {
			return nil, false
		}
	}

	rest := strings.Join(segs[last:], "/")
	if rest == "" {
		return nil, false
	}
	return append(params, gin.Param{Key: greedy[1], Value: rest}), true
}

// GinPath converts an API Gateway path template to gin syntax:
// {name} becomes :name and {name+} becomes *name.
func (r Route) GinPath() string {
	p := greedyParam.ReplaceAllString(r.Path, "*$1")
	return pathParam.ReplaceAllString(p, ":$1")
}

var routeValidator = newRouteValidator()

func newRouteValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("routepath", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return p == DefaultPath || strings.HasPrefix(p, "/")
	})
	return v
}

// ReadRoutesFile reads and validates a JSON array of route entries.
func ReadRoutesFile(path string) ([]Route, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		resolved = path
	}
	b, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("http: read routes file: %w", err)
	}
	return ParseRoutes(b, resolved)
}

// ParseRoutes validates route entries. source names the origin in errors.
func ParseRoutes(b []byte, source string) ([]Route, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("http: failed to parse routes file as JSON: %s", source)
	}
	doc := gjson.ParseBytes(b)
	if !doc.IsArray() {
		return nil, fmt.Errorf("http: routes file must contain an array: %s", source)
	}

	var routes []Route
	for i, item := range doc.Array() {
		if !item.IsObject() {
			return nil, fmt.Errorf("http: invalid route entry at index %d in %s", i, source)
		}
		route := Route{
			Method: stringField(item, "method"),
			Path:   stringField(item, "path"),
			Lambda: stringField(item, "lambda"),
		}
		route, err := validateRoute(route, i, source)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// stringField returns the trimmed value of a string field; other types count as missing.
func stringField(item gjson.Result, name string) string {
	v := item.Get(name)
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.Str)
}

func validateRoute(route Route, index int, source string) (Route, error) {
	raw := route.Method
	route.Method = strings.ToUpper(strings.TrimSpace(route.Method))
	route.Path = strings.TrimSpace(route.Path)
	route.Lambda = strings.TrimSpace(route.Lambda)

	err := routeValidator.Struct(route)
	if err == nil {
		return route, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return route, fmt.Errorf("http: route entry at index %d in %s: %w", index, source, err)
	}

	fe := fieldErrs[0]
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return route, fmt.Errorf("http: route entry at index %d is missing %q in %s", index, name, source)
	case "oneof":
		return route, fmt.Errorf("http: route entry at index %d has unsupported method %q in %s", index, raw, source)
	case "routepath":
		return route, fmt.Errorf("http: route entry at index %d must start with \"/\" (found %q) in %s", index, route.Path, source)
	}
	return route, fmt.Errorf("http: route entry at index %d in %s: %w", index, source, err)
}
