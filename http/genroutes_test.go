package http

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// appliedPlan has every id known, as after an apply.
const appliedPlan = `{
  "values": {"root_module": {
    "resources": [
      {"address": "aws_lambda_function.hello", "type": "aws_lambda_function", "name": "hello",
       "values": {"function_name": "hello-prod"}},
      {"address": "aws_apigatewayv2_integration.hello", "type": "aws_apigatewayv2_integration", "name": "hello",
       "values": {"id": "abc123",
         "integration_uri": "arn:aws:apigateway:us-east-1:lambda:path/2015-03-31/functions/arn:aws:lambda:us-east-1:123:function:hello-prod/invocations"}},
      {"address": "aws_apigatewayv2_route.get", "type": "aws_apigatewayv2_route", "name": "get",
       "values": {"route_key": "GET /hello", "target": "integrations/abc123"}},
      {"address": "aws_apigatewayv2_route.default", "type": "aws_apigatewayv2_route", "name": "default",
       "values": {"route_key": "$default", "target": "integrations/abc123"}}
    ]
  }}
}`

// pendingPlan has unknown ids and a module; only configuration references
// tie routes to functions.
const pendingPlan = `{
  "planned_values": {"root_module": {
    "child_modules": [{
      "address": "module.api",
      "resources": [
        {"address": "module.api.aws_lambda_function.echo", "type": "aws_lambda_function", "name": "echo",
         "values": {"function_name": "echo-dev"}},
        {"address": "module.api.aws_apigatewayv2_integration.echo", "type": "aws_apigatewayv2_integration", "name": "echo",
         "values": {}},
        {"address": "module.api.aws_apigatewayv2_route.proxy", "type": "aws_apigatewayv2_route", "name": "proxy",
         "values": {"route_key": "ANY /echo/{proxy+}"}}
      ]
    }]
  }},
  "configuration": {"root_module": {"module_calls": {"api": {"module": {"resources": [
    {"address": "aws_apigatewayv2_integration.echo", "type": "aws_apigatewayv2_integration", "name": "echo",
     "expressions": {"integration_uri": {"references": ["aws_lambda_function.echo.invoke_arn", "aws_lambda_function.echo"]}}},
    {"address": "aws_apigatewayv2_route.proxy", "type": "aws_apigatewayv2_route", "name": "proxy",
     "expressions": {"target": {"references": ["aws_apigatewayv2_integration.echo.id", "aws_apigatewayv2_integration.echo"]}}}
  ]}}}}}
}`

func TestGenerateRoutes(t *testing.T) {
	tests := []struct {
		name string
		plan string
		want []Route
	}{
		{"applied", appliedPlan, []Route{
			{Method: "GET", Path: "/hello", Lambda: "hello-prod"},
			{Method: MethodAny, Path: DefaultPath, Lambda: "hello-prod"},
		}},
		{"pending with module", pendingPlan, []Route{
			{Method: MethodAny, Path: "/echo/{proxy+}", Lambda: "echo-dev"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes, err := GenerateRoutes([]byte(tt.plan))
			if err != nil {
				t.Fatalf("GenerateRoutes() error = %v", err)
			}
			if !reflect.DeepEqual(routes, tt.want) {
				t.Errorf("routes = %+v, want %+v", routes, tt.want)
			}
		})
	}
}

func TestGenerateRoutes_Errors(t *testing.T) {
	tests := []struct {
		name string
		plan string
		want string
	}{
		{"invalid json", `{`, "not valid JSON"},
		{"no resources", `{"values": {"root_module": {}}}`, "no resources found"},
		{"no routes", `{"values": {"root_module": {"resources": [
			{"type": "aws_lambda_function", "name": "a", "values": {"function_name": "a"}}]}}}`,
			"no aws_apigatewayv2_route resources"},
		{"missing route_key", `{"values": {"root_module": {"resources": [
			{"address": "aws_apigatewayv2_route.x", "type": "aws_apigatewayv2_route", "name": "x", "values": {}}]}}}`,
			"aws_apigatewayv2_route.x is missing route_key"},
		{"bad route_key", `{"values": {"root_module": {"resources": [
			{"type": "aws_apigatewayv2_route", "name": "x", "values": {"route_key": "GET hello"}}]}}}`,
			`unsupported route_key "GET hello"`},
		{"unknown integration", `{"values": {"root_module": {"resources": [
			{"type": "aws_apigatewayv2_route", "name": "x", "values": {"route_key": "GET /x", "target": "integrations/zzz"}}]}}}`,
			`unable to find a Lambda integration for route "GET /x"`},
		{"integration without function", `{"values": {"root_module": {"resources": [
			{"address": "aws_apigatewayv2_integration.i", "type": "aws_apigatewayv2_integration", "name": "i",
			 "values": {"integration_uri": "https://example.com"}}]}}}`,
			"integration aws_apigatewayv2_integration.i"},
		{"unsupported method", `{"values": {"root_module": {"resources": [
			{"type": "aws_apigatewayv2_integration", "name": "i",
			 "values": {"id": "i1", "integration_uri": "arn:aws:lambda:us-east-1:1:function:f:live"}},
			{"type": "aws_apigatewayv2_route", "name": "x", "values": {"route_key": "TRACE /x", "target": "integrations/i1"}}]}}}`,
			`unsupported method "TRACE"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateRoutes([]byte(tt.plan))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestWriteRoutesFile(t *testing.T) {
	routes, err := GenerateRoutes([]byte(appliedPlan))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "routes.json")
	if err := WriteRoutesFile(path, routes); err != nil {
		t.Fatalf("WriteRoutesFile() error = %v", err)
	}

	read, err := ReadRoutesFile(path)
	if err != nil {
		t.Fatalf("ReadRoutesFile() error = %v", err)
	}
	if !reflect.DeepEqual(read, routes) {
		t.Errorf("read back %+v, want %+v", read, routes)
	}
}
