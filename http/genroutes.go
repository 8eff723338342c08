package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const planSource = "terraform plan"

// integrationFunction pulls the function name out of a Lambda invoke ARN
// such as arn:aws:apigateway:...:function:hello/invocations.
var integrationFunction = regexp.MustCompile(`function:([^:/]+)[:/]`)

// nameIndex maps terraform resource keys to a name, keeping insertion order
// so reference lookups are deterministic.
type nameIndex struct {
	keys  []string
	names map[string]string
}

func newNameIndex() *nameIndex {
	return &nameIndex{names: map[string]string{}}
}

func (n *nameIndex) set(key, name string) {
	if _, ok := n.names[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.names[key] = name
}

// lookup resolves a reference like "aws_lambda_function.hello.invoke_arn"
// to the name stored for the resource it points at.
func (n *nameIndex) lookup(reference string) (string, bool) {
	for _, key := range n.keys {
		if reference == key ||
			strings.HasPrefix(reference, key+".") ||
			strings.HasPrefix(reference, key+"[") {
			return n.names[key], true
		}
	}
	return "", false
}

// GenerateRoutes builds route entries from the JSON form of a terraform plan
// (terraform show -json). Functions come from aws_lambda_function resources,
// integrations from aws_apigatewayv2_integration and routes from
// aws_apigatewayv2_route. Values known only after apply are resolved through
// the plan's configuration references.
func GenerateRoutes(plan []byte) ([]Route, error) {
	if !gjson.ValidBytes(plan) {
		return nil, errors.New("http: terraform plan is not valid JSON")
	}
	doc := gjson.ParseBytes(plan)

	module := doc.Get("values.root_module")
	if !module.Exists() {
		module = doc.Get("planned_values.root_module")
	}
	if !module.Exists() {
		module = doc.Get("prior_state.values.root_module")
	}
	resources := planResources(module)
	if len(resources) == 0 {
		return nil, errors.New("http: no resources found in terraform plan")
	}

	config := map[string]gjson.Result{}
	indexConfigResources(doc.Get("configuration.root_module"), config)

	lambdas := newNameIndex()
	for _, r := range resourcesOfType(resources, "aws_lambda_function") {
		name := r.Get("values.function_name").String()
		if name == "" {
			continue
		}
		for _, key := range resourceKeys(r) {
			lambdas.set(key, name)
		}
	}

	integrations := newNameIndex()
	integrationsByID := map[string]string{}
	for _, r := range resourcesOfType(resources, "aws_apigatewayv2_integration") {
		name := ""
		if m := integrationFunction.FindStringSubmatch(r.Get("values.integration_uri").String()); m != nil {
			name = m[1]
		}
		if name == "" {
			name = referencedName(r, config, "integration_uri", lambdas)
		}
		if name == "" {
			return nil, fmt.Errorf("http: unable to determine Lambda function for integration %s", resourceLabel(r))
		}

		id := r.Get("values.integration_id").String()
		if id == "" {
			id = r.Get("values.id").String()
		}
		if id != "" {
			integrationsByID[id] = name
		}
		for _, key := range resourceKeys(r) {
			integrations.set(key, name)
		}
	}

	var routes []Route
	for _, r := range resourcesOfType(resources, "aws_apigatewayv2_route") {
		routeKey := strings.TrimSpace(r.Get("values.route_key").String())
		if routeKey == "" {
			return nil, fmt.Errorf("http: route %s is missing route_key", resourceLabel(r))
		}
		route, err := parseRouteKey(routeKey)
		if err != nil {
			return nil, err
		}

		name := referencedName(r, config, "target", integrations)
		if name == "" {
			if id, ok := strings.CutPrefix(r.Get("values.target").String(), "integrations/"); ok {
				name = integrationsByID[id]
			}
		}
		if name == "" {
			return nil, fmt.Errorf("http: unable to find a Lambda integration for route %q", routeKey)
		}
		route.Lambda = name

		route, err = validateRoute(route, len(routes), planSource)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	if len(routes) == 0 {
		return nil, errors.New("http: no aws_apigatewayv2_route resources found in terraform plan")
	}
	return routes, nil
}

// WriteRoutesFile writes routes in the format ReadRoutesFile reads.
func WriteRoutesFile(path string, routes []Route) error {
	b, err := json.MarshalIndent(routes, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("http: write routes file: %w", err)
	}
	return nil
}

func parseRouteKey(routeKey string) (Route, error) {
	if routeKey == DefaultPath {
		return Route{Method: MethodAny, Path: DefaultPath}, nil
	}
	method, path, ok := strings.Cut(routeKey, " ")
	path = strings.TrimSpace(path)
	if !ok || !strings.HasPrefix(path, "/") {
		return Route{}, fmt.Errorf("http: unsupported route_key %q", routeKey)
	}
	return Route{Method: method, Path: path}, nil
}

// planResources flattens the resources of module and its child modules.
func planResources(module gjson.Result) []gjson.Result {
	if !module.Exists() {
		return nil
	}
	resources := module.Get("resources").Array()
	for _, child := range module.Get("child_modules").Array() {
		resources = append(resources, planResources(child)...)
	}
	return resources
}

// indexConfigResources indexes configuration resources by address, following
// module calls. Addresses inside a module call carry the module prefix.
func indexConfigResources(module gjson.Result, index map[string]gjson.Result) {
	indexConfigModule(module, "", index)
}

func indexConfigModule(module gjson.Result, prefix string, index map[string]gjson.Result) {
	if !module.Exists() {
		return
	}
	for _, r := range module.Get("resources").Array() {
		address := r.Get("address").String()
		if address == "" {
			address = r.Get("type").String() + "." + r.Get("name").String()
		}
		index[prefix+address] = r
	}
	module.Get("module_calls").ForEach(func(name, call gjson.Result) bool {
		indexConfigModule(call.Get("module"), prefix+"module."+name.String()+".", index)
		return true
	})
}

func resourcesOfType(resources []gjson.Result, typ string) []gjson.Result {
	var out []gjson.Result
	for _, r := range resources {
		if r.Get("type").String() == typ {
			out = append(out, r)
		}
	}
	return out
}

// resourceKeys are the keys a resource is known by: its full address and
// its type.name.
func resourceKeys(r gjson.Result) []string {
	var keys []string
	if address := r.Get("address").String(); address != "" {
		keys = append(keys, address)
	}
	short := r.Get("type").String() + "." + r.Get("name").String()
	if len(keys) == 0 || keys[0] != short {
		keys = append(keys, short)
	}
	return keys
}

func resourceLabel(r gjson.Result) string {
	if address := r.Get("address").String(); address != "" {
		return address
	}
	return r.Get("type").String() + "." + r.Get("name").String()
}

// referencedName follows the configuration references of expression expr on
// r and returns the first one index can resolve.
func referencedName(r gjson.Result, config map[string]gjson.Result, expr string, index *nameIndex) string {
	for _, key := range resourceKeys(r) {
		cfg, ok := config[key]
		if !ok {
			continue
		}
		for _, ref := range cfg.Get("expressions." + expr + ".references").Array() {
			if name, ok := index.lookup(ref.String()); ok {
				return name
			}
		}
	}
	return ""
}
