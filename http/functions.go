package http

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultTimeout = 3
	DefaultMemory  = 128
)

// Function is one local function definition read from <configDir>/<name>.yaml.
type Function struct {
	Name        string
	Handler     string
	Timeout     int
	Memory      int
	Description string
	Environment map[string]string
	// Alias is the config file base name, accepted by routes in place of Name.
	Alias  string
	Source string
}

// functionConfig is the YAML shape of a function config.
type functionConfig struct {
	Name        string            `yaml:"function_name"`
	Handler     string            `yaml:"handler"`
	Timeout     yamlInt           `yaml:"timeout"`
	Memory      yamlInt           `yaml:"memory"`
	Description string            `yaml:"description"`
	Environment map[string]string `yaml:"environment"`
}

// yamlInt accepts an integer or a numeric string, the form a substituted
// ${VAR} takes once the tree is encoded again.
type yamlInt int

func (i *yamlInt) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		*i = yamlInt(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*i = yamlInt(n)
	return nil
}

func (f Function) TimeoutDuration() time.Duration {
	return time.Duration(f.Timeout) * time.Second
}

func (f *Function) applyDefaults() {
	if f.Name == "" {
		f.Name = f.Alias
	}
	if f.Handler == "" {
		f.Handler = f.Alias
	}
	if f.Timeout <= 0 {
		f.Timeout = DefaultTimeout
	}
	if f.Memory <= 0 {
		f.Memory = DefaultMemory
	}
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("http: load env file %s: %w", path, err)
	}
	return nil
}

// LoadFunctions reads every *.yaml and *.yml file in dir.
func LoadFunctions(dir string) ([]Function, error) {
	resolved, err := filepath.Abs(dir)
	if err != nil {
		resolved = dir
	}
	st, err := os.Stat(resolved)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("http: config directory not found: %s", resolved)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("http: read config directory: %w", err)
	}

	var functions []Function
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(resolved, entry.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("http: read function config: %w", err)
		}
		fn, err := ParseFunction(b, strings.TrimSuffix(entry.Name(), ext))
		if err != nil {
			return nil, fmt.Errorf("http: %s: %w", path, err)
		}
		fn.Source = path
		functions = append(functions, fn)
	}

	if len(functions) == 0 {
		return nil, fmt.Errorf("http: no function configs found under %s", resolved)
	}
	return functions, nil
}

// ParseFunction expands ${VAR} references in every string value of a
// function config and applies defaults. alias is the config base name.
func ParseFunction(b []byte, alias string) (Function, error) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Function{}, err
	}
	expanded, err := substituteEnv(raw)
	if err != nil {
		return Function{}, err
	}
	out, err := yaml.Marshal(expanded)
	if err != nil {
		return Function{}, err
	}

	var cfg functionConfig
	if err := yaml.Unmarshal(out, &cfg); err != nil {
		return Function{}, err
	}
	fn := Function{
		Name:        cfg.Name,
		Handler:     cfg.Handler,
		Timeout:     int(cfg.Timeout),
		Memory:      int(cfg.Memory),
		Description: cfg.Description,
		Environment: cfg.Environment,
		Alias:       alias,
	}
	fn.applyDefaults()
	return fn, nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnv(v any) (any, error) {
	switch t := v.(type) {
	case string:
		var missing string
		s := envRef.ReplaceAllStringFunc(t, func(m string) string {
			name := envRef.FindStringSubmatch(m)[1]
			val, ok := os.LookupEnv(name)
			if !ok && missing == "" {
				missing = name
			}
			return val
		})
		if missing != "" {
			return nil, fmt.Errorf("environment variable %s is not defined", missing)
		}
		return s, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			s, err := substituteEnv(item)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, item := range t {
			s, err := substituteEnv(item)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	}
	return v, nil
}

// functionTable resolves route targets by function name or config alias.
type functionTable map[string]*Function

func newFunctionTable(functions []Function) (functionTable, error) {
	table := functionTable{}
	aliases := map[string]*Function{}
	for i := range functions {
		fn := &functions[i]
		fn.applyDefaults()
		if fn.Name == "" {
			return nil, errors.New("http: function config without function_name")
		}
		if _, ok := table[fn.Name]; ok {
			return nil, fmt.Errorf("http: duplicate function name detected in configs: %s", fn.Name)
		}
		table[fn.Name] = fn
		if fn.Alias != "" {
			aliases[fn.Alias] = fn
		}
	}
	for alias, fn := range aliases {
		if _, ok := table[alias]; !ok {
			table[alias] = fn
		}
	}
	return table, nil
}

func (t functionTable) names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
