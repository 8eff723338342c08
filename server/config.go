package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aura-studio/lambda-hello/event"
	"github.com/aura-studio/lambda-hello/http"
	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/aura-studio/lambda-hello/logging"
	"github.com/aura-studio/lambda-hello/sqs"
	yaml "gopkg.in/yaml.v2"
)

type yamlServerConfig struct {
	Lambda string `yaml:"lambda"`
	Log    any    `yaml:"log"`
	Invoke any    `yaml:"invoke"`
	Event  any    `yaml:"event"`
	SQS    any    `yaml:"sqs"`
	HTTP   any    `yaml:"http"`
}

// section re-encodes one top-level section so the owning package can parse it.
func section(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return yaml.Marshal(v)
}

// WithServeConfig parses YAML bytes following lambda.yaml structure.
// It panics if the YAML is invalid.
func WithServeConfig(yamlBytes []byte) Option {
	var cfg yamlServerConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	}

	opt := serveConfigOption{lambda: cfg.Lambda}

	if b, err := section(cfg.Log); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	} else if b != nil {
		opt.logOpt = logging.WithConfig(b)
	}
	if b, err := section(cfg.Invoke); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	} else if b != nil {
		opt.invokeOpt = invoke.WithConfig(b)
	}
	if b, err := section(cfg.Event); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	} else if b != nil {
		opt.eventOpt = event.WithConfig(b)
	}
	if b, err := section(cfg.SQS); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	} else if b != nil {
		opt.sqsOpt = sqs.WithConfig(b)
	}
	if b, err := section(cfg.HTTP); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	} else if b != nil {
		opt.httpOpt = http.WithConfig(b)
	}

	return opt
}

// WithServeConfigFile loads a YAML file and applies it as Option.
func WithServeConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("server.WithServeConfigFile(%s): %w", path, err))
	}
	return WithServeConfig(b)
}

// DefaultServeConfigCandidates returns relative paths that will be checked (in order)
// when searching for a default server config.
func DefaultServeConfigCandidates() []string {
	return []string{
		"lambda.yaml",
		"lambda.yml",
		"server.yaml",
		"server.yml",
		"bootstrap.yaml",
		"bootstrap.yml",
	}
}

// FindDefaultServeConfigFile searches for a server config file in a small set of
// well-known locations (CWD then executable directory).
func FindDefaultServeConfigFile() (string, error) {
	candidates := DefaultServeConfigCandidates()

	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("server config not found (expected %v)", candidates)
}

// WithDefaultServeConfigFile loads the default server config file if one
// exists. Without one the server runs in invoke mode with defaults.
func WithDefaultServeConfigFile() Option {
	p, err := FindDefaultServeConfigFile()
	if err != nil {
		return nil
	}
	return WithServeConfigFile(p)
}
