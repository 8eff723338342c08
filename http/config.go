package http

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlHTTPConfig struct {
	Address   string `yaml:"address"`
	Debug     bool   `yaml:"debug"`
	Cors      bool   `yaml:"cors"`
	Routes    string `yaml:"routes"`
	ConfigDir string `yaml:"configDir"`
	EnvFile   string `yaml:"envFile"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlHTTPConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return HttpOption(func(o *Options) {
		o.DebugMode = cfg.Debug
		o.CorsMode = cfg.Cors
		if cfg.Address != "" {
			o.Address = cfg.Address
		}
		if cfg.Routes != "" {
			o.RoutesFile = cfg.Routes
		}
		if cfg.ConfigDir != "" {
			o.ConfigDir = cfg.ConfigDir
		}
		if cfg.EnvFile != "" {
			o.EnvFile = cfg.EnvFile
		}
	}), nil
}

// WithConfig parses YAML bytes of the `http:` section and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("http.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("http.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
