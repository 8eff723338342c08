package logging

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlLogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Timestamp bool   `yaml:"timestamp"`
}

func optionFromLogConfig(cfg yamlLogConfig) Option {
	return OptionFunc(func(o *Options) {
		if cfg.Level != "" {
			WithLevel(cfg.Level).Apply(o)
		}
		if cfg.Format != "" {
			WithFormat(Format(cfg.Format)).Apply(o)
		}
		o.Timestamp = cfg.Timestamp
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlLogConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return optionFromLogConfig(cfg), nil
}

// WithConfig parses YAML bytes of the `log:` section and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("logging.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("logging.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
