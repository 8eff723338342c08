package event

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlEventConfig struct {
	Debug bool    `yaml:"debug"`
	Run   RunMode `yaml:"run"`
	Codec string  `yaml:"codec"`
}

func optionFromEventConfig(cfg yamlEventConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Debug
		if cfg.Run != "" {
			WithRunMode(cfg.Run).Apply(o)
		}
		if cfg.Codec != "" {
			WithCodec(cfg.Codec).Apply(o)
		}
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlEventConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return optionFromEventConfig(cfg), nil
}

// WithConfig parses YAML bytes of the `event:` section and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("event.WithConfig: %w", err))
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
			panic(fmt.Errorf("event.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
