package invoke

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlInvokeConfig struct {
	Debug bool   `yaml:"debug"`
	Codec string `yaml:"codec"`
}

func optionFromInvokeConfig(cfg yamlInvokeConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Debug
		if cfg.Codec != "" {
			WithCodec(cfg.Codec).Apply(o)
		}
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlInvokeConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return optionFromInvokeConfig(cfg), nil
}

// WithConfig parses YAML bytes of the `invoke:` section and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("invoke.WithConfig: %w", err))
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
			panic(fmt.Errorf("invoke.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
