package sqs

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlSQSConfig struct {
	Debug         bool   `yaml:"debug"`
	Reply         bool   `yaml:"reply"`
	ReplyQueueURL string `yaml:"replyQueueUrl"`
	Suspend       bool   `yaml:"suspend"`
	Partial       bool   `yaml:"partial"`
}

func optionFromSQSConfig(cfg yamlSQSConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Debug
		o.ReplyMode = cfg.Reply
		o.SuspendMode = cfg.Suspend
		o.PartialMode = cfg.Partial
		if cfg.ReplyQueueURL != "" {
			o.ReplyQueueURL = cfg.ReplyQueueURL
		}
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlSQSConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return optionFromSQSConfig(cfg), nil
}

// WithConfig parses YAML bytes of the `sqs:` section and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("sqs.WithConfig: %w", err))
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
			panic(fmt.Errorf("sqs.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
