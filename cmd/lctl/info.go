package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aura-studio/lambda-hello/http"
	"github.com/aura-studio/lambda-hello/invoke/invokecli"
	"github.com/spf13/cobra"
)

var (
	infoQualifier string
	infoConfigDir string
	infoEnvFile   string
)

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVar(&infoQualifier, "qualifier", "", "Version or alias to describe.")
	infoCmd.Flags().StringVar(&infoConfigDir, "config-dir", "configs", "Directory of function YAML configs used to resolve local names.")
	infoCmd.Flags().StringVar(&infoEnvFile, "env-file", ".env", "Env file loaded before configs are expanded.")
}

var infoCmd = &cobra.Command{
	Use:   "info <function-name>",
	Short: "Show the deployed configuration of a function.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := http.LoadEnvFile(infoEnvFile); err != nil {
			return err
		}
		name, err := resolveFunctionName(infoConfigDir, args[0])
		if err != nil {
			return err
		}

		client, err := invokecli.NewClient(cmd.Context(),
			invokecli.WithFunctionName(name),
			invokecli.WithQualifier(infoQualifier),
		)
		if err != nil {
			return err
		}
		info, err := client.Info(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

// resolveFunctionName maps a config file base name to the function_name it
// declares. Names without a local config are used as given.
func resolveFunctionName(dir, name string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		b, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		fn, err := http.ParseFunction(b, name)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		log.Debugf("Resolved %s to %s via %s", name, fn.Name, path)
		return fn.Name, nil
	}
	return name, nil
}
