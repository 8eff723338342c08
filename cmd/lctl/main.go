// Command lctl runs the hello function locally and calls deployed copies of it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	log     = logging.New()
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

var rootCmd = &cobra.Command{
	Use:          "lctl",
	Short:        "Run and call the hello Lambda function.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

// parsePayload reads a JSON event; an empty payload is a nil event.
func parsePayload(payload string) (hello.Event, error) {
	if payload == "" {
		return nil, nil
	}
	var event any
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("invalid --payload: %w", err)
	}
	return event, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
