package main

import (
	"errors"

	"github.com/aura-studio/lambda-hello/event/eventcli"
	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aura-studio/lambda-hello/invoke"
	"github.com/spf13/cobra"
)

var (
	emitFunction string
	emitPayload  string
	emitCodec    string
)

func init() {
	rootCmd.AddCommand(emitCmd)
	emitCmd.Flags().StringVarP(&emitFunction, "function", "f", "", "Name or ARN of a function served in event mode.")
	emitCmd.Flags().StringVarP(&emitPayload, "payload", "d", "", "JSON event, or a JSON array sent as a batch.")
	emitCmd.Flags().StringVar(&emitCodec, "codec", invoke.CodecJSON, "Batch wire format: json or proto.")
}

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Queue a batch of events for a function served in event mode.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emitFunction == "" {
			return errors.New("--function is required")
		}
		payload, err := parsePayload(emitPayload)
		if err != nil {
			return err
		}
		items, ok := payload.([]any)
		if !ok {
			items = []hello.Event{payload}
		}

		client, err := eventcli.NewClient(cmd.Context(),
			eventcli.WithFunctionName(emitFunction),
			eventcli.WithCodec(emitCodec),
		)
		if err != nil {
			return err
		}
		if err := client.SendBatch(cmd.Context(), items); err != nil {
			return err
		}
		log.Infof("Queued %d event(s) for %s", len(items), emitFunction)
		return nil
	},
}
