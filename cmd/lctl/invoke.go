package main

import (
	"errors"
	"time"

	"github.com/aura-studio/lambda-hello/invoke/invokecli"
	"github.com/spf13/cobra"
)

var (
	functionName  string
	qualifier     string
	invokePayload string
	async         bool
	timeout       time.Duration
)

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().StringVarP(&functionName, "function", "f", "", "Name or ARN of the deployed function.")
	invokeCmd.Flags().StringVar(&qualifier, "qualifier", "", "Version or alias to invoke.")
	invokeCmd.Flags().StringVarP(&invokePayload, "payload", "d", "", "JSON event.")
	invokeCmd.Flags().BoolVar(&async, "async", false, "Queue the invocation instead of waiting for the response.")
	invokeCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time to wait for the response.")
}

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Invoke a deployed function through the AWS Lambda API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if functionName == "" {
			return errors.New("--function is required")
		}
		event, err := parsePayload(invokePayload)
		if err != nil {
			return err
		}

		client, err := invokecli.NewClient(cmd.Context(),
			invokecli.WithFunctionName(functionName),
			invokecli.WithQualifier(qualifier),
			invokecli.WithDefaultTimeout(timeout),
		)
		if err != nil {
			return err
		}

		if async {
			if err := client.Send(cmd.Context(), event); err != nil {
				return err
			}
			log.Infof("Queued invocation of %s", functionName)
			return nil
		}

		rsp, err := client.Call(cmd.Context(), event)
		if err != nil {
			return err
		}
		return printJSON(rsp)
	},
}
