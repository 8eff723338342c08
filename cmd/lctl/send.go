package main

import (
	"errors"
	"time"

	"github.com/aura-studio/lambda-hello/sqs/sqscli"
	"github.com/spf13/cobra"
)

var (
	queueURL      string
	replyQueueURL string
	sendPayload   string
)

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&queueURL, "queue-url", "q", "", "URL of the queue the function consumes.")
	sendCmd.Flags().StringVar(&replyQueueURL, "reply-queue-url", "", "Wait for the response on this queue.")
	sendCmd.Flags().StringVarP(&sendPayload, "payload", "d", "", "JSON event.")
	sendCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time to wait for a reply.")
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an event to a function through its SQS queue.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if queueURL == "" {
			return errors.New("--queue-url is required")
		}
		event, err := parsePayload(sendPayload)
		if err != nil {
			return err
		}

		client, err := sqscli.NewClient(cmd.Context(),
			sqscli.WithQueueURL(queueURL),
			sqscli.WithReplyQueueURL(replyQueueURL),
			sqscli.WithDefaultTimeout(timeout),
			sqscli.WithLogger(log),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		if replyQueueURL == "" {
			id, err := client.Send(cmd.Context(), event)
			if err != nil {
				return err
			}
			log.Infof("Sent message %s", id)
			return nil
		}

		rsp, err := client.Call(cmd.Context(), event)
		if err != nil {
			return err
		}
		return printJSON(rsp)
	},
}
