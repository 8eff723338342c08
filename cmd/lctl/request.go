package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aura-studio/lambda-hello/http/client"
	"github.com/spf13/cobra"
)

var (
	gatewayURL     string
	requestMethod  string
	requestData    string
	requestHeaders []string
	requestTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringVar(&gatewayURL, "url", "http://localhost:3000", "Address of a gateway started with lctl serve.")
	requestCmd.Flags().StringVarP(&requestMethod, "method", "X", "GET", "HTTP method.")
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "Request body.")
	requestCmd.Flags().StringArrayVarP(&requestHeaders, "header", "H", nil, `Extra header as "Name: value"; repeatable.`)
	requestCmd.Flags().DurationVar(&requestTimeout, "timeout", 30*time.Second, "Time to wait for the response.")
}

var requestCmd = &cobra.Command{
	Use:   "request <path>",
	Short: "Send a request through a running local gateway.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest(requestMethod, args[0], requestData, requestHeaders)
		if err != nil {
			return err
		}

		c := client.NewClient(
			client.WithBaseURL(gatewayURL),
			client.WithDefaultTimeout(requestTimeout),
		)
		resp, err := c.Do(cmd.Context(), req)
		if err != nil {
			return err
		}

		log.Debugf("%s %s -> %d", req.Method, req.Path, resp.StatusCode)
		if err := resp.Failure(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d\n%s\n", resp.StatusCode, resp.Body)
		return nil
	},
}

// buildRequest splits an optional query string off target and parses
// "Name: value" headers.
func buildRequest(method, target, data string, headers []string) (client.Request, error) {
	req := client.Request{
		Method:  strings.ToUpper(method),
		Headers: map[string]string{},
	}
	if data != "" {
		req.Body = []byte(data)
	}

	path, rawQuery, _ := strings.Cut(target, "?")
	if !strings.HasPrefix(path, "/") {
		return req, fmt.Errorf("path must start with \"/\": %q", target)
	}
	req.Path = path
	if rawQuery != "" {
		query, err := url.ParseQuery(rawQuery)
		if err != nil {
			return req, fmt.Errorf("invalid query string: %w", err)
		}
		req.Query = query
	}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return req, errors.New("invalid --header, expected \"Name: value\": " + h)
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return req, nil
}
