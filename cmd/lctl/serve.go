package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aura-studio/lambda-hello/http"
	"github.com/aura-studio/lambda-hello/logging"
	"github.com/aura-studio/lambda-hello/server"
	"github.com/spf13/cobra"
)

var (
	routesFile string
	port       int
	configDir  string
	envFile    string
	cors       bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&routesFile, "routes", "routes.json", "Path to the routes file.")
	serveCmd.Flags().IntVarP(&port, "port", "p", 3000, "Port of the local API Gateway.")
	serveCmd.Flags().StringVar(&configDir, "config-dir", "configs", "Directory of function YAML configs.")
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "Env file loaded before configs are expanded.")
	serveCmd.Flags().BoolVar(&cors, "cors", false, "Answer CORS preflight requests.")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve functions locally behind an API Gateway compatible HTTP server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port <= 0 {
			return fmt.Errorf("invalid port value: %d", port)
		}

		httpOpts := []http.Option{
			http.WithAddress(fmt.Sprintf(":%d", port)),
			http.WithRoutesFile(routesFile),
			http.WithConfigDir(configDir),
			http.WithEnvFile(envFile),
		}
		if verbose {
			httpOpts = append(httpOpts, http.WithDebugMode())
		}
		if cors {
			httpOpts = append(httpOpts, http.WithCors())
		}

		level := "info"
		if verbose {
			level = "debug"
		}

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			if err := server.Close(); err != nil {
				log.WithError(err).Error("shutdown failed")
			}
		}()

		return server.Serve(
			server.WithLambda(server.ModeHTTP),
			server.WithLogOptions(logging.WithLevel(level)),
			server.WithHttpOptions(httpOpts...),
		)
	},
}
