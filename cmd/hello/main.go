// Command hello is the Lambda bootstrap. It reads lambda.yaml when present
// and otherwise serves direct invocations with defaults.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aura-studio/lambda-hello/logging"
	"github.com/aura-studio/lambda-hello/server"
)

func main() {
	log := logging.New()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		if err := server.Close(); err != nil {
			log.WithError(err).Error("close failed")
		}
	}()

	if err := server.Serve(server.WithDefaultServeConfigFile()); err != nil {
		log.WithError(err).Fatal("serve failed")
	}
}
