package sqs

import (
	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aws/aws-lambda-go/lambda"
)

var engine *Engine

// Serve creates the engine and hands its Invoke method to the Lambda runtime.
func Serve(handler hello.HandlerFunc, opts ...Option) {
	engine = NewEngine(handler, opts...)
	lambda.Start(engine.Invoke)
}

func Close() {
	if engine != nil {
		engine.Stop()
	}
}
