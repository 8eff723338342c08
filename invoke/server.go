package invoke

import (
	"github.com/aura-studio/lambda-hello/hello"
	"github.com/aws/aws-lambda-go/lambda"
)

var engine *Engine

// Serve creates the engine and hands it to the Lambda runtime. It does not return.
func Serve(handler hello.HandlerFunc, opts ...Option) {
	engine = NewEngine(handler, opts...)
	lambda.Start(engine)
}

// Close stops the engine; later invocations fail with ErrStopped.
func Close() {
	if engine != nil {
		engine.Stop()
	}
}
