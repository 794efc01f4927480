// Command registration-handler is the Lambda function that registers a
// directory for workspaces and tears the registration down.
package main

import (
	"github.com/lzjever/training-workspaces/internal/bootstrap"
	"github.com/lzjever/training-workspaces/internal/handler"
)

func main() {
	bootstrap.RunLambda(handler.NameRegistration)
}
