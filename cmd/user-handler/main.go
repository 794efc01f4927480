// Command user-handler is the Lambda function that creates one trainee in
// the directory.
package main

import (
	"github.com/lzjever/training-workspaces/internal/bootstrap"
	"github.com/lzjever/training-workspaces/internal/handler"
)

func main() {
	bootstrap.RunLambda(handler.NameUser)
}
