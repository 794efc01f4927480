// Command workspace-handler is the Lambda function that creates and
// terminates one trainee workspace.
package main

import (
	"github.com/lzjever/training-workspaces/internal/bootstrap"
	"github.com/lzjever/training-workspaces/internal/handler"
)

func main() {
	bootstrap.RunLambda(handler.NameWorkspace)
}
