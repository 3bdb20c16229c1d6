// Command tempusfetch fetches swimmer, event and ranking data from Tempus Open.
// Usage: go run ./cmd/tempusfetch <search|swimmer|event|stats|history> [flags]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/tempusfetch/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], cli.Options{})
	stop()
	os.Exit(code)
}
