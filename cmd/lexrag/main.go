// Command lexrag ingests legal documents and answers questions about them
// with cited, retrieval-grounded answers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(newBootstrap(""))

	// cobra has already printed the error.
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
