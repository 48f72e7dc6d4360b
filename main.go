// Command speech-command-detection recognizes short spoken commands by
// comparing them with reference recordings and runs an action per label.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"speech-command-detection/commands"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
