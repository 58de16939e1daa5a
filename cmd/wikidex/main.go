package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/use-agent/wikidex/cmd/wikidex/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
