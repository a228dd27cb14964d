// ABOUTME: Entry point for the zala CLI, TUI and MCP server
// ABOUTME: Hands the arguments to the cobra command tree and exits with its status
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/zala/cli"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, version)
	stop()
	os.Exit(code)
}
