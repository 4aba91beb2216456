package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/cli"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/config"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cartctl:", err)
		os.Exit(cli.ExitCommandError)
	}

	// Logs go to stderr so stdout stays machine-readable.
	log := logger.NewWithWriter("cartctl", cfg.LogLevel, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCommand(cli.ConfigOpener(cfg, log)).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(cli.GetExitCode(err))
	}
}
