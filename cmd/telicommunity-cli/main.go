package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"telicommunity-go/internal/client/cli"
	"telicommunity-go/internal/config"
	"telicommunity-go/pkg/logger"
)

func main() {
	// The CLI shares the server's .env discovery, then reads its own keys.
	if err := config.LoadDotEnv(logger.Nop()); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app.Run(ctx)
}
