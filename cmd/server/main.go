// Command server runs the FilesService gRPC endpoint until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
)

type serverApp interface {
	RunServer(ctx context.Context) error
	Close() error
}

var newApp = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (serverApp, error) {
	return server.NewApp(ctx, cfg, logger)
}

// run returns the process exit code: 2 for invalid configuration, 1 for
// runtime failures.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := logging.NewJSONLogger(stdout, cfg.LogLevel)

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "init failed", "error", err)
		return 1
	}
	defer app.Close()

	if err := app.RunServer(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
