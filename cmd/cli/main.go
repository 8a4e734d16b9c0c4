package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/filesmanager/internal/client/cli"
	"github.com/dmitrijs2005/filesmanager/internal/client/client"
	"github.com/dmitrijs2005/filesmanager/internal/client/config"
)

// commandArgs drops the global flags (and their values) in front of the
// command name.
func commandArgs(args []string) []string {
	withValue := map[string]bool{"-a": true, "-k": true, "-t": true, "-c": true, "-config": true}
	for i := 0; i < len(args); i++ {
		if withValue[args[i]] {
			i++
			continue
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			continue
		}
		return args[i:]
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	c, err := client.NewFilesClient(cfg.ServerEndpointAddr, cfg.Token)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer c.Close()

	app := cli.NewApp(c, os.Stdout, cfg.RequestTimeout)

	if err := app.Run(ctx, commandArgs(os.Args[1:])); err != nil {
		code := 1
		if errors.Is(err, cli.ErrUsage) {
			app.Usage(os.Stderr)
			code = 2
		}
		fmt.Fprintln(os.Stderr, err)
		_ = c.Close()
		os.Exit(code)
	}
}
