// Package main is the spinsim command itself.
package main

import (
	"context"
	"os"
	"os/signal"

	"go.viam.com/spinningbody/cli"
	"go.viam.com/spinningbody/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		logging.Global().Error(err)
		os.Exit(1)
	}
}
