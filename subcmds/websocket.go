// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/events"
	"github.com/bvk/hashes/shell"
	"github.com/visvasity/cli"
)

type Websocket struct {
	app *app.App

	handler string
}

func (c *Websocket) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("websocket", flag.ContinueOnError)
	fset.StringVar(&c.handler, "handler", "print", "Name of the handler for new jobs")
	return "websocket", fset, cli.CmdFunc(c.run)
}

func (c *Websocket) Purpose() string {
	return "Listens for new jobs on the hashes.com websocket api"
}

func (c *Websocket) Access() shell.Access {
	return shell.APIKeyOnly
}

func (c *Websocket) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if err := needAPIKey(c.app); err != nil {
		return err
	}
	h, err := c.app.Handlers.Lookup(c.handler)
	if err != nil {
		return fmt.Errorf("%w (available handlers: %s)", err, strings.Join(c.app.Handlers.Names(), ", "))
	}

	stdout := cli.Stdout(ctx)
	opts := &events.Options{
		ReconnectDelay: c.app.Config.ReconnectDelay(),
		Output:         stdout,
	}
	listener := events.NewListener(c.app.Client.WebsocketURL(), h, opts)
	if err := listener.Run(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		fmt.Fprintln(stdout, "\nDisconnected from hashes.com Websocket API.")
	}
	return nil
}
