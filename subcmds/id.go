// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/hashes/app"
	"github.com/visvasity/cli"
)

type ID struct {
	app *app.App

	hash     string
	extended bool
}

func (c *ID) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("id", flag.ContinueOnError)
	fset.StringVar(&c.hash, "hash", "", "Hash to identify")
	fset.BoolVar(&c.extended, "extended", false, "Shows extended results")
	return "id", fset, cli.CmdFunc(c.run)
}

func (c *ID) Purpose() string {
	return "Lists potential hash algorithms for a hash"
}

func (c *ID) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if len(c.hash) == 0 {
		return fmt.Errorf("flag -hash is required")
	}
	algs, err := c.app.Client.Identify(ctx, c.hash, c.extended)
	if err != nil {
		return err
	}
	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "Possible algorithms for '%s':\n", c.hash)
	for _, alg := range algs {
		fmt.Fprintln(stdout, alg)
	}
	return nil
}
