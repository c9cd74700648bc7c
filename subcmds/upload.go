// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/shell"
	"github.com/visvasity/cli"
)

type Upload struct {
	app *app.App

	algID string
	file  string
	yes   bool
}

func (c *Upload) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("upload", flag.ContinueOnError)
	fset.StringVar(&c.algID, "algid", "", "Algorithm id of the cracked hashes")
	fset.StringVar(&c.file, "file", "", "Text file with the cracked hashes")
	fset.BoolVar(&c.yes, "y", false, "Uploads without asking for confirmation")
	return "upload", fset, cli.CmdFunc(c.run)
}

func (c *Upload) Purpose() string {
	return "Uploads cracks to hashes.com"
}

func (c *Upload) Access() shell.Access {
	return shell.APIKeyOnly
}

func (c *Upload) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if err := needAPIKey(c.app); err != nil {
		return err
	}
	if len(c.algID) == 0 || len(c.file) == 0 {
		return fmt.Errorf("flags -algid and -file are required")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(c.algID), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid algorithm id %q: %w", c.algID, os.ErrInvalid)
	}
	if err := c.app.Transfer.CheckUpload(id, c.file); err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	name, _ := c.app.Algorithms.Lookup(id)
	if !c.yes && !c.app.Confirm(fmt.Sprintf("Upload %s as %s founds?", c.file, name)) {
		fmt.Fprintln(stdout, "Upload canceled.")
		return nil
	}
	if err := c.app.Transfer.Upload(ctx, id, c.file); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "File successfully uploaded.")
	fmt.Fprintln(stdout, "Use the 'history' command to check the status.")
	return nil
}
