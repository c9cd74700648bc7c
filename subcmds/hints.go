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
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/shell"
	"github.com/visvasity/cli"
)

type Hints struct {
	app *app.App

	jobID string
}

func (c *Hints) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("hints", flag.ContinueOnError)
	fset.StringVar(&c.jobID, "jobid", "", "Job id to get the hints for")
	return "hints", fset, cli.CmdFunc(c.run)
}

func (c *Hints) Purpose() string {
	return "Displays any available hints for a job"
}

func (c *Hints) Access() shell.Access {
	return shell.APIKeyOnly
}

func (c *Hints) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if err := needAPIKey(c.app); err != nil {
		return err
	}
	if len(c.jobID) == 0 {
		return fmt.Errorf("flag -jobid is required")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(c.jobID), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", c.jobID, os.ErrInvalid)
	}
	jobs, err := c.app.Catalog.Fetch(ctx, false)
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	matched, _ := catalog.FilterJobIDs(jobs, []int64{id})
	if len(matched) == 0 {
		warnf(stdout, "%d is an invalid job id.", id)
		return nil
	}
	job := matched[0]
	switch {
	case job.Hints == nil:
		fmt.Fprintln(stdout, "Hints are disabled for your usergroup.")
	case len(*job.Hints) == 0:
		fmt.Fprintf(stdout, "No available hints for job id %d.\n", id)
	default:
		fmt.Fprintf(stdout, "Hints for job id %d:\n%s\n", id, *job.Hints)
	}
	return nil
}
