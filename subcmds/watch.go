// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/datastore"
	"github.com/bvk/hashes/tables"
	"github.com/bvk/hashes/watch"
	"github.com/visvasity/cli"
)

type Watch struct {
	app *app.App

	jobIDs  string
	length  int
	history int
}

func (c *Watch) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("watch", flag.ContinueOnError)
	fset.StringVar(&c.jobIDs, "jobid", "", "Job ids to watch. Multiple can be given e.g. 29374,29294,8")
	fset.IntVar(&c.length, "length", 5, "Length in minutes to watch the jobs")
	fset.IntVar(&c.history, "history", 0, "Prints the given number of recent watches instead")
	return "watch", fset, cli.CmdFunc(c.run)
}

func (c *Watch) Purpose() string {
	return "Watches status of jobs (updates every 10 seconds)"
}

func (c *Watch) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if c.history > 0 {
		return c.printHistory(ctx)
	}
	if len(c.jobIDs) == 0 {
		return fmt.Errorf("flag -jobid is required")
	}
	ids, err := catalog.ParseIDs(c.jobIDs)
	if err != nil {
		return err
	}
	target := &watch.Target{
		IDs:      ids,
		Start:    time.Now(),
		Duration: time.Duration(c.length) * time.Minute,
	}
	if err := target.Check(); err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "Watching job IDs: %s\n", joinIDs(ids))
	fmt.Fprintf(stdout, "Use Ctrl + C to end watch session.\n\n")

	prevLines := 0
	report := func(tick *watch.Tick) {
		var sb strings.Builder
		if tick.Err != nil {
			warnf(&sb, "Could not fetch jobs list (will retry): %v", tick.Err)
		}
		if len(tick.Matches) != 0 {
			t := tables.New("ID", "Hashes Cracked", "Hashes Left")
			for _, job := range tick.Matches {
				t.Append(job.ID, job.FoundHashes, job.LeftHashes)
			}
			t.Render(&sb)
		}
		if len(tick.Dropped) != 0 {
			warnf(&sb, "Job IDs %s are no longer valid.", joinIDs(tick.Dropped))
		}
		if len(tick.Remaining) == 0 {
			fmt.Fprintf(&sb, "No jobs are left to watch. Waiting for the watch to complete.\n")
		}
		if prevLines > 0 {
			fmt.Fprintf(stdout, "\033[%dF\033[J", prevLines)
		}
		fmt.Fprint(stdout, sb.String())
		prevLines = strings.Count(sb.String(), "\n")
	}

	loop := watch.New(c.app.Client, &watch.Options{
		Interval:      c.app.Config.WatchInterval(),
		StopWhenEmpty: c.app.Config.StopWatchWhenEmpty,
	})
	result, err := loop.Run(ctx, target, report)
	if err != nil {
		return err
	}

	remaining := slices.DeleteFunc(slices.Clone(result.Watched), func(id int64) bool {
		return slices.Contains(result.Dropped, id)
	})
	if result.Reason == watch.ReasonInterrupted {
		fmt.Fprintln(stdout)
	} else {
		fmt.Fprintf(stdout, "Watch completed on job IDs: %s\n", joinIDs(result.Watched))
	}

	if c.app.Store != nil {
		record := &datastore.WatchRecord{
			Start:    target.Start,
			Duration: time.Since(target.Start),
			Watched:  remaining,
			Dropped:  result.Dropped,
			Reason:   string(result.Reason),
		}
		// Parent context may be canceled by the interrupt.
		sctx := context.WithoutCancel(ctx)
		if err := c.app.Store.AddWatch(sctx, record); err != nil {
			slog.Warn("could not save watch record (ignored)", "err", err)
		}
	}
	return nil
}

func (c *Watch) printHistory(ctx context.Context) error {
	if c.app.Store == nil {
		return errors.New("watch history is not available without a data directory")
	}
	records, err := c.app.Store.Watches(ctx, c.history)
	if err != nil {
		return err
	}
	t := tables.New("Started", "Duration", "Watched", "Dropped", "Reason")
	for _, r := range records {
		t.Append(r.Start.Format(time.DateTime), r.Duration.Round(time.Second), joinIDs(r.Watched), joinIDs(r.Dropped), r.Reason)
	}
	t.Render(cli.Stdout(ctx))
	return nil
}
