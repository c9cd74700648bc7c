// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/tables"
	"github.com/visvasity/cli"
)

type GetJobs struct {
	app *app.App

	algIDs     string
	jobIDs     string
	currencies string
	sortBy     string
	reverse    bool
	limit      int
	self       bool
}

func (c *GetJobs) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("jobs", flag.ContinueOnError)
	fset.StringVar(&c.algIDs, "algid", "", "Algorithm ids to filter jobs by. Multiple can be given e.g. 20,300,220")
	fset.StringVar(&c.jobIDs, "jobid", "", "Job ids to filter jobs by. Multiple can be given e.g. 1,2,3")
	fset.StringVar(&c.currencies, "currency", "", "Currencies to filter jobs by. Multiple can be given e.g. BTC,LTC")
	fset.StringVar(&c.sortBy, "sortby", string(catalog.SortCreated), "Sorts jobs by one of created, lastcrack, price, total, left or found")
	fset.BoolVar(&c.reverse, "r", false, "Reverses the display order")
	fset.IntVar(&c.limit, "limit", 0, "Rows to limit results by")
	fset.BoolVar(&c.self, "self", false, "Lists the jobs you have created")
	return "jobs", fset, cli.CmdFunc(c.run)
}

func (c *GetJobs) Purpose() string {
	return "Gets current jobs in escrow"
}

func (c *GetJobs) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	n := 0
	for _, set := range []bool{len(c.algIDs) != 0, len(c.jobIDs) != 0, c.self} {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("flags -algid, -jobid and -self are mutually exclusive")
	}
	sortBy, err := catalog.ParseSortKey(c.sortBy)
	if err != nil {
		return err
	}

	q := &catalog.Query{
		SortBy:     sortBy,
		Currencies: catalog.ParseCurrencies(c.currencies),
		Reverse:    c.reverse,
		Self:       c.self,
	}
	if len(c.algIDs) != 0 {
		ids, err := c.app.Algorithms.ParseIDs(c.algIDs)
		if err != nil {
			return err
		}
		q.AlgorithmIDs = ids
	}
	var jobIDs []int64
	if len(c.jobIDs) != 0 {
		if jobIDs, err = catalog.ParseIDs(c.jobIDs); err != nil {
			return err
		}
	}
	if c.self {
		if err := needLogin(c.app); err != nil {
			return err
		}
	}

	jobs, err := c.app.Catalog.ListJobs(ctx, q)
	if err != nil {
		return err
	}
	stdout := cli.Stdout(ctx)
	if len(jobIDs) != 0 {
		matched, missing := catalog.FilterJobIDs(jobs, jobIDs)
		if len(missing) != 0 {
			warnf(stdout, "No valid jobs for ids: %s", joinIDs(missing))
			return nil
		}
		jobs = matched
	}
	tables.Jobs(jobs, c.limit).Render(stdout)
	return nil
}
