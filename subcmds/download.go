// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/transfer"
	"github.com/visvasity/cli"
)

type Download struct {
	app *app.App

	jobIDs     string
	algID      string
	currencies string
	file       string
	print      bool
}

func (c *Download) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("download", flag.ContinueOnError)
	fset.StringVar(&c.jobIDs, "jobid", "", "Job ids to download. Multiple can be given e.g. 3,4,5")
	fset.StringVar(&c.algID, "algid", "", "Algorithm id to download")
	fset.StringVar(&c.currencies, "currency", "", "Currencies to filter downloads by. Multiple can be given e.g. BTC,LTC")
	fset.StringVar(&c.file, "f", "", "Appends the left lists to the file (can be used with -p)")
	fset.BoolVar(&c.print, "p", false, "Prints the left lists to the screen")
	return "download", fset, cli.CmdFunc(c.run)
}

func (c *Download) Purpose() string {
	return "Downloads left lists to a file or prints them"
}

func (c *Download) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if len(c.jobIDs) != 0 && len(c.algID) != 0 {
		return fmt.Errorf("flags -jobid and -algid are mutually exclusive")
	}
	if len(c.file) == 0 && !c.print {
		return fmt.Errorf("at least one of -f and -p flags is required")
	}

	criteria := &transfer.Criteria{Currencies: catalog.ParseCurrencies(c.currencies)}
	if len(c.jobIDs) != 0 {
		ids, err := catalog.ParseIDs(c.jobIDs)
		if err != nil {
			return err
		}
		criteria.JobIDs = ids
	}
	if len(c.algID) != 0 {
		id, err := strconv.ParseInt(strings.TrimSpace(c.algID), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid algorithm id %q: %w", c.algID, os.ErrInvalid)
		}
		criteria.AlgorithmID = &id
	}

	stdout := cli.Stdout(ctx)
	service := c.app.Transfer
	var dst io.Writer = stdout
	if len(c.file) == 0 {
		service = service.Quiet()
	} else {
		fp, err := os.OpenFile(c.file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer fp.Close()
		dst = fp
		if c.print {
			dst = io.MultiWriter(stdout, fp)
		}
	}

	report, err := service.Download(ctx, criteria, dst)
	if report != nil && len(report.Invalid) != 0 {
		warnf(stdout, "%s not valid jobs", joinIDs(report.Invalid))
	}
	if err != nil {
		if errors.Is(err, transfer.ErrNothingFound) {
			if criteria.AlgorithmID != nil {
				name, _ := c.app.Algorithms.Lookup(*criteria.AlgorithmID)
				warnf(stdout, "No jobs for %s", name)
				return nil
			}
			if len(criteria.JobIDs) != 0 {
				return nil
			}
		}
		return err
	}
	if len(c.file) != 0 {
		fmt.Fprintf(stdout, "\nWrote %d left lists to: %s\n", len(report.Downloaded), c.file)
	}
	return nil
}
