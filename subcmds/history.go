// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/escrow"
	"github.com/bvk/hashes/price"
	"github.com/bvk/hashes/shell"
	"github.com/bvk/hashes/tables"
	"github.com/visvasity/cli"
)

type History struct {
	app *app.App

	reverse bool
	limit   int
	stats   bool
}

func (c *History) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("history", flag.ContinueOnError)
	fset.BoolVar(&c.reverse, "r", false, "Reverses the order of history")
	fset.IntVar(&c.limit, "limit", 0, "Number of rows to limit results by")
	fset.BoolVar(&c.stats, "stats", false, "Shows the history stats per algorithm")
	return "history", fset, cli.CmdFunc(c.run)
}

func (c *History) Purpose() string {
	return "Shows history of submitted cracks"
}

func (c *History) Access() shell.Access {
	return shell.APIKeyOnly
}

func (c *History) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if err := needAPIKey(c.app); err != nil {
		return err
	}
	stdout := cli.Stdout(ctx)

	if c.stats {
		uploads, err := c.app.Ledger.History(ctx, nil)
		if err != nil {
			return err
		}
		agg := escrow.AggregateUploads(uploads)
		t := tables.New("Algorithm", "Hashes Submitted", "Valid Hashes Submitted", "BTC", "XMR", "LTC")
		for _, ae := range agg.Algorithms {
			t.Append(ae.Algorithm, ae.Submitted, ae.Valid,
				price.FormatCrypto(ae.BTC), price.FormatCrypto(ae.XMR), price.FormatCrypto(ae.LTC))
		}
		totals, err := c.app.Ledger.Totals(ctx, &agg.Total)
		if err != nil {
			return err
		}
		t.Render(stdout)
		fmt.Fprintf(stdout, "Total hashes submitted: %d\n", agg.Total.Submitted)
		fmt.Fprintf(stdout, "Total valid hashes submitted: %d\n", agg.Total.Valid)
		for _, row := range totals {
			fmt.Fprintf(stdout, "Total %s value: %s / %s\n", row.Currency, row.Amount, row.USD)
		}
		return nil
	}

	uploads, err := c.app.Ledger.History(ctx, &escrow.HistoryOptions{Reverse: c.reverse, Limit: c.limit})
	if err != nil {
		return err
	}
	t := tables.New("ID", "Created", "Algorithm", "Status", "Total Hashes", "Valid Finds", "BTC", "XMR", "LTC")
	for _, u := range uploads {
		t.Append(u.ID, u.Date, u.Algorithm, u.Status, u.TotalHashes, u.ValidHashes, u.BTC, u.XMR, u.LTC)
	}
	t.Render(stdout)
	return nil
}
