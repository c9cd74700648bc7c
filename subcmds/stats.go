// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/escrow"
	"github.com/bvk/hashes/price"
	"github.com/bvk/hashes/tables"
	"github.com/visvasity/cli"
)

type Stats struct {
	app *app.App

	algIDs string
}

func (c *Stats) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("stats", flag.ContinueOnError)
	fset.StringVar(&c.algIDs, "algid", "", "Algorithm ids to limit the stats to. Multiple can be given e.g. 20,300,220")
	return "stats", fset, cli.CmdFunc(c.run)
}

func (c *Stats) Purpose() string {
	return "Gets stats about hashes left in escrow"
}

func (c *Stats) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	q := new(catalog.Query)
	if len(c.algIDs) != 0 {
		ids, err := c.app.Algorithms.ParseIDs(c.algIDs)
		if err != nil {
			return err
		}
		q.AlgorithmIDs = ids
	}
	jobs, err := c.app.Catalog.ListJobs(ctx, q)
	if err != nil {
		return err
	}
	sum := catalog.Stats(jobs)

	t := tables.New("ID", "Algorithm", "Left", "Found", "USD", "BTC", "XMR", "LTC")
	for _, st := range sum.Algorithms {
		name := st.AlgorithmName
		if v, ok := c.app.Algorithms.Lookup(st.AlgorithmID); ok {
			name = v
		}
		t.Append(st.AlgorithmID, name, st.Left, st.Found, price.FormatUSD(st.USD),
			st.Value["BTC"], st.Value["XMR"], st.Value["LTC"])
	}
	stdout := cli.Stdout(ctx)
	t.Render(stdout)

	fmt.Fprintf(stdout, "Total hashes left: %d\n", sum.Left)
	fmt.Fprintf(stdout, "Total hashes found: %d\n", sum.Found)
	fmt.Fprintf(stdout, "Total USD value: %s\n", price.FormatUSD(sum.USD))
	for _, currency := range catalog.Currencies {
		amount := sum.Value[currency].Round(7)
		usd := escrow.ZeroUSD
		if amount.IsPositive() {
			v, err := c.app.Oracle.ToUSD(ctx, amount, currency)
			if err != nil {
				return err
			}
			usd = v.Converted
		}
		fmt.Fprintf(stdout, "Total %s value: %s / %s\n", currency, amount, usd)
	}
	return nil
}
