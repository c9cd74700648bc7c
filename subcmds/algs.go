// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/hashes"
	"github.com/bvk/hashes/tables"
	"github.com/visvasity/cli"
)

type Algs struct {
	app *app.App

	algIDs string
	search string
	update bool
}

func (c *Algs) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("algs", flag.ContinueOnError)
	fset.StringVar(&c.algIDs, "algid", "", "Algorithm ids to lookup. Multiple can be given e.g. 20,300,220")
	fset.StringVar(&c.search, "search", "", "Searches algorithms by name")
	fset.BoolVar(&c.update, "update", false, "Fetches the latest algorithms list from the site")
	return "algs", fset, cli.CmdFunc(c.run)
}

func (c *Algs) Purpose() string {
	return "Gets the algorithms hashes.com currently supports"
}

func (c *Algs) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	stdout := cli.Stdout(ctx)
	if c.update {
		added, err := c.app.RefreshAlgorithms(ctx)
		if err != nil {
			return err
		}
		if len(added) == 0 {
			fmt.Fprintln(stdout, "Algorithms list is up to date.")
		} else {
			fmt.Fprintln(stdout, "New algorithms added to list:")
			for _, alg := range added {
				fmt.Fprintf(stdout, "%d: %s\n", alg.ID, alg.Name)
			}
		}
		if len(c.algIDs) == 0 && len(c.search) == 0 {
			return nil
		}
	}

	var algs []*hashes.Algorithm
	var unknown []int64
	switch {
	case len(c.algIDs) != 0:
		ids, err := catalog.ParseIDs(c.algIDs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if name, ok := c.app.Algorithms.Lookup(id); ok {
				algs = append(algs, &hashes.Algorithm{ID: id, Name: name})
			} else {
				unknown = append(unknown, id)
			}
		}
	case len(c.search) != 0:
		algs = c.app.Algorithms.Search(c.search)
	default:
		algs = c.app.Algorithms.All()
	}

	if len(algs) != 0 {
		t := tables.New("ID", "Algorithm")
		for _, alg := range algs {
			t.Append(alg.ID, alg.Name)
		}
		t.Render(stdout)
	} else if len(c.search) != 0 && len(c.algIDs) == 0 {
		fmt.Fprintf(stdout, "No results found for '%s'\n", c.search)
	}
	if len(unknown) != 0 {
		warnf(stdout, "%s not currently supported.", joinIDs(unknown))
	}
	return nil
}
