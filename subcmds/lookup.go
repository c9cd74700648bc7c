// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/escrow"
	"github.com/bvk/hashes/shell"
	"github.com/visvasity/cli"
)

type Lookup struct {
	app *app.App

	single  string
	infile  string
	outfile string
	print   bool
	verbose bool
}

func (c *Lookup) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fset.StringVar(&c.single, "single", "", "Single hash to lookup")
	fset.StringVar(&c.infile, "infile", "", "Input file with the hashes to lookup")
	fset.StringVar(&c.outfile, "outfile", "", "Appends the lookup results to a file")
	fset.BoolVar(&c.print, "p", false, "Prints the lookup results")
	fset.BoolVar(&c.verbose, "verbose", false, "Displays the algorithm of the found hashes")
	return "lookup", fset, cli.CmdFunc(c.run)
}

func (c *Lookup) Purpose() string {
	return "Looks up hashes in the hashes.com database"
}

func (c *Lookup) Access() shell.Access {
	return shell.APIKeyOnly
}

func readLines(fpath string) ([]string, error) {
	fp, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	var lines []string
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); len(line) != 0 {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Lookup) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if err := needAPIKey(c.app); err != nil {
		return err
	}
	if len(c.single) != 0 && len(c.infile) != 0 {
		return fmt.Errorf("flags -single and -infile are mutually exclusive")
	}
	if (len(c.outfile) == 0) == !c.print {
		return fmt.Errorf("exactly one of -outfile and -p flags is required")
	}

	var hashes []string
	if len(c.single) != 0 {
		hashes = []string{c.single}
	} else if len(c.infile) != 0 {
		lines, err := readLines(c.infile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("the file '%s' does not exist", c.infile)
			}
			return err
		}
		hashes = lines
	}

	stdout := cli.Stdout(ctx)
	if len(hashes) == 0 {
		return escrow.ErrNoHashes
	}
	if len(hashes) > escrow.MaxLookupHashes {
		return escrow.ErrTooManyHashes
	}
	credits, err := c.app.Ledger.Credits(ctx)
	if err != nil {
		return err
	}
	cost, err := escrow.CheckLookup(credits, len(hashes))
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("This transaction has a potential cost of %d credits. You have a balance of %s credits. Continue?", cost, credits)
	if !c.app.Confirm(msg) {
		fmt.Fprintln(stdout, "Lookup transaction canceled.")
		return nil
	}

	result, err := c.app.Client.Search(ctx, hashes)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "There were %d/%d hashes found.\n", len(result.Founds), result.Count)
	fmt.Fprintf(stdout, "Potential cost: %d\n", cost)
	fmt.Fprintf(stdout, "Actual cost: %s\n\n", result.Cost)
	if len(result.Founds) == 0 {
		fmt.Fprintln(stdout, "No hashes found.")
		return nil
	}

	var w io.Writer = stdout
	if !c.print {
		fp, err := os.OpenFile(c.outfile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer fp.Close()
		w = fp
	}
	for _, f := range result.Founds {
		if _, err := fmt.Fprintln(w, f.Line(c.verbose)); err != nil {
			return err
		}
	}
	if !c.print {
		fmt.Fprintf(stdout, "Wrote search results to '%s'\n", c.outfile)
	}
	return nil
}
