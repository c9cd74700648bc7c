// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/price"
	"github.com/bvk/hashes/shell"
	"github.com/bvk/hashes/tables"
	"github.com/visvasity/cli"
)

type Balance struct {
	app *app.App
}

func (c *Balance) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("balance", flag.ContinueOnError)
	return "balance", fset, cli.CmdFunc(c.run)
}

func (c *Balance) Purpose() string {
	return "Shows the escrow balance"
}

func (c *Balance) Access() shell.Access {
	return shell.APIKeyOnly
}

func (c *Balance) run(ctx context.Context, args []string) error {
	if err := needAPIKey(c.app); err != nil {
		return err
	}
	rows, err := c.app.Ledger.BalanceRows(ctx)
	if err != nil {
		return err
	}
	t := tables.New("Currency", "Amount", "USD")
	for _, row := range rows {
		amount := row.Amount.String()
		if row.Currency != price.Credits {
			amount = price.FormatCrypto(row.Amount)
		}
		t.Append(row.Currency, amount, row.USD)
	}
	t.Render(cli.Stdout(ctx))
	return nil
}

type Withdrawals struct {
	app *app.App
}

func (c *Withdrawals) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("withdrawals", flag.ContinueOnError)
	return "withdrawals", fset, cli.CmdFunc(c.run)
}

func (c *Withdrawals) Purpose() string {
	return "Shows all withdrawal requests"
}

func (c *Withdrawals) Access() shell.Access {
	return shell.APIKeyOnly
}

func (c *Withdrawals) run(ctx context.Context, args []string) error {
	if err := needAPIKey(c.app); err != nil {
		return err
	}
	rows, err := c.app.Ledger.Withdrawals(ctx)
	if err != nil {
		return err
	}
	t := tables.New("ID", "Created", "Status", "Currency", "Amount", "Final", "USD", "Destination Address", "Transaction Hash")
	for _, w := range rows {
		t.Append(w.ID, w.Date, w.Status, w.Currency, w.Amount.Round(7), w.AfterFee.Round(7), w.USD, w.Destination, w.Transaction)
	}
	t.Render(cli.Stdout(ctx))
	return nil
}
