// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/session"
	"github.com/bvk/hashes/shell"
	"github.com/bvk/hashes/tables"
	"github.com/visvasity/cli"
)

type Login struct {
	app *app.App

	email    string
	remember bool
	history  bool
}

func (c *Login) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("login", flag.ContinueOnError)
	fset.StringVar(&c.email, "email", "", "Email of the hashes.com account")
	fset.BoolVar(&c.remember, "rememberme", false, "Saves the session to reload after closing the console")
	fset.BoolVar(&c.history, "history", false, "Shows the login history (must be logged in)")
	return "login", fset, cli.CmdFunc(c.run)
}

func (c *Login) Purpose() string {
	return "Logs in to hashes.com or views the login history"
}

func (c *Login) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	stdout := cli.Stdout(ctx)
	if c.history {
		if err := needLogin(c.app); err != nil {
			return err
		}
		return PrintRecentLogins(ctx, c.app, stdout, 0)
	}
	if len(c.email) == 0 {
		return fmt.Errorf("flag -email is required")
	}
	if c.app.LoggedIn() {
		fmt.Fprintln(stdout, "You are already logged in!")
		return nil
	}

	password, err := c.app.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	s, err := c.app.Sessions.Login(ctx, c.email, password, c.remember)
	if err != nil {
		return err
	}
	c.app.UseSession(s)
	fmt.Fprintln(stdout, "Login successful.")
	if s.Saved {
		fmt.Fprintf(stdout, "Wrote session data to: %s\n", filepath.Join(c.app.Config.DataDir, session.SessionFile))
	}
	return nil
}

// PrintRecentLogins prints the login history of the current session. All
// records are printed when limit is not positive.
func PrintRecentLogins(ctx context.Context, a *app.App, w io.Writer, limit int) error {
	records, err := a.Sessions.LoginHistory(ctx, limit)
	if err != nil {
		return err
	}
	t := tables.New("Created", "Status", "IP Address", "Location")
	for _, r := range records {
		t.Append(r.Created, r.Status, r.IPAddress, r.Location)
	}
	t.Render(w)
	return nil
}

type Logout struct {
	app *app.App
}

func (c *Logout) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("logout", flag.ContinueOnError)
	return "logout", fset, cli.CmdFunc(c.run)
}

func (c *Logout) Purpose() string {
	return "Clears the logged in session"
}

func (c *Logout) Access() shell.Access {
	return shell.LoginRequired
}

func (c *Logout) run(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)
	if c.app.Logout() {
		fmt.Fprintln(stdout, "Logged out.")
	} else {
		fmt.Fprintln(stdout, "You are not logged in.")
	}
	return nil
}
