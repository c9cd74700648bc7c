// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"errors"
	"fmt"
	"io"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/hashes"
	"github.com/bvk/hashes/shell"
	"github.com/fatih/color"
)

var (
	errNoAPIKey = errors.New("API key is required for this action")
	errNoLogin  = fmt.Errorf("you must be logged in for this action: %w", hashes.ErrNoSession)
)

// Commands returns all shell commands operating on the app.
func Commands(a *app.App) []shell.Command {
	return []shell.Command{
		shell.Group("get", "Gets escrow data", &GetJobs{app: a}),
		&Download{app: a},
		&Stats{app: a},
		&Watch{app: a},
		&Algs{app: a},
		&Lookup{app: a},
		&ID{app: a},
		&Login{app: a},
		&Upload{app: a},
		&History{app: a},
		&Hints{app: a},
		&Websocket{app: a},
		&Withdrawals{app: a},
		&Balance{app: a},
		&Logout{app: a},
	}
}

func needAPIKey(a *app.App) error {
	if len(a.Client.APIKey()) == 0 {
		return errNoAPIKey
	}
	return nil
}

func needLogin(a *app.App) error {
	if !a.LoggedIn() {
		return errNoLogin
	}
	return nil
}

var warning = color.New(color.FgYellow)

func warnf(w io.Writer, format string, args ...any) {
	warning.Fprintf(w, format+"\n", args...)
}

func joinIDs(ids []int64) string {
	var s string
	for i, id := range ids {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprint(id)
	}
	return s
}
