// Copyright (c) 2026 BVK Chaitanya

package shell

import (
	"flag"
	"strings"

	"github.com/visvasity/cli"
)

// Command is a shell command with its own flags.
type Command interface {
	// Command returns the command name, its flags and the function to run.
	// FlagSet is reused across invocations. Flags are reset to their default
	// values before every parse.
	Command() (string, *flag.FlagSet, cli.CmdFunc)
}

// Access levels for the commands. Commands can implement
// `interface{ Access() Access }` to declare their requirements.
type Access int

const (
	Public Access = iota

	// APIKeyOnly commands need the api key, but not a login session.
	APIKeyOnly

	// LoginRequired commands need a login session.
	LoginRequired
)

func (a Access) marker() string {
	switch a {
	case LoginRequired:
		return "*"
	case APIKeyOnly:
		return "**"
	}
	return ""
}

func accessOf(c Command) Access {
	if v, ok := c.(interface{ Access() Access }); ok {
		return v.Access()
	}
	return Public
}

func purposeOf(c Command) string {
	if v, ok := c.(interface{ Purpose() string }); ok {
		return v.Purpose()
	}
	return ""
}

type group struct {
	name    string
	purpose string
	subcmds []Command
}

// Group collects commands under a parent command name, so that they are
// invoked as "<name> <subcmd>".
func Group(name, purpose string, cmds ...Command) Command {
	return &group{name: name, purpose: purpose, subcmds: cmds}
}

func (g *group) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	return g.name, flag.NewFlagSet(g.name, flag.ContinueOnError), nil
}

func (g *group) Purpose() string {
	return g.purpose
}

type entry struct {
	path []string
	cmd  Command
}

func (e *entry) name() string {
	return strings.Join(e.path, " ")
}

// flatten returns all runnable commands with their full names.
func flatten(prefix []string, cmds []Command) []*entry {
	var entries []*entry
	for _, c := range cmds {
		name, _, _ := c.Command()
		p := append(append([]string{}, prefix...), name)
		if g, ok := c.(*group); ok {
			entries = append(entries, flatten(p, g.subcmds)...)
			continue
		}
		entries = append(entries, &entry{path: p, cmd: c})
	}
	return entries
}

// resetFlags restores the default values of all flags in the flag set.
func resetFlags(fset *flag.FlagSet) {
	fset.VisitAll(func(f *flag.Flag) {
		f.Value.Set(f.DefValue)
	})
}

func flagNames(c Command) string {
	_, fset, _ := c.Command()
	var names []string
	fset.VisitAll(func(f *flag.Flag) {
		names = append(names, "-"+f.Name)
	})
	if len(names) == 0 {
		return "No flags"
	}
	return strings.Join(names, ", ")
}
