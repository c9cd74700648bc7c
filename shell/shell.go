// Copyright (c) 2026 BVK Chaitanya

// Package shell implements a line oriented command interpreter over flag
// based commands.
package shell

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/google/shlex"
	"github.com/olekukonko/tablewriter"
	"github.com/visvasity/cli"
)

// ErrExit is returned by commands to stop the shell.
var ErrExit = errors.New("exit")

// ErrUnknownCommand is returned when input doesn't name a command.
var ErrUnknownCommand = errors.New("unknown command")

const DefaultPrompt = "hashes.com:~$ "

type Options struct {
	Prompt string

	// In and Out are the shell input and output. In should be shared with
	// commands that read user input, so that buffered input is not lost.
	In  *bufio.Reader
	Out io.Writer

	// Interrupt when true cancels the running command on SIGINT.
	Interrupt bool
}

func (v *Options) setDefaults() {
	if len(v.Prompt) == 0 {
		v.Prompt = DefaultPrompt
	}
	if v.In == nil {
		v.In = bufio.NewReader(os.Stdin)
	}
	if v.Out == nil {
		v.Out = os.Stdout
	}
}

type Shell struct {
	opts Options

	entries []*entry
}

func New(cmds []Command, opts *Options) *Shell {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	return &Shell{
		opts:    *opts,
		entries: flatten(nil, cmds),
	}
}

// resolve finds the command with the longest name matching the leading
// arguments.
func (s *Shell) resolve(args []string) (*entry, []string) {
	var best *entry
	for _, e := range s.entries {
		if len(e.path) > len(args) || !slices.Equal(e.path, args[:len(e.path)]) {
			continue
		}
		if best == nil || len(e.path) > len(best.path) {
			best = e
		}
	}
	if best == nil {
		return nil, args
	}
	return best, args[len(best.path):]
}

// Exec runs a single command line. Empty and unknown inputs print the help
// table; unknown inputs also return ErrUnknownCommand.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("could not parse command line: %w", err)
	}
	return s.ExecArgs(ctx, args)
}

// ExecArgs runs the command named by the leading arguments.
func (s *Shell) ExecArgs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.PrintHelp(s.opts.Out)
		return nil
	}
	switch args[0] {
	case "help":
		s.PrintHelp(s.opts.Out)
		return nil
	case "exit", "quit":
		return ErrExit
	case "clear":
		fmt.Fprint(s.opts.Out, "\033[H\033[2J")
		return nil
	}

	e, rest := s.resolve(args)
	if e == nil {
		s.PrintHelp(s.opts.Out)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, strings.Join(args, " "))
	}

	_, fset, run := e.cmd.Command()
	resetFlags(fset)
	fset.SetOutput(s.opts.Out)
	if err := fset.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, e.name())
	}
	return run(cli.WithStdout(ctx, s.opts.Out), fset.Args())
}

// Run reads and executes commands until exit command or end of input. Command
// errors are printed and do not stop the shell.
func (s *Shell) Run(ctx context.Context) error {
	warn := color.New(color.FgRed)
	for {
		if err := context.Cause(ctx); err != nil {
			return err
		}
		fmt.Fprint(s.opts.Out, s.opts.Prompt)
		line, err := s.opts.In.ReadString('\n')
		if err != nil && len(line) == 0 {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.opts.Out)
				return nil
			}
			return err
		}

		if err := s.execLine(ctx, line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(s.opts.Out)
				continue
			}
			if !errors.Is(err, ErrUnknownCommand) {
				slog.Error("command failed", "line", strings.TrimSpace(line), "err", err)
			}
			warn.Fprintf(s.opts.Out, "Error: %v\n", err)
		}
	}
}

func (s *Shell) execLine(ctx context.Context, line string) error {
	if !s.opts.Interrupt {
		return s.Exec(ctx, line)
	}
	cctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return s.Exec(cctx, line)
}

// PrintHelp prints the table of commands.
func (s *Shell) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "Available commands:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Command", "Description", "Flags"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, e := range s.entries {
		table.Append([]string{e.name() + accessOf(e.cmd).marker(), purposeOf(e.cmd), flagNames(e.cmd)})
	}
	table.Append([]string{"clear", "Clears the console", "No flags"})
	table.Append([]string{"help", "Prints this table", "No flags"})
	table.Append([]string{"exit", "Exits the console", "No flags"})
	table.Render()
	fmt.Fprintln(w, "* = Must be logged in")
	fmt.Fprintln(w, "** = Only requires apikey")
	fmt.Fprintln(w, "Run '<command> -h' for the command flags.")
}
