// Copyright (c) 2026 BVK Chaitanya

package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"testing"

	"github.com/visvasity/cli"
)

type echoCmd struct {
	name   string
	upper  bool
	prefix string
	calls  int
}

func (c *echoCmd) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fset.BoolVar(&c.upper, "upper", false, "prints in upper case")
	fset.StringVar(&c.prefix, "prefix", "", "prefix for the output")
	return c.name, fset, cli.CmdFunc(c.run)
}

func (c *echoCmd) Purpose() string {
	return "Echoes the arguments"
}

func (c *echoCmd) Access() Access {
	return LoginRequired
}

func (c *echoCmd) run(ctx context.Context, args []string) error {
	c.calls++
	s := c.prefix + strings.Join(args, " ")
	if c.upper {
		s = strings.ToUpper(s)
	}
	fmt.Fprintln(cli.Stdout(ctx), s)
	return nil
}

type failCmd struct{}

func (c *failCmd) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("fail", flag.ContinueOnError)
	return "fail", fset, func(ctx context.Context, args []string) error {
		return errors.New("network is down")
	}
}

func TestExec(t *testing.T) {
	jobs := &echoCmd{name: "jobs"}
	echo := &echoCmd{name: "echo"}
	out := new(bytes.Buffer)
	sh := New([]Command{Group("get", "Gets things", jobs), echo}, &Options{Out: out})

	ctx := context.Background()
	if err := sh.Exec(ctx, `echo -upper -prefix "a b " c`); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "A B C\n" {
		t.Fatalf("unexpected output %q", got)
	}

	// Flags are reset between invocations.
	out.Reset()
	if err := sh.Exec(ctx, "echo c"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "c\n" {
		t.Fatalf("flags leaked from previous invocation: %q", got)
	}

	out.Reset()
	if err := sh.Exec(ctx, "get jobs x"); err != nil {
		t.Fatal(err)
	}
	if jobs.calls != 1 || out.String() != "x\n" {
		t.Fatalf("group command is not invoked")
	}

	out.Reset()
	if err := sh.Exec(ctx, "get"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("want unknown command error for bare group name, got %v", err)
	}
	if !strings.Contains(out.String(), "get jobs*") {
		t.Fatalf("help table must list group commands with markers: %q", out.String())
	}

	if err := sh.Exec(ctx, "exit"); !errors.Is(err, ErrExit) {
		t.Fatalf("want ErrExit, got %v", err)
	}
	if err := sh.Exec(ctx, "echo -nosuchflag"); err == nil {
		t.Fatalf("want error for undefined flag")
	}
}

func TestHelp(t *testing.T) {
	out := new(bytes.Buffer)
	sh := New([]Command{&echoCmd{name: "echo"}}, &Options{Out: out})
	if err := sh.Exec(context.Background(), "   "); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"echo*", "Echoes the arguments", "* = Must be logged in", "** = Only requires apikey"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help output doesn't contain %q: %s", want, out.String())
		}
	}
}

func TestRun(t *testing.T) {
	echo := &echoCmd{name: "echo"}
	out := new(bytes.Buffer)
	in := bufio.NewReader(strings.NewReader("echo one\nfail\nbogus\necho two\nexit\necho three\n"))
	sh := New([]Command{echo, new(failCmd)}, &Options{In: in, Out: out})
	if err := sh.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if echo.calls != 2 {
		t.Fatalf("want 2 echo calls, got %d", echo.calls)
	}
	s := out.String()
	if !strings.Contains(s, "Error: network is down") {
		t.Fatalf("command error is not printed: %s", s)
	}
	if !strings.Contains(s, "two") || strings.Contains(s, "three") {
		t.Fatalf("shell must continue after errors and stop at exit: %s", s)
	}
	if !strings.HasPrefix(s, DefaultPrompt) {
		t.Fatalf("prompt is not printed")
	}
}

func TestRunEOF(t *testing.T) {
	out := new(bytes.Buffer)
	sh := New(nil, &Options{In: bufio.NewReader(strings.NewReader("")), Out: out})
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("want nil at end of input, got %v", err)
	}
}
