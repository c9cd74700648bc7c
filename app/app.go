// Copyright (c) 2026 BVK Chaitanya

package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bvk/hashes/algorithm"
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/datastore"
	"github.com/bvk/hashes/escrow"
	"github.com/bvk/hashes/events"
	"github.com/bvk/hashes/hashes"
	"github.com/bvk/hashes/price"
	"github.com/bvk/hashes/pushover"
	"github.com/bvk/hashes/session"
	"github.com/bvk/hashes/telegram"
	"github.com/bvk/hashes/transfer"
	"golang.org/x/term"
)

// App holds the services shared by all commands.
type App struct {
	Config *Config

	Client     *hashes.Client
	Algorithms *algorithm.Table
	Store      *datastore.Datastore
	Sessions   *session.Manager

	Catalog  *catalog.Catalog
	Transfer *transfer.Service
	Ledger   *escrow.Ledger
	Oracle   *price.Oracle
	Handlers *events.Registry

	In  *bufio.Reader
	Out io.Writer

	// stdin is used to read passwords without echo when it is a terminal.
	stdin *os.File
}

type Options struct {
	// ClientOptions, OracleOptions and SessionOptions override the defaults
	// derived from the config when non-nil.
	ClientOptions  *hashes.Options
	OracleOptions  *price.Options
	SessionOptions *session.Options

	In  io.Reader
	Out io.Writer

	// Err receives the download progress bars.
	Err io.Writer
}

// New creates the application services. Store can be nil in which case the
// algorithm list and watch records are not persisted.
func New(ctx context.Context, cfg *Config, store *datastore.Datastore, opts *Options) (*App, error) {
	if opts == nil {
		opts = new(Options)
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	copts := opts.ClientOptions
	if copts == nil {
		copts = &hashes.Options{HttpClientTimeout: cfg.HttpTimeout()}
	}
	client, err := hashes.New(cfg.APIKey, copts)
	if err != nil {
		return nil, fmt.Errorf("could not create escrow api client: %w", err)
	}

	oopts := opts.OracleOptions
	if oopts == nil {
		oopts = &price.Options{HttpClientTimeout: cfg.HttpTimeout()}
	}
	oracle := price.New(oopts)

	in := bufio.NewReader(opts.In)
	sopts := opts.SessionOptions
	if sopts == nil {
		sopts = &session.Options{Dir: cfg.DataDir, HttpClientTimeout: cfg.HttpTimeout()}
	}
	solver := &session.PromptSolver{Dir: sopts.Dir, In: in, Out: opts.Out}

	table := algorithm.Embedded()
	a := &App{
		Config:     cfg,
		Client:     client,
		Algorithms: table,
		Store:      store,
		Sessions:   session.New(solver, sopts),
		Catalog:    catalog.New(client, table),
		Transfer:   transfer.New(client, table, &transfer.Options{Delay: cfg.DownloadDelay(), Progress: opts.Err}),
		Ledger:     escrow.New(client, oracle),
		Oracle:     oracle,
		Handlers:   events.NewRegistry(),
		In:         in,
		Out:        opts.Out,
	}
	if f, ok := opts.In.(*os.File); ok {
		a.stdin = f
	}

	if store != nil {
		if err := a.loadAlgorithms(ctx); err != nil {
			return nil, err
		}
	}
	if err := a.registerHandlers(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) loadAlgorithms(ctx context.Context) error {
	saved, err := a.Store.LoadAlgorithms(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		slog.Error("could not load saved algorithms list", "err", err)
		return err
	}
	if added := a.Algorithms.Merge(saved); len(added) != 0 {
		slog.Debug("merged saved algorithms into the embedded list", "added", len(added))
	}
	return nil
}

// RefreshAlgorithms merges the remote algorithm list into the local table and
// persists it when there are new entries.
func (a *App) RefreshAlgorithms(ctx context.Context) ([]*hashes.Algorithm, error) {
	var store algorithm.Store
	if a.Store != nil {
		store = a.Store
	}
	return a.Algorithms.Refresh(ctx, a.Client, store)
}

func (a *App) registerHandlers() error {
	if err := a.Handlers.Register("print", events.PrintHandler(a.Out)); err != nil {
		return err
	}
	download := events.DownloadHandler(a.Client, a.Config.DataDir, a.Config.DownloadDelay(), a.Out)
	if err := a.Handlers.Register("download", events.Chain(events.PrintHandler(a.Out), download)); err != nil {
		return err
	}
	if keys := a.Config.Pushover; keys != nil {
		client, err := pushover.New(keys)
		if err != nil {
			return err
		}
		if err := a.Handlers.Register("pushover", events.Chain(events.PrintHandler(a.Out), events.NotifyHandler(client))); err != nil {
			return err
		}
	}
	if secrets := a.Config.Telegram; secrets != nil {
		sender := &lazyTelegram{secrets: secrets.Clone()}
		if err := a.Handlers.Register("telegram", events.Chain(events.PrintHandler(a.Out), events.NotifyHandler(sender))); err != nil {
			return err
		}
	}
	return nil
}

// lazyTelegram creates the bot on first use because creating it talks to the
// telegram servers.
type lazyTelegram struct {
	mu      sync.Mutex
	secrets *telegram.Secrets
	client  *telegram.Client
}

func (v *lazyTelegram) SendMessage(ctx context.Context, at time.Time, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.client == nil {
		client, err := telegram.New(ctx, v.secrets)
		if err != nil {
			return fmt.Errorf("could not create telegram bot: %w", err)
		}
		v.client = client
	}
	return v.client.SendMessage(ctx, at, text)
}

// UseSession attaches the session cookies to the api client. A nil session
// detaches the current one.
func (a *App) UseSession(s *session.Session) {
	if s == nil {
		a.Client.SetJar(nil)
		return
	}
	a.Client.SetJar(s.Jar)
}

// LoggedIn returns true if there is an active web session.
func (a *App) LoggedIn() bool {
	return a.Sessions.Current() != nil
}

// Logout drops the active web session.
func (a *App) Logout() bool {
	a.UseSession(nil)
	return a.Sessions.Logout()
}

// SetAPIKey updates the api key used by the client.
func (a *App) SetAPIKey(key string) {
	a.Config.APIKey = key
	a.Client.SetAPIKey(key)
}

// Prompt prints the message and returns the next input line without the
// line terminator.
func (a *App) Prompt(msg string) (string, error) {
	fmt.Fprint(a.Out, msg)
	line, err := a.In.ReadString('\n')
	if err != nil && len(line) == 0 {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a yes or no question and returns true for a yes answer.
func (a *App) Confirm(msg string) bool {
	answer, err := a.Prompt(msg + " [y/n]: ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// ReadPassword reads a password without echo when the input is a terminal.
func (a *App) ReadPassword(msg string) (string, error) {
	if a.stdin == nil || !term.IsTerminal(int(a.stdin.Fd())) {
		return a.Prompt(msg)
	}
	fmt.Fprint(a.Out, msg)
	pass, err := term.ReadPassword(int(a.stdin.Fd()))
	fmt.Fprintln(a.Out)
	if err != nil {
		return "", err
	}
	return string(pass), nil
}
