// Copyright (c) 2026 BVK Chaitanya

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/datastore"
	"github.com/bvk/hashes/envfile"
	"github.com/bvk/hashes/session"
	"github.com/bvk/hashes/shell"
	"github.com/bvk/hashes/subcmds"
	"github.com/nightlyone/lockfile"
	"github.com/visvasity/sglog"
)

var (
	dataDir    = flag.String("data-dir", "", "Directory for the session, api key, config and log files")
	configFile = flag.String("config", "", "Path to the config file (default <data-dir>/hashes.toml)")
	debug      = flag.Bool("debug", false, "Enables debug messages in the log files")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [command [command-flags]]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flag.CommandLine.Output(), "Starts an interactive shell when no command is given.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(context.Background(), flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	dir := *dataDir
	if len(dir) == 0 {
		dir = os.Getenv(app.EnvPrefix + "DATA_DIR")
	}
	if len(dir) == 0 {
		dir = "."
	}
	if _, err := envfile.UpdateEnv(app.EnvFile, envfile.SearchDirs(dir), envfile.SearchCurrentDir()); err != nil {
		return fmt.Errorf("could not load %s file: %w", app.EnvFile, err)
	}

	cfgPath := *configFile
	if len(cfgPath) == 0 {
		cfgPath = filepath.Join(dir, app.ConfigFile)
	}
	cfg, err := app.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if len(*dataDir) != 0 {
		cfg.DataDir = *dataDir
	}
	if *debug {
		cfg.Debug = true
	}
	if cfg.DataDir, err = filepath.Abs(cfg.DataDir); err != nil {
		return fmt.Errorf("could not determine data-dir %q absolute path: %w", cfg.DataDir, err)
	}

	backend, err := newLogBackend(cfg.DataDir, cfg.Debug)
	if err != nil {
		return err
	}
	defer backend.Close()
	slog.SetDefault(slog.New(backend.Handler()))

	lockPath := filepath.Join(cfg.DataDir, "hashes.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		return fmt.Errorf("could not get lock on file %q (is another shell running?): %w", lockPath, err)
	}
	defer flock.Unlock()

	store, err := datastore.Open(filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := app.New(ctx, cfg, store, nil)
	if err != nil {
		return err
	}
	if err := setupAPIKey(a); err != nil {
		return err
	}

	s, err := a.Sessions.LoadSaved(a.Confirm)
	if err != nil {
		slog.Warn("could not load saved session (ignored)", "err", err)
		fmt.Fprintf(os.Stdout, "Could not load saved session: %v\n", err)
	}
	if s != nil {
		a.UseSession(s)
		fmt.Fprintf(os.Stdout, "Loaded existing session from %s\n", session.SessionFile)
	}

	if added, err := a.RefreshAlgorithms(ctx); err != nil {
		fmt.Fprintln(os.Stdout, "Failed to get algorithm list to check for updates.")
	} else if len(added) != 0 {
		fmt.Fprintln(os.Stdout, "\nNew algorithms added to list:")
		for _, alg := range added {
			fmt.Fprintf(os.Stdout, "%d: %s\n", alg.ID, alg.Name)
		}
	}

	if a.LoggedIn() {
		fmt.Fprintln(os.Stdout, "\nLast 3 login attempts:")
		if err := subcmds.PrintRecentLogins(ctx, a, os.Stdout, 3); err != nil {
			slog.Warn("could not fetch recent logins (ignored)", "err", err)
		}
	}

	sh := shell.New(subcmds.Commands(a), &shell.Options{In: a.In, Out: os.Stdout, Interrupt: true})
	if len(args) != 0 {
		sctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := sh.ExecArgs(sctx, args); err != nil && !errors.Is(err, shell.ErrExit) {
			return err
		}
		return nil
	}
	return sh.Run(ctx)
}

// newLogBackend creates the log files backend under the logs directory of the
// data directory.
func newLogBackend(dataDir string, debug bool) (*sglog.Backend, error) {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}
	backend := sglog.NewBackend(&sglog.Options{LogDirs: []string{logDir}})
	if debug {
		backend.SetLevel(slog.LevelDebug)
	}
	return backend, nil
}

// setupAPIKey loads the api key from the api key file or asks the user for
// one when it is not configured.
func setupAPIKey(a *app.App) error {
	if len(a.Config.APIKey) != 0 {
		a.SetAPIKey(a.Config.APIKey)
		return nil
	}
	key, err := a.Sessions.LoadAPIKey()
	if err == nil && len(key) != 0 {
		a.SetAPIKey(key)
		fmt.Fprintf(os.Stdout, "Loaded API key from %s\n", session.APIKeyFile)
		return nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not read api key file: %w", err)
	}
	key, err = a.Prompt("Enter API Key: ")
	if err != nil {
		return err
	}
	key = strings.ReplaceAll(strings.TrimSpace(key), " ", "")
	if len(key) == 0 {
		fmt.Fprintln(os.Stdout, "No API key is given. Commands that need the API key are disabled.")
		return nil
	}
	if err := a.Sessions.SaveAPIKey(key); err != nil {
		return err
	}
	a.SetAPIKey(key)
	return nil
}
