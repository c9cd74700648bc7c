// Copyright (c) 2026 BVK Chaitanya

// Package session manages the logged in web session and the api key of the
// escrow account.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/bvk/hashes/hashes"
	"golang.org/x/net/publicsuffix"
)

type Options struct {
	// Dir holds the session and api key files.
	Dir string

	// SiteURL overrides the default site address when non-nil.
	SiteURL *url.URL

	HttpClientTimeout time.Duration
}

func (v *Options) setDefaults() {
	if len(v.Dir) == 0 {
		v.Dir = "."
	}
	if v.SiteURL == nil {
		u := hashes.SiteURL
		v.SiteURL = &u
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
}

const (
	SessionFile = "session.txt"
	APIKeyFile  = "api.txt"
)

// Session is a logged in web session.
type Session struct {
	Jar http.CookieJar

	// Saved is true when the session cookies are persisted on disk.
	Saved bool
}

type Manager struct {
	opts Options

	solver ChallengeSolver

	current *Session
}

func New(solver ChallengeSolver, opts *Options) *Manager {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	return &Manager{opts: *opts, solver: solver}
}

func (m *Manager) siteURL(p string) *url.URL {
	u := *m.opts.SiteURL
	u.Path = path.Join(u.Path, p)
	return &u
}

func (m *Manager) sessionPath() string {
	return filepath.Join(m.opts.Dir, SessionFile)
}

func newJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// Current returns the active session or nil.
func (m *Manager) Current() *Session {
	return m.current
}

// Login authenticates with the site. When remember is true session cookies
// are saved to the session file.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (*Session, error) {
	if m.solver == nil {
		return nil, fmt.Errorf("no challenge solver is configured: %w", os.ErrInvalid)
	}
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	client := &http.Client{Jar: jar, Timeout: m.opts.HttpClientTimeout}
	if err := m.login(ctx, client, email, password); err != nil {
		return nil, err
	}
	s := &Session{Jar: jar}
	if remember {
		if err := m.save(jar); err != nil {
			slog.Error("could not save session cookies", "err", err)
			return nil, err
		}
		s.Saved = true
	}
	m.current = s
	return s, nil
}

// HasSaved returns true if a saved session file exists.
func (m *Manager) HasSaved() bool {
	_, err := os.Stat(m.sessionPath())
	return err == nil
}

// LoadSaved restores the session from the session file when the user
// confirms. Returns nil session and nil error when there is no saved session
// or the user declines.
func (m *Manager) LoadSaved(confirm func(string) bool) (*Session, error) {
	data, err := os.ReadFile(m.sessionPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if confirm != nil && !confirm("Load saved session?") {
		return nil, nil
	}
	cookieMap := make(map[string]string)
	if err := json.Unmarshal(data, &cookieMap); err != nil {
		return nil, fmt.Errorf("could not decode saved session: %w", err)
	}
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	var cookies []*http.Cookie
	for name, value := range cookieMap {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(m.siteURL("/"), cookies)
	m.current = &Session{Jar: jar, Saved: true}
	return m.current, nil
}

func (m *Manager) save(jar http.CookieJar) error {
	cookieMap := make(map[string]string)
	for _, c := range jar.Cookies(m.siteURL("/")) {
		cookieMap[c.Name] = c.Value
	}
	data, err := json.Marshal(cookieMap)
	if err != nil {
		return err
	}
	return os.WriteFile(m.sessionPath(), data, 0o600)
}

// Logout drops the in-memory session. Session is not invalidated on the site
// and the session file is left untouched.
func (m *Manager) Logout() bool {
	had := m.current != nil
	m.current = nil
	return had
}

// LoadAPIKey reads the api key from the api key file. Spaces are removed.
func (m *Manager) LoadAPIKey() (string, error) {
	return LoadAPIKey(filepath.Join(m.opts.Dir, APIKeyFile))
}

// SaveAPIKey writes the api key into the api key file.
func (m *Manager) SaveAPIKey(key string) error {
	return SaveAPIKey(filepath.Join(m.opts.Dir, APIKeyFile), key)
}
