// Copyright (c) 2026 BVK Chaitanya

package session

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bvk/hashes/hashes"
)

var captchaImage = []byte("\xff\xd8fake-jpeg")

const loginPage = `<html><body><form method="post">
<input type="hidden" name="csrf_token" value="csrf123">
<input type="hidden" name="captchaIdentifier" value="cap456">
<img class="img-fluid rounded" src="data:image/jpeg;base64,%s">
</form></body></html>`

const rejectedPage = `<html><body>
<div class="my-center alert alert-dismissible alert-danger"><button type="button">x</button>
Invalid captcha code.
</div></body></html>`

const profilePage = `<html><body>
<table class="table table-hover table-striped">
<thead class="fw-bolder"><tr><th>Created</th><th>Status</th><th>IP</th><th>Location</th></tr></thead>
<tbody>
<tr><td>2024-01-19 01:22:58</td><td><span class="badge">Success</span></td><td>10.0.0.1</td><td>Nowhere</td></tr>
<tr><td>2024-01-18 11:00:00</td><td><span class="badge">Failed</span></td><td>10.0.0.2</td><td>Somewhere</td></tr>
</tbody></table></body></html>`

func newTestSite(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/en/login" && r.Method == http.MethodGet:
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "anon", Path: "/"})
			fmt.Fprintf(w, loginPage, base64.StdEncoding.EncodeToString(captchaImage))
		case r.URL.Path == "/en/login" && r.Method == http.MethodPost:
			if err := r.ParseForm(); err != nil {
				t.Errorf("could not parse form: %v", err)
			}
			if r.Form.Get("csrf_token") != "csrf123" || r.Form.Get("captchaIdentifier") != "cap456" || r.Form.Get("submitted") != "1" {
				t.Errorf("unexpected login form %v", r.Form)
			}
			if r.Form.Get("captcha") != "good" {
				fmt.Fprint(w, rejectedPage)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "user", Path: "/"})
			fmt.Fprint(w, "<html><body>Welcome</body></html>")
		case r.URL.Path == "/en/profile":
			if c, err := r.Cookie("sid"); err != nil || c.Value != "user" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprint(w, profilePage)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

type fixedSolver struct {
	answer string
	image  []byte
}

func (v *fixedSolver) Solve(_ context.Context, image []byte) (string, error) {
	v.image = image
	return v.answer, nil
}

func newTestManager(t *testing.T, server *httptest.Server, solver ChallengeSolver) (*Manager, string) {
	u, _ := url.Parse(server.URL)
	dir := t.TempDir()
	return New(solver, &Options{Dir: dir, SiteURL: u}), dir
}

func TestLoginRemember(t *testing.T) {
	ctx := context.Background()
	server := newTestSite(t)
	defer server.Close()

	solver := &fixedSolver{answer: "good"}
	m, dir := newTestManager(t, server, solver)
	s, err := m.Login(ctx, "user@example.com", "secret", true)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Saved || m.Current() != s {
		t.Fatalf("session must be saved and current")
	}
	if string(solver.image) != string(captchaImage) {
		t.Fatalf("solver received unexpected image %q", solver.image)
	}
	data, err := os.ReadFile(filepath.Join(dir, SessionFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"sid":"user"}` {
		t.Fatalf("unexpected session file %s", data)
	}

	records, err := m.LoginHistory(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Status != "Success" || records[0].IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected login history %+v", records)
	}

	// Restore the saved session in a new manager.
	m2 := New(nil, &Options{Dir: dir, SiteURL: m.opts.SiteURL})
	if s, err := m2.LoadSaved(func(string) bool { return false }); err != nil || s != nil {
		t.Fatalf("declined confirmation must not load the session")
	}
	s2, err := m2.LoadSaved(func(string) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if s2 == nil {
		t.Fatalf("want a restored session")
	}
	if records, err := m2.LoginHistory(ctx, 0); err != nil || len(records) != 2 {
		t.Fatalf("restored session must be usable: %v %v", records, err)
	}

	if !m2.Logout() || m2.Current() != nil {
		t.Fatalf("logout must drop the session")
	}
	if _, err := m2.LoginHistory(ctx, 0); !errors.Is(err, hashes.ErrNoSession) {
		t.Fatalf("want ErrNoSession after logout, got %v", err)
	}
}

func TestLoginRejected(t *testing.T) {
	ctx := context.Background()
	server := newTestSite(t)
	defer server.Close()

	m, dir := newTestManager(t, server, &fixedSolver{answer: "bad"})
	_, err := m.Login(ctx, "user@example.com", "secret", true)
	if !errors.Is(err, ErrLoginRejected) {
		t.Fatalf("want ErrLoginRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid captcha code.") {
		t.Fatalf("error must carry the banner text: %v", err)
	}
	if m.Current() != nil {
		t.Fatalf("rejected login must not set a session")
	}
	if _, err := os.Stat(filepath.Join(dir, SessionFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("rejected login must not save a session")
	}
}

func TestPromptSolver(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder
	p := &PromptSolver{Dir: dir, In: bufio.NewReader(strings.NewReader("AbC12\n")), Out: &out}
	answer, err := p.Solve(context.Background(), captchaImage)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "AbC12" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if !strings.Contains(out.String(), "captcha_") {
		t.Fatalf("image path must be printed, got %q", out.String())
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("captcha image must be removed after the answer")
	}
}

func TestAPIKey(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), APIKeyFile)
	if _, err := LoadAPIKey(fpath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
	if err := SaveAPIKey(fpath, " abc def \n"); err != nil {
		t.Fatal(err)
	}
	key, err := LoadAPIKey(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if key != "abcdef" {
		t.Fatalf("want spaces stripped, got %q", key)
	}
}
