// Copyright (c) 2026 BVK Chaitanya

package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var (
	ErrLoginRejected = errors.New("login rejected")
	ErrLoginForm     = errors.New("could not parse login form")
)

// ChallengeSolver answers the image challenge in the login form.
type ChallengeSolver interface {
	Solve(ctx context.Context, image []byte) (string, error)
}

type loginForm struct {
	csrfToken         string
	captchaIdentifier string
	captchaImage      []byte
}

func parseLoginForm(r io.Reader) (*loginForm, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	csrf := find(doc, elementWith("input", "name", "csrf_token"))
	if csrf == nil {
		return nil, fmt.Errorf("csrf token is missing: %w", ErrLoginForm)
	}
	captchaID := find(doc, elementWith("input", "name", "captchaIdentifier"))
	if captchaID == nil {
		return nil, fmt.Errorf("captcha identifier is missing: %w", ErrLoginForm)
	}
	img := find(doc, elementWithClasses("img", "img-fluid"))
	if img == nil {
		return nil, fmt.Errorf("captcha image is missing: %w", ErrLoginForm)
	}
	image, err := decodeDataURI(attr(img, "src"))
	if err != nil {
		return nil, err
	}
	form := &loginForm{
		csrfToken:         attr(csrf, "value"),
		captchaIdentifier: attr(captchaID, "value"),
		captchaImage:      image,
	}
	return form, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	_, data, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("captcha image is not a data uri: %w", ErrLoginForm)
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode captcha image: %w", err)
	}
	return image, nil
}

// loginError returns the error banner text from the login response. Returns
// empty string if the response has no recognized error banner.
func loginError(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	if n := find(doc, elementWithClasses("div", "my-center alert alert-dismissible alert-danger")); n != nil {
		if msg := strings.TrimSpace(ownText(n)); len(msg) != 0 {
			return msg, nil
		}
		return "unknown error", nil
	}
	if n := find(doc, elementWithClasses("p", "mb-0")); n != nil {
		return strings.TrimSpace(text(n)), nil
	}
	return "", nil
}

func (m *Manager) login(ctx context.Context, client *http.Client, email, password string) error {
	loginURL := m.siteURL("/en/login")

	page, err := m.fetch(ctx, client, http.MethodGet, loginURL, nil)
	if err != nil {
		return fmt.Errorf("could not fetch login form: %w", err)
	}
	form, err := parseLoginForm(bytes.NewReader(page))
	if err != nil {
		return err
	}
	answer, err := m.solver.Solve(ctx, form.captchaImage)
	if err != nil {
		return fmt.Errorf("could not solve login challenge: %w", err)
	}

	values := make(url.Values)
	values.Set("email", email)
	values.Set("password", password)
	values.Set("csrf_token", form.csrfToken)
	values.Set("captcha", strings.TrimSpace(answer))
	values.Set("captchaIdentifier", form.captchaIdentifier)
	values.Set("ddos", "fi")
	values.Set("submitted", "1")

	resp, err := m.fetch(ctx, client, http.MethodPost, loginURL, values)
	if err != nil {
		return fmt.Errorf("could not submit login form: %w", err)
	}
	msg, err := loginError(bytes.NewReader(resp))
	if err != nil {
		return err
	}
	if len(msg) != 0 {
		slog.Warn("login was rejected", "email", email, "message", msg)
		return fmt.Errorf("%w: %s", ErrLoginRejected, msg)
	}
	return nil
}

func (m *Manager) fetch(ctx context.Context, client *http.Client, method string, u *url.URL, values url.Values) ([]byte, error) {
	var body io.Reader
	if values != nil {
		body = strings.NewReader(values.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s returned http status %d", method, u.Path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
