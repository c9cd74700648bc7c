// Copyright (c) 2026 BVK Chaitanya

package hashes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bvk/hashes/ctxutil"
)

// Client is the REST client for the escrow api. A zero api key is allowed for
// the endpoints that do not require it.
type Client struct {
	opts Options

	key string

	client http.Client

	// download client has no timeout because left lists can be large.
	download http.Client
}

// New returns a new client instance.
func New(key string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	c := &Client{
		opts: *opts,
		key:  strings.ReplaceAll(key, " ", ""),
		client: http.Client{
			Timeout: opts.HttpClientTimeout,
			Jar:     opts.Jar,
		},
		download: http.Client{
			Jar: opts.Jar,
		},
	}
	return c, nil
}

// APIKey returns the api key used by the client.
func (c *Client) APIKey() string {
	return c.key
}

// SetAPIKey replaces the api key used by the client.
func (c *Client) SetAPIKey(key string) {
	c.key = strings.ReplaceAll(key, " ", "")
}

// SetJar replaces the cookie jar used for the logged-in-only endpoints. A nil
// jar drops the session cookies.
func (c *Client) SetJar(jar http.CookieJar) {
	c.client.Jar = jar
	c.download.Jar = jar
}

// SiteURL returns a copy of the site address with the given path.
func (c *Client) SiteURL(p string) *url.URL {
	u := *c.opts.SiteURL
	if i := strings.IndexByte(p, '?'); i >= 0 {
		u.RawQuery = p[i+1:]
		p = p[:i]
	}
	u.Path = path.Join(u.Path, p)
	return &u
}

// WebsocketURL returns the push channel address for the client's api key.
func (c *Client) WebsocketURL() *url.URL {
	u := *c.opts.WebsocketURL
	values := make(url.Values)
	values.Set("key", c.key)
	u.RawQuery = values.Encode()
	return &u
}

func (c *Client) restURL(endpoint string, values url.Values) *url.URL {
	u := *c.opts.RestURL
	u.Path = path.Join(u.Path, endpoint)
	if values != nil {
		u.RawQuery = values.Encode()
	}
	return &u
}

func (c *Client) keyValues() url.Values {
	values := make(url.Values)
	values.Set("key", c.key)
	return values
}

// GetJobs returns all open jobs in the escrow.
func (c *Client) GetJobs(ctx context.Context) ([]*Job, error) {
	addrURL := c.restURL("/jobs", c.keyValues())
	resp := new(GetJobsResponse)
	if err := c.getJSON(ctx, addrURL, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not get escrow jobs", "err", err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "jobs", Message: resp.Message}
	}
	return resp.List, nil
}

// GetJobsSelf returns the jobs created by the logged in user. Requires a
// session cookie jar.
func (c *Client) GetJobsSelf(ctx context.Context) ([]*Job, error) {
	if c.client.Jar == nil {
		return nil, fmt.Errorf("listing own jobs requires a login session: %w", ErrNoSession)
	}
	addrURL := c.restURL("/jobs_self", nil)
	resp := new(GetJobsResponse)
	if err := c.getJSON(ctx, addrURL, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not get own escrow jobs", "err", err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "jobs_self", Message: resp.Message}
	}
	return resp.List, nil
}

// GetAlgorithms returns all algorithms supported by the escrow.
func (c *Client) GetAlgorithms(ctx context.Context) ([]*Algorithm, error) {
	addrURL := c.restURL("/algorithms", nil)
	resp := new(GetAlgorithmsResponse)
	if err := c.getJSON(ctx, addrURL, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not get algorithms list", "err", err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "algorithms", Message: resp.Message}
	}
	return resp.List, nil
}

// GetBalance returns the account balance for all currencies.
func (c *Client) GetBalance(ctx context.Context) (Balance, error) {
	addrURL := c.restURL("/balance", c.keyValues())
	var raw json.RawMessage
	if err := c.getJSON(ctx, addrURL, &raw); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not get escrow balance", "err", err)
		}
		return nil, err
	}
	var generic GenericResponse
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	if !generic.Success {
		return nil, &APIError{Endpoint: "balance", Message: generic.Message}
	}
	return decodeBalance(raw)
}

// GetUploads returns the history of uploaded founds.
func (c *Client) GetUploads(ctx context.Context) ([]*Upload, error) {
	addrURL := c.restURL("/uploads", c.keyValues())
	resp := new(GetUploadsResponse)
	if err := c.getJSON(ctx, addrURL, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not get upload history", "err", err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "uploads", Message: resp.Message}
	}
	return resp.List, nil
}

// GetWithdrawals returns all withdrawal requests.
func (c *Client) GetWithdrawals(ctx context.Context) ([]*Withdrawal, error) {
	addrURL := c.restURL("/withdrawals", c.keyValues())
	resp := new(GetWithdrawalsResponse)
	if err := c.getJSON(ctx, addrURL, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not get withdrawal requests", "err", err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "withdrawals", Message: resp.Message}
	}
	return resp.List, nil
}

// Identify returns the possible algorithms for a hash.
func (c *Client) Identify(ctx context.Context, hash string, extended bool) ([]string, error) {
	values := make(url.Values)
	values.Set("hash", hash)
	values.Set("extended", strconv.FormatBool(extended))
	addrURL := c.restURL("/identifier", values)
	resp := new(IdentifyResponse)
	if err := c.getJSON(ctx, addrURL, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not identify hash", "hash", hash, "err", err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "identifier", Message: resp.Message}
	}
	return resp.Algorithms, nil
}

// Search looks up plaintexts for the input hashes. Each lookup spends account
// credits.
func (c *Client) Search(ctx context.Context, hashes []string) (*SearchResponse, error) {
	values := c.keyValues()
	for _, h := range hashes {
		values.Add("hashes[]", h)
	}
	addrURL := c.restURL("/search", nil)
	resp := new(SearchResponse)
	if err := c.postForm(ctx, addrURL, values, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not search hashes", "count", len(hashes), "err", err)
		}
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: "search", Message: resp.Message}
	}
	return resp, nil
}

// UploadFounds submits a founds file for the given algorithm.
func (c *Client) UploadFounds(ctx context.Context, algorithmID int64, filename string, r io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("key", c.key); err != nil {
		return err
	}
	if err := mw.WriteField("algo", strconv.FormatInt(algorithmID, 10)); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("userfile", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("could not read founds file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	addrURL := c.restURL("/founds", nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addrURL.String(), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := new(GenericResponse)
	if err := c.doJSON(req, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not upload founds file", "file", filename, "algorithm", algorithmID, "err", err)
		}
		return err
	}
	if !resp.Success {
		return &APIError{Endpoint: "founds", Message: resp.Message}
	}
	return nil
}

// OpenLeftList starts downloading a job's left list. Returned size is -1 when
// the server doesn't report the content length. Caller must close the reader.
func (c *Client) OpenLeftList(ctx context.Context, leftList string) (io.ReadCloser, int64, error) {
	addrURL := c.SiteURL(leftList)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addrURL.String(), nil)
	if err != nil {
		return nil, -1, err
	}
	// Content-Length is only reliable for the uncompressed response.
	req.Header.Set("Accept-Encoding", "identity")
	resp, err := c.download.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not download left list", "url", addrURL, "err", err)
		}
		return nil, -1, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, -1, fmt.Errorf("left list download %q returned http status %d", leftList, resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}

func (c *Client) getJSON(ctx context.Context, addrURL *url.URL, response any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addrURL.String(), nil)
	if err != nil {
		slog.Error("could not create http get request with context", "url", redact(addrURL), "err", err)
		return err
	}
	return c.doJSON(req, response)
}

func (c *Client) postForm(ctx context.Context, addrURL *url.URL, values url.Values, response any) error {
	body := values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addrURL.String(), strings.NewReader(body))
	if err != nil {
		slog.Error("could not create http post request with context", "url", redact(addrURL), "err", err)
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Body must be replayable for the retries.
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
	return c.doJSON(req, response)
}

func (c *Client) doJSON(req *http.Request, response any) error {
	ctx := req.Context()
	for i := 0; ; i++ {
		if i > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return err
			}
			req.Body = body
		}

		s := time.Now()
		resp, err := c.client.Do(req)
		if d := time.Since(s); d > c.opts.HttpClientTimeout {
			slog.Warn(fmt.Sprintf("%s request took %s which is more than the http client timeout %s", req.Method, d, c.opts.HttpClientTimeout))
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Error("could not perform http request", "method", req.Method, "url", redact(req.URL), "err", err)
			}
			return err
		}

		if resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
				slog.Error("could not decode response to json", "url", redact(req.URL), "err", err)
				return fmt.Errorf("could not decode %s response: %w", req.URL.Path, err)
			}
			return nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		slog.Warn("http request returned unsuccessful status code", "method", req.Method, "url", redact(req.URL), "status-code", resp.StatusCode, "body", string(body))

		retryable := resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusTooManyRequests
		if !retryable || i >= c.opts.MaxRetries || (req.Body != nil && req.GetBody == nil) {
			return fmt.Errorf("http %s %s returned %d", req.Method, req.URL.Path, resp.StatusCode)
		}

		timeout := time.Second
		if x := resp.Header.Get("Retry-After"); len(x) != 0 {
			if v, err := strconv.Atoi(x); err == nil {
				timeout = time.Duration(v) * time.Second
			}
		}
		if err := ctxutil.Sleep(ctx, timeout); err != nil {
			return err
		}
	}
}

// redact hides the api key from the logged urls.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	v := *u
	values := v.Query()
	if values.Has("key") {
		values.Set("key", "REDACTED")
		v.RawQuery = values.Encode()
	}
	return v.String()
}
