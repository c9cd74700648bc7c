// Copyright (c) 2026 BVK Chaitanya

package hashes

import (
	"net/http"
	"net/url"
	"time"
)

var (
	// SiteURL is the base address for web pages and the left list downloads.
	SiteURL = url.URL{
		Scheme: "https",
		Host:   "hashes.com",
	}

	// RestURL is the base address for the json api endpoints.
	RestURL = url.URL{
		Scheme: "https",
		Host:   "hashes.com",
		Path:   "/en/api",
	}

	// WebsocketURL is the push channel for newly created jobs.
	WebsocketURL = url.URL{
		Scheme: "wss",
		Host:   "hashes.com",
		Path:   "/en/api/jobs_wss/",
	}
)

type Options struct {
	// SiteURL, RestURL and WebsocketURL override the package defaults when
	// non-nil.
	SiteURL      *url.URL
	RestURL      *url.URL
	WebsocketURL *url.URL

	// Timeout to use for the HTTP requests. Left list downloads are not
	// limited by this timeout.
	HttpClientTimeout time.Duration

	// MaxRetries limits the number of retries when server responds with a
	// rate-limit or bad-gateway status.
	MaxRetries int

	// Jar holds the session cookies for the endpoints that require a logged in
	// user.
	Jar http.CookieJar
}

func (v *Options) setDefaults() {
	if v.SiteURL == nil {
		u := SiteURL
		v.SiteURL = &u
	}
	if v.RestURL == nil {
		u := RestURL
		v.RestURL = &u
	}
	if v.WebsocketURL == nil {
		u := WebsocketURL
		v.WebsocketURL = &u
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.MaxRetries == 0 {
		v.MaxRetries = 3
	}
}

// Check validates the options.
func (v *Options) Check() error {
	return nil
}
