// Copyright (c) 2026 BVK Chaitanya

// Package price converts escrow currency amounts into USD using the public
// Kraken ticker.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TickerURL is the public Kraken ticker endpoint.
var TickerURL = url.URL{
	Scheme: "https",
	Host:   "api.kraken.com",
	Path:   "/0/public/Ticker",
}

// Credits is the site-internal currency, which has no USD rate.
const Credits = "credits"

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// tickerPairs maps the escrow currencies to Kraken ticker result keys.
var tickerPairs = map[string]string{
	"BTC": "XXBTZUSD",
	"XMR": "XXMRZUSD",
	"LTC": "XLTCZUSD",
}

// Conversion holds the result of a USD conversion. Rate is nil when the
// currency has no USD value.
type Conversion struct {
	Rate      *decimal.Decimal
	Converted string
}

type Options struct {
	TickerURL *url.URL

	HttpClientTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.TickerURL == nil {
		u := TickerURL
		v.TickerURL = &u
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
}

type Oracle struct {
	opts Options

	client http.Client
}

func New(opts *Options) *Oracle {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	return &Oracle{
		opts:   *opts,
		client: http.Client{Timeout: opts.HttpClientTimeout},
	}
}

// FormatUSD formats a USD amount with three decimal places.
func FormatUSD(v decimal.Decimal) string {
	return "$" + v.StringFixed(3)
}

// FormatCrypto formats a crypto currency amount with seven decimal places.
func FormatCrypto(v decimal.Decimal) string {
	return v.StringFixed(7)
}

// ToUSD converts the amount in the given currency to USD using the current
// ask price. Credits are never converted and do not make a network request.
func (o *Oracle) ToUSD(ctx context.Context, amount decimal.Decimal, currency string) (*Conversion, error) {
	if strings.EqualFold(currency, Credits) {
		return &Conversion{Converted: "N/A"}, nil
	}
	rate, err := o.Rate(ctx, currency)
	if err != nil {
		return nil, err
	}
	c := &Conversion{
		Rate:      &rate,
		Converted: FormatUSD(amount.Mul(rate)),
	}
	return c, nil
}

// Rate returns the current USD ask price for the currency.
func (o *Oracle) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	currency = strings.ToUpper(currency)
	key, ok := tickerPairs[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}

	type Ticker struct {
		Ask []decimal.Decimal `json:"a"`
	}
	type Response struct {
		Error  []string           `json:"error"`
		Result map[string]*Ticker `json:"result"`
	}

	addrURL := *o.opts.TickerURL
	values := make(url.Values)
	values.Set("pair", currency+"usd")
	addrURL.RawQuery = values.Encode()
	addrURL.Path = path.Clean(addrURL.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addrURL.String(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not fetch ticker", "currency", currency, "err", err)
		}
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("ticker for %s returned http status %d", currency, resp.StatusCode)
	}

	r := new(Response)
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return decimal.Zero, fmt.Errorf("could not decode ticker response: %w", err)
	}
	if len(r.Error) != 0 {
		return decimal.Zero, fmt.Errorf("ticker for %s failed: %s", currency, strings.Join(r.Error, "; "))
	}
	ticker, ok := r.Result[key]
	if !ok || ticker == nil || len(ticker.Ask) == 0 {
		return decimal.Zero, fmt.Errorf("ticker response has no ask price for %s", key)
	}
	return ticker.Ask[0], nil
}
