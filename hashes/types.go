// Copyright (c) 2026 BVK Chaitanya

package hashes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrNoSession is returned for the endpoints that need a logged in user when
// the client has no session cookies.
var ErrNoSession = errors.New("not logged in")

// APIError is returned when the escrow api responds with success=false.
type APIError struct {
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	if len(e.Message) == 0 {
		return fmt.Sprintf("%s: request was not successful", e.Endpoint)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

type GenericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Count is an integer that may be encoded as a json number or a json string.
type Count int64

func (v *Count) UnmarshalJSON(bs []byte) error {
	bs = bytes.Trim(bs, `"`)
	if len(bs) == 0 || bytes.Equal(bs, []byte("null")) {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(string(bs), 10, 64)
	if err != nil {
		return fmt.Errorf("could not parse count %q: %w", bs, err)
	}
	*v = Count(n)
	return nil
}

type Job struct {
	ID int64 `json:"id"`

	CreatedAt  RemoteTime `json:"createdAt"`
	LastUpdate RemoteTime `json:"lastUpdate"`

	AlgorithmID   int64  `json:"algorithmId"`
	AlgorithmName string `json:"algorithmName"`

	TotalHashes     int64 `json:"totalHashes"`
	FoundHashes     int64 `json:"foundHashes"`
	LeftHashes      int64 `json:"leftHashes"`
	MaxCracksNeeded int64 `json:"maxCracksNeeded"`

	Currency        string          `json:"currency"`
	PricePerHash    decimal.Decimal `json:"pricePerHash"`
	PricePerHashUSD decimal.Decimal `json:"pricePerHashUsd"`

	// LeftList is the site-relative path to the unfound hashes list.
	LeftList string `json:"leftList"`

	// Hints is nil when hints are disabled for the user group, empty when the
	// job has no hints.
	Hints *string `json:"hints,omitempty"`
}

// NeededHashes returns number of cracks still required to complete the job.
func (j *Job) NeededHashes() int64 {
	if j.FoundHashes > 0 {
		return j.MaxCracksNeeded - j.FoundHashes
	}
	return j.MaxCracksNeeded
}

type GetJobsResponse struct {
	GenericResponse

	List []*Job `json:"list"`
}

type Algorithm struct {
	ID   int64  `json:"id"`
	Name string `json:"algorithmName"`
}

type GetAlgorithmsResponse struct {
	GenericResponse

	List []*Algorithm `json:"list"`
}

type Upload struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Algorithm   string `json:"algorithm"`
	Status      string `json:"status"`
	TotalHashes Count  `json:"totalHashes"`
	ValidHashes Count  `json:"validHashes"`

	BTC decimal.Decimal `json:"btc"`
	XMR decimal.Decimal `json:"xmr"`
	LTC decimal.Decimal `json:"ltc"`
}

type GetUploadsResponse struct {
	GenericResponse

	List []*Upload `json:"list"`
}

type Withdrawal struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Status      string          `json:"status"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	AfterFee    decimal.Decimal `json:"afterFee"`
	Destination string          `json:"destination"`
	Transaction string          `json:"transaction"`
}

type GetWithdrawalsResponse struct {
	GenericResponse

	List []*Withdrawal `json:"list"`
}

// Balance maps currency names (BTC, XMR, LTC, credits) to the amounts held by
// the account.
type Balance map[string]decimal.Decimal

type IdentifyResponse struct {
	GenericResponse

	Algorithms []string `json:"algorithms"`
}

type Found struct {
	Hash      string `json:"hash"`
	Salt      string `json:"salt"`
	Plaintext string `json:"plaintext"`
	Algorithm string `json:"algorithm"`
}

// Line formats the found entry as hash[:salt]:plaintext with an optional
// algorithm suffix.
func (f *Found) Line(verbose bool) string {
	line := f.Hash + ":" + f.Plaintext
	if len(f.Salt) != 0 {
		line = f.Hash + ":" + f.Salt + ":" + f.Plaintext
	}
	if verbose {
		line += ":" + f.Algorithm
	}
	return line
}

type SearchResponse struct {
	GenericResponse

	Cost   decimal.Decimal `json:"cost"`
	Count  Count           `json:"count"`
	Founds []*Found        `json:"founds"`
}

// WebsocketMessage is the payload pushed over the jobs websocket.
type WebsocketMessage struct {
	GenericResponse

	New []*Job `json:"new"`
}

func decodeBalance(data []byte) (Balance, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	delete(raw, "success")
	delete(raw, "message")
	b := make(Balance)
	for k, v := range raw {
		var d decimal.Decimal
		if err := json.Unmarshal(v, &d); err != nil {
			return nil, fmt.Errorf("could not parse balance for %q: %w", k, err)
		}
		b[k] = d
	}
	return b, nil
}
