// Copyright (c) 2026 BVK Chaitanya

package escrow

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxLookupHashes is the maximum number of hashes allowed per lookup request.
const MaxLookupHashes = 250

var (
	ErrNoHashes      = errors.New("no hashes to lookup")
	ErrTooManyHashes = fmt.Errorf("the maximum hashes allowed per request is %d", MaxLookupHashes)
	ErrNoCredits     = errors.New("you don't have enough credits to process a lookup")
	ErrLowCredits    = errors.New("depending on search results, you may not have enough credits for this transaction")
)

// LookupCost returns the potential credits cost for a lookup of n hashes.
func LookupCost(n int) int64 {
	return int64(n) + 1
}

// CheckLookup verifies that a lookup of n hashes is allowed with the credits
// and returns its potential cost.
func CheckLookup(credits decimal.Decimal, n int) (int64, error) {
	if n == 0 {
		return 0, ErrNoHashes
	}
	if n > MaxLookupHashes {
		return 0, ErrTooManyHashes
	}
	if credits.LessThan(decimal.NewFromInt(1)) {
		return 0, ErrNoCredits
	}
	cost := LookupCost(n)
	if credits.LessThan(decimal.NewFromInt(cost)) {
		return cost, ErrLowCredits
	}
	return cost, nil
}
