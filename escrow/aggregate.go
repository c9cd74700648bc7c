// Copyright (c) 2026 BVK Chaitanya

package escrow

import (
	"context"
	"slices"

	"github.com/bvk/hashes/hashes"
	"github.com/shopspring/decimal"
)

// Earnings are the totals of submitted hashes and the payouts for them.
type Earnings struct {
	Submitted int64
	Valid     int64

	BTC decimal.Decimal
	XMR decimal.Decimal
	LTC decimal.Decimal
}

func (e *Earnings) add(u *hashes.Upload) {
	e.Submitted += int64(u.TotalHashes)
	e.Valid += int64(u.ValidHashes)
	e.BTC = e.BTC.Add(u.BTC)
	e.XMR = e.XMR.Add(u.XMR)
	e.LTC = e.LTC.Add(u.LTC)
}

type AlgorithmEarnings struct {
	Algorithm string

	Earnings
}

type Aggregate struct {
	// Algorithms are ordered by the BTC earnings, highest first.
	Algorithms []*AlgorithmEarnings

	Total Earnings
}

// AggregateUploads sums the upload history per algorithm.
func AggregateUploads(uploads []*hashes.Upload) *Aggregate {
	agg := new(Aggregate)
	index := make(map[string]*AlgorithmEarnings)
	for _, u := range uploads {
		ae, ok := index[u.Algorithm]
		if !ok {
			ae = &AlgorithmEarnings{Algorithm: u.Algorithm}
			index[u.Algorithm] = ae
			agg.Algorithms = append(agg.Algorithms, ae)
		}
		ae.add(u)
		agg.Total.add(u)
	}
	slices.SortStableFunc(agg.Algorithms, func(a, b *AlgorithmEarnings) int {
		return b.BTC.Cmp(a.BTC)
	})
	return agg
}

// TotalRow is a currency total with its USD value.
type TotalRow struct {
	Currency string
	Amount   decimal.Decimal
	USD      string
}

// Totals returns the total earnings per currency, rounded to 7 places, with
// their USD values.
func (l *Ledger) Totals(ctx context.Context, e *Earnings) ([]*TotalRow, error) {
	var rows []*TotalRow
	for _, v := range []struct {
		currency string
		amount   decimal.Decimal
	}{{"BTC", e.BTC}, {"XMR", e.XMR}, {"LTC", e.LTC}} {
		amount := v.amount.Round(7)
		usd, err := l.usd(ctx, amount, v.currency)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &TotalRow{Currency: v.currency, Amount: amount, USD: usd})
	}
	return rows, nil
}
