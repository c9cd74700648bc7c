// Copyright (c) 2026 BVK Chaitanya

package catalog

import (
	"cmp"
	"slices"

	"github.com/bvk/hashes/hashes"
	"github.com/shopspring/decimal"
)

// AlgorithmStats holds the escrow totals for one algorithm. Values are for
// the hashes still needed to complete the jobs.
type AlgorithmStats struct {
	AlgorithmID   int64
	AlgorithmName string

	Found int64
	Left  int64

	USD decimal.Decimal

	// Value maps BTC, XMR and LTC to the crypto value of the jobs.
	Value map[string]decimal.Decimal
}

type Summary struct {
	Algorithms []*AlgorithmStats

	Found int64
	Left  int64

	USD   decimal.Decimal
	Value map[string]decimal.Decimal
}

// Currencies lists the escrow payout currencies.
var Currencies = []string{"BTC", "XMR", "LTC"}

// Stats computes per-algorithm totals for the input jobs. Algorithms are
// ordered by the id. Crypto values are rounded to 7 places and USD values to
// 3 places.
func Stats(jobs []*hashes.Job) *Summary {
	statsMap := make(map[int64]*AlgorithmStats)
	for _, job := range jobs {
		st, ok := statsMap[job.AlgorithmID]
		if !ok {
			st = &AlgorithmStats{
				AlgorithmID:   job.AlgorithmID,
				AlgorithmName: job.AlgorithmName,
				Value:         make(map[string]decimal.Decimal),
			}
			statsMap[job.AlgorithmID] = st
		}
		needed := decimal.NewFromInt(job.NeededHashes())
		st.Found += job.FoundHashes
		st.Left += job.LeftHashes
		st.USD = st.USD.Add(job.PricePerHashUSD.Mul(needed))
		if slices.Contains(Currencies, job.Currency) {
			st.Value[job.Currency] = st.Value[job.Currency].Add(job.PricePerHash.Mul(needed))
		}
	}

	sum := &Summary{Value: make(map[string]decimal.Decimal)}
	for _, st := range statsMap {
		st.USD = st.USD.Round(3)
		for _, c := range Currencies {
			st.Value[c] = st.Value[c].Round(7)
		}
		sum.Found += st.Found
		sum.Left += st.Left
		sum.USD = sum.USD.Add(st.USD)
		for _, c := range Currencies {
			sum.Value[c] = sum.Value[c].Add(st.Value[c])
		}
		sum.Algorithms = append(sum.Algorithms, st)
	}
	slices.SortFunc(sum.Algorithms, func(a, b *AlgorithmStats) int {
		return cmp.Compare(a.AlgorithmID, b.AlgorithmID)
	})
	return sum
}
