// Copyright (c) 2026 BVK Chaitanya

package tables

import (
	"github.com/bvk/hashes/hashes"
)

// HintsLabel describes the availability of hints for a job.
func HintsLabel(job *hashes.Job) string {
	switch {
	case job.Hints == nil:
		return "Disabled"
	case len(*job.Hints) == 0:
		return "No hints available"
	default:
		return "Hints available"
	}
}

// Jobs returns the jobs table. All jobs are included when limit is not
// positive.
func Jobs(jobs []*hashes.Job, limit int) *Table {
	t := New("Created", "ID", "Algorithm", "Total", "Found", "Left", "Max", "Currency", "Price Per Hash", "Hints")
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	for _, job := range jobs {
		created := ""
		if !job.CreatedAt.IsZero() {
			created = job.CreatedAt.Format("01/02/06")
		}
		price := job.PricePerHash.String() + " / $" + job.PricePerHashUSD.String()
		t.Append(created, job.ID, job.AlgorithmName, job.TotalHashes, job.FoundHashes, job.LeftHashes,
			job.MaxCracksNeeded, job.Currency, price, HintsLabel(job))
	}
	return t
}
