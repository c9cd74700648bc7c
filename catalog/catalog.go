// Copyright (c) 2026 BVK Chaitanya

// Package catalog fetches the open escrow jobs and applies the client-side
// filters and sort orders.
package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/bvk/hashes/algorithm"
	"github.com/bvk/hashes/hashes"
)

// ErrUnknownAlgorithm is returned when an algorithm filter names an id that is
// not in the algorithm table.
var ErrUnknownAlgorithm = algorithm.ErrUnknown

// SortKey names the job field used for ordering.
type SortKey string

const (
	SortCreated   SortKey = "created"
	SortLastCrack SortKey = "lastcrack"
	SortPrice     SortKey = "price"
	SortTotal     SortKey = "total"
	SortLeft      SortKey = "left"
	SortFound     SortKey = "found"
)

// SortKeys lists all supported sort keys.
var SortKeys = []SortKey{SortCreated, SortLastCrack, SortPrice, SortTotal, SortLeft, SortFound}

func ParseSortKey(s string) (SortKey, error) {
	if len(s) == 0 {
		return SortCreated, nil
	}
	key := SortKey(strings.ToLower(s))
	if !slices.Contains(SortKeys, key) {
		return "", fmt.Errorf("invalid sort key %q: %w", s, os.ErrInvalid)
	}
	return key, nil
}

// Source is the remote provider of the jobs list.
type Source interface {
	GetJobs(ctx context.Context) ([]*hashes.Job, error)
	GetJobsSelf(ctx context.Context) ([]*hashes.Job, error)
}

// Query selects and orders jobs.
//
// At most one of the currency and algorithm filters is applied. When both are
// given, the currency filter wins.
type Query struct {
	SortBy SortKey

	AlgorithmIDs []int64
	Currencies   []string

	// Reverse sorts in ascending order. Default order is descending.
	Reverse bool

	// Self lists only the jobs created by the logged in user.
	Self bool
}

type Catalog struct {
	source Source
	table  *algorithm.Table
}

func New(source Source, table *algorithm.Table) *Catalog {
	return &Catalog{source: source, table: table}
}

// Fetch returns the unfiltered list of open jobs.
func (c *Catalog) Fetch(ctx context.Context, self bool) ([]*hashes.Job, error) {
	if self {
		return c.source.GetJobsSelf(ctx)
	}
	return c.source.GetJobs(ctx)
}

// ListJobs fetches the open jobs and applies the query. Unknown algorithm ids
// in the query are rejected before any network call.
func (c *Catalog) ListJobs(ctx context.Context, q *Query) ([]*hashes.Job, error) {
	if q == nil {
		q = new(Query)
	}
	sortBy, err := ParseSortKey(string(q.SortBy))
	if err != nil {
		return nil, err
	}
	if len(q.Currencies) == 0 && len(q.AlgorithmIDs) != 0 && c.table != nil {
		var unknown []int64
		for _, id := range q.AlgorithmIDs {
			if !c.table.Has(id) {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) != 0 {
			return nil, &algorithm.UnknownError{IDs: unknown}
		}
	}

	jobs, err := c.Fetch(ctx, q.Self)
	if err != nil {
		return nil, err
	}
	jobs = Filter(jobs, q)
	Sort(jobs, sortBy, q.Reverse)
	return jobs, nil
}

// Filter returns the jobs matching the currency filter or, when no currencies
// are given, the algorithm filter. Input slice is not modified.
func Filter(jobs []*hashes.Job, q *Query) []*hashes.Job {
	var result []*hashes.Job
	switch {
	case len(q.Currencies) != 0:
		for _, job := range jobs {
			if slices.ContainsFunc(q.Currencies, func(c string) bool { return strings.EqualFold(c, job.Currency) }) {
				result = append(result, job)
			}
		}
	case len(q.AlgorithmIDs) != 0:
		for _, job := range jobs {
			if slices.Contains(q.AlgorithmIDs, job.AlgorithmID) {
				result = append(result, job)
			}
		}
	default:
		result = slices.Clone(jobs)
	}
	return result
}

// Sort orders jobs stably by the sort key; descending unless ascending is
// true.
func Sort(jobs []*hashes.Job, key SortKey, ascending bool) {
	var compare func(a, b *hashes.Job) int
	switch key {
	case SortLastCrack:
		compare = func(a, b *hashes.Job) int { return a.LastUpdate.Compare(b.LastUpdate.Time) }
	case SortPrice:
		compare = func(a, b *hashes.Job) int { return a.PricePerHash.Cmp(b.PricePerHash) }
	case SortTotal:
		compare = func(a, b *hashes.Job) int { return cmp.Compare(a.TotalHashes, b.TotalHashes) }
	case SortLeft:
		compare = func(a, b *hashes.Job) int { return cmp.Compare(a.LeftHashes, b.LeftHashes) }
	case SortFound:
		compare = func(a, b *hashes.Job) int { return cmp.Compare(a.FoundHashes, b.FoundHashes) }
	default:
		compare = func(a, b *hashes.Job) int { return a.CreatedAt.Compare(b.CreatedAt.Time) }
	}
	if ascending {
		slices.SortStableFunc(jobs, compare)
		return
	}
	slices.SortStableFunc(jobs, func(a, b *hashes.Job) int { return compare(b, a) })
}

// FilterJobIDs returns the jobs with the input ids in the order of the jobs
// list and the ids that are not present in the list.
func FilterJobIDs(jobs []*hashes.Job, ids []int64) (matched []*hashes.Job, missing []int64) {
	seen := make(map[int64]bool)
	for _, job := range jobs {
		if slices.Contains(ids, job.ID) && !seen[job.ID] {
			matched = append(matched, job)
			seen[job.ID] = true
		}
	}
	for _, id := range ids {
		if !seen[id] && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return matched, missing
}

// ParseIDs parses a comma separated list of ids. Whitespace is ignored.
func ParseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(strings.Join(strings.Fields(s), ""), ",") {
		if len(field) == 0 {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", field, os.ErrInvalid)
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids in %q: %w", s, os.ErrInvalid)
	}
	return ids, nil
}

// ParseCurrencies parses a comma separated list of currency names.
func ParseCurrencies(s string) []string {
	var result []string
	for _, field := range strings.Split(s, ",") {
		if field = strings.ToUpper(strings.TrimSpace(field)); len(field) != 0 {
			result = append(result, field)
		}
	}
	return result
}

// IsUnknownAlgorithm returns true if the error reports unknown algorithm ids.
func IsUnknownAlgorithm(err error) bool {
	return errors.Is(err, ErrUnknownAlgorithm)
}
