// Copyright (c) 2026 BVK Chaitanya

// Package algorithm holds the table of hash algorithms known to the escrow.
//
// The table starts from a list embedded in the binary and is refreshed against
// the remote service. Refresh only adds entries; ids never disappear from the
// table once known.
package algorithm

import (
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/bvk/hashes/hashes"
)

//go:embed algorithms.json
var embedded []byte

// Source is the remote provider of the algorithm list.
type Source interface {
	GetAlgorithms(ctx context.Context) ([]*hashes.Algorithm, error)
}

// Store persists the merged algorithm list.
type Store interface {
	SaveAlgorithms(ctx context.Context, algs []*hashes.Algorithm) error
}

type Table struct {
	mu sync.RWMutex

	nameMap map[int64]string
}

// Embedded returns a new table with the algorithms built into the binary.
func Embedded() *Table {
	var items []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(embedded, &items); err != nil {
		panic(fmt.Sprintf("could not decode embedded algorithms list: %v", err))
	}
	t := &Table{nameMap: make(map[int64]string, len(items))}
	for _, item := range items {
		t.nameMap[item.ID] = item.Name
	}
	return t
}

// Lookup returns the algorithm name for the id.
func (t *Table) Lookup(id int64) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	name, ok := t.nameMap[id]
	return name, ok
}

// Has returns true if id is a known algorithm.
func (t *Table) Has(id int64) bool {
	_, ok := t.Lookup(id)
	return ok
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.nameMap)
}

// All returns all algorithms sorted by the id.
func (t *Table) All() []*hashes.Algorithm {
	t.mu.RLock()
	defer t.mu.RUnlock()

	algs := make([]*hashes.Algorithm, 0, len(t.nameMap))
	for id, name := range t.nameMap {
		algs = append(algs, &hashes.Algorithm{ID: id, Name: name})
	}
	slices.SortFunc(algs, func(a, b *hashes.Algorithm) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return algs
}

// Search returns the algorithms with names containing the input as a
// case-insensitive substring.
func (t *Table) Search(substr string) []*hashes.Algorithm {
	substr = strings.ToLower(substr)
	var matches []*hashes.Algorithm
	for _, alg := range t.All() {
		if strings.Contains(strings.ToLower(alg.Name), substr) {
			matches = append(matches, alg)
		}
	}
	return matches
}

// Merge adds the algorithms that are not already in the table. Existing ids
// are never renamed or removed. Returns the newly added entries.
func (t *Table) Merge(algs []*hashes.Algorithm) []*hashes.Algorithm {
	t.mu.Lock()
	defer t.mu.Unlock()

	var added []*hashes.Algorithm
	for _, alg := range algs {
		if alg == nil {
			continue
		}
		if _, ok := t.nameMap[alg.ID]; ok {
			continue
		}
		t.nameMap[alg.ID] = alg.Name
		added = append(added, &hashes.Algorithm{ID: alg.ID, Name: alg.Name})
	}
	slices.SortFunc(added, func(a, b *hashes.Algorithm) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return added
}

// Refresh merges the remote algorithm list into the table and saves the
// merged table into the store when it has changed. Store can be nil.
func (t *Table) Refresh(ctx context.Context, src Source, store Store) ([]*hashes.Algorithm, error) {
	remote, err := src.GetAlgorithms(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch algorithms list: %w", err)
	}
	added := t.Merge(remote)
	if len(added) == 0 || store == nil {
		return added, nil
	}
	if err := store.SaveAlgorithms(ctx, t.All()); err != nil {
		slog.Error("could not save refreshed algorithms list", "err", err)
		return added, err
	}
	return added, nil
}

// ParseIDs parses comma separated algorithm ids and checks that every id is
// known. Unknown ids are reported together in the returned error.
func (t *Table) ParseIDs(s string) ([]int64, error) {
	var ids, unknown []int64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if len(field) == 0 {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid algorithm id %q: %w", field, os.ErrInvalid)
		}
		if !t.Has(id) {
			unknown = append(unknown, id)
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(unknown) != 0 {
		return nil, &UnknownError{IDs: unknown}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no algorithm ids in %q: %w", s, os.ErrInvalid)
	}
	return ids, nil
}
