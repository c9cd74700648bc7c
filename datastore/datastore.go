// Copyright (c) 2026 BVK Chaitanya

// Package datastore keeps the local state of the client in a key-value
// database under the data directory.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"time"

	"github.com/bvk/hashes/hashes"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
)

const (
	algorithmsKey = "/algorithms"
	watchesDir    = "/watches"
)

type Datastore struct {
	db kv.Database

	closer func() error
}

// AlgorithmList is the persisted form of the algorithm table.
type AlgorithmList struct {
	UpdatedAt time.Time `json:"updated_at"`

	IDs   []int64  `json:"ids"`
	Names []string `json:"names"`
}

// WatchRecord is the persisted result of a completed watch.
type WatchRecord struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`

	// Watched holds the job ids that were still tracked when the watch
	// completed.
	Watched []int64 `json:"watched"`

	// Dropped holds the job ids that disappeared from the jobs list during the
	// watch.
	Dropped []int64 `json:"dropped,omitempty"`

	// Reason tells why the watch has completed.
	Reason string `json:"reason,omitempty"`
}

// New wraps an existing database.
func New(db kv.Database) *Datastore {
	return &Datastore{db: db}
}

// Open opens or creates a badger database in the input directory.
func Open(dir string) (*Datastore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create database directory: %w", err)
	}
	bopts := badger.DefaultOptions(dir).WithLogger(nil)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("could not open the database: %w", err)
	}
	ds := &Datastore{
		db:     kvbadger.New(bdb, isGoodKey),
		closer: bdb.Close,
	}
	return ds, nil
}

func (ds *Datastore) Close() error {
	if ds.closer != nil {
		return ds.closer()
	}
	return nil
}

// LoadAlgorithms returns the saved algorithm list. Returns nil and
// os.ErrNotExist when no list was saved.
func (ds *Datastore) LoadAlgorithms(ctx context.Context) ([]*hashes.Algorithm, error) {
	v, err := loadJSON[AlgorithmList](ctx, ds.db, algorithmsKey)
	if err != nil {
		return nil, err
	}
	if len(v.IDs) != len(v.Names) {
		return nil, fmt.Errorf("saved algorithm list is corrupted: %w", os.ErrInvalid)
	}
	algs := make([]*hashes.Algorithm, len(v.IDs))
	for i := range v.IDs {
		algs[i] = &hashes.Algorithm{ID: v.IDs[i], Name: v.Names[i]}
	}
	return algs, nil
}

// SaveAlgorithms replaces the saved algorithm list.
func (ds *Datastore) SaveAlgorithms(ctx context.Context, algs []*hashes.Algorithm) error {
	v := &AlgorithmList{UpdatedAt: time.Now()}
	for _, alg := range algs {
		v.IDs = append(v.IDs, alg.ID)
		v.Names = append(v.Names, alg.Name)
	}
	return storeJSON(ctx, ds.db, algorithmsKey, v)
}

// AddWatch saves a completed watch record.
func (ds *Datastore) AddWatch(ctx context.Context, w *WatchRecord) error {
	key := path.Join(watchesDir, fmt.Sprintf("%020d", w.Start.UnixNano()))
	return storeJSON(ctx, ds.db, key, w)
}

// Watches returns the saved watch records, most recent first. Returns at most
// limit records when limit is positive.
func (ds *Datastore) Watches(ctx context.Context, limit int) ([]*WatchRecord, error) {
	var records []*WatchRecord
	err := scanJSON(ctx, ds.db, watchesDir, func(_ string, w *WatchRecord) error {
		records = append(records, w)
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	slices.Reverse(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
