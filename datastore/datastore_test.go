// Copyright (c) 2026 BVK Chaitanya

package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/bvk/hashes/hashes"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
)

func TestAlgorithms(t *testing.T) {
	ctx := context.Background()
	ds := New(kvmemdb.New())

	if _, err := ds.LoadAlgorithms(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}

	algs := []*hashes.Algorithm{{ID: 0, Name: "MD5"}, {ID: 1000, Name: "NTLM"}}
	if err := ds.SaveAlgorithms(ctx, algs); err != nil {
		t.Fatal(err)
	}
	loaded, err := ds.LoadAlgorithms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[1].ID != 1000 || loaded[1].Name != "NTLM" {
		t.Fatalf("unexpected algorithms %v", loaded)
	}
}

func TestWatches(t *testing.T) {
	ctx := context.Background()
	ds := New(kvmemdb.New())

	start := time.Now()
	for i := 0; i < 3; i++ {
		w := &WatchRecord{
			Start:    start.Add(time.Duration(i) * time.Minute),
			Duration: time.Minute,
			Watched:  []int64{int64(i)},
		}
		if err := ds.AddWatch(ctx, w); err != nil {
			t.Fatal(err)
		}
	}
	records, err := ds.Watches(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	if records[0].Watched[0] != 2 || records[1].Watched[0] != 1 {
		t.Fatalf("records are not in most-recent-first order")
	}
}

func TestOpenBadger(t *testing.T) {
	ctx := context.Background()
	ds, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()

	if err := ds.SaveAlgorithms(ctx, []*hashes.Algorithm{{ID: 1, Name: "x"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.LoadAlgorithms(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestValuesAreJSON(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	ds := New(db)

	if err := ds.SaveAlgorithms(ctx, []*hashes.Algorithm{{ID: 0, Name: "MD5"}}); err != nil {
		t.Fatal(err)
	}
	var data []byte
	err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		value, err := r.Get(ctx, algorithmsKey)
		if err != nil {
			return err
		}
		data, err = io.ReadAll(value)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved value is not json: %v", err)
	}
	if string(raw["names"]) != `["MD5"]` || string(raw["ids"]) != `[0]` {
		t.Fatalf("unexpected saved value %s", data)
	}
}

func TestDirRange(t *testing.T) {
	begin, end := dirRange("/watches/")
	if begin != "/watches/" || end != "/watches0" {
		t.Fatalf("unexpected range %q %q", begin, end)
	}
	if !isGoodKey("/watches/1") || isGoodKey("watches/1") || isGoodKey("/watches//1") {
		t.Fatalf("unexpected key validation")
	}
}
