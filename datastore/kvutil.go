// Copyright (c) 2026 BVK Chaitanya

package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/bvkgo/kv"
)

// loadJSON reads and decodes the json value at the key. Missing keys are
// reported with an error wrapping os.ErrNotExist.
func loadJSON[T any](ctx context.Context, db kv.Database, key string) (*T, error) {
	v := new(T)
	err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		value, err := r.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("could not read key %q: %w", key, err)
		}
		if err := json.NewDecoder(value).Decode(v); err != nil {
			return fmt.Errorf("could not decode json value at key %q: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// storeJSON replaces the value at the key with the json encoding of v.
func storeJSON[T any](ctx context.Context, db kv.Database, key string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode value for key %q: %w", key, err)
	}
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, key, bytes.NewReader(data))
	})
}

// scanJSON decodes every value under the directory in key order and passes it
// to fn. Scan stops at the first error from fn.
func scanJSON[T any](ctx context.Context, db kv.Database, dir string, fn func(key string, v *T) error) error {
	begin, end := dirRange(dir)
	return kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		it, err := r.Ascend(ctx, begin, end)
		if err != nil {
			return err
		}
		defer kv.Close(it)

		for k, value, err := it.Fetch(ctx, false); err == nil; k, value, err = it.Fetch(ctx, true) {
			v := new(T)
			if err := json.NewDecoder(value).Decode(v); err != nil {
				return fmt.Errorf("could not decode json value at key %q: %w", k, err)
			}
			if err := fn(k, v); err != nil {
				return err
			}
		}
		if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("could not scan %q: %w", dir, err)
		}
		return nil
	})
}

// dirRange returns the key range holding all keys under the directory.
func dirRange(dir string) (begin, end string) {
	dir = path.Clean(dir)
	if dir == "/" {
		return "", ""
	}
	return dir + "/", dir + string(rune('/'+1))
}

// isGoodKey accepts only clean absolute paths as database keys.
func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}
