// Copyright (c) 2026 BVK Chaitanya

package session

import (
	"fmt"
	"os"
	"strings"
)

func normalizeKey(key string) string {
	return strings.Join(strings.Fields(key), "")
}

func LoadAPIKey(fpath string) (string, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return "", err
	}
	key := normalizeKey(string(data))
	if len(key) == 0 {
		return "", fmt.Errorf("api key file %q is empty: %w", fpath, os.ErrInvalid)
	}
	return key, nil
}

func SaveAPIKey(fpath, key string) error {
	key = normalizeKey(key)
	if len(key) == 0 {
		return fmt.Errorf("api key cannot be empty: %w", os.ErrInvalid)
	}
	return os.WriteFile(fpath, []byte(key), 0o600)
}
