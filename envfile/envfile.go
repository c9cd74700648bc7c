// Copyright (c) 2026 BVK Chaitanya

// Package envfile loads environment variables from a KEY=VALUE file.
package envfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

type options struct {
	variableNamePrefix string

	dirs []string

	searchCurrentDirectory bool

	overwriteIfExists bool
}

// UpdateEnv updates current process's environment with the values read from
// the first env file found in the search directories. The current directory
// and the user's home directory are searched when no directories are given
// through the options. Returns the path of the loaded file or empty string
// when no file was found.
//
// Please note that, NO shell escaping or expansion is performed on the values
// found in the env file. Lines starting with # are ignored.
func UpdateEnv(filename string, opts ...Option) (string, error) {
	if strings.ContainsRune(filename, os.PathSeparator) {
		return "", fmt.Errorf("file name contains path separator: %w", os.ErrInvalid)
	}
	var fopts options
	for _, v := range opts {
		if err := v.apply(&fopts); err != nil {
			return "", err
		}
	}
	dirs := fopts.dirs
	if fopts.searchCurrentDirectory || len(dirs) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dirs = append([]string{cwd}, dirs...)
	}
	if len(fopts.dirs) == 0 {
		if u, err := user.Current(); err == nil && len(u.HomeDir) != 0 {
			dirs = append(dirs, u.HomeDir)
		}
	}
	for _, dir := range dirs {
		fpath := filepath.Join(dir, filename)
		if err := load(fpath, &fopts); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		return fpath, nil
	}
	return "", nil
}

func load(fpath string, fopts *options) error {
	fp, err := os.Open(fpath)
	if err != nil {
		return err
	}
	defer fp.Close()

	scanner := bufio.NewScanner(fp)
	for i := 1; scanner.Scan(); i++ {
		line := string(bytes.TrimSpace(scanner.Bytes()))
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid/unrecognized variable assignment on line %d: %w", i, os.ErrInvalid)
		}
		key = strings.TrimSpace(key)
		if !prefixRe.MatchString(key) {
			return fmt.Errorf("invalid environment variable name %q on line %d: %w", key, i, os.ErrInvalid)
		}
		key = fopts.variableNamePrefix + key
		if len(os.Getenv(key)) != 0 && !fopts.overwriteIfExists {
			continue
		}
		os.Setenv(key, value)
	}
	return scanner.Err()
}
