// Copyright (c) 2026 BVK Chaitanya

package envfile

import (
	"fmt"
	"os"
	"regexp"
)

type Option interface {
	apply(*options) error
}

type optionFunc func(*options) error

func (v optionFunc) apply(opts *options) error {
	return v(opts)
}

// SearchDirs option replaces the default search path with the input
// directories. Directories are searched in the given order.
func SearchDirs(dirs ...string) Option {
	return optionFunc(func(opts *options) error {
		opts.dirs = append(opts.dirs, dirs...)
		return nil
	})
}

// SearchCurrentDir option adds the current directory in front of the search
// directories.
func SearchCurrentDir() Option {
	return optionFunc(func(opts *options) error {
		opts.searchCurrentDirectory = true
		return nil
	})
}

var prefixRe = regexp.MustCompile("^[a-zA-Z][0-9a-zA-Z_]*$")

// VariableNamePrefix option adds input prefix to all variable names defined in
// the envfile.
func VariableNamePrefix(prefix string) Option {
	return optionFunc(func(opts *options) error {
		if !prefixRe.MatchString(prefix) {
			return fmt.Errorf("variable name prefix has invalid characters: %w", os.ErrInvalid)
		}
		opts.variableNamePrefix = prefix
		return nil
	})
}

// OverwriteIfExists options allows to overwrite or not-overwrite the current
// value for an environment variable that already has a non-empty value.
func OverwriteIfExists(overwrite bool) Option {
	return optionFunc(func(opts *options) error {
		opts.overwriteIfExists = overwrite
		return nil
	})
}
