// Copyright (c) 2026 BVK Chaitanya

package algorithm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknown = errors.New("unknown algorithm")

// UnknownError reports the algorithm ids missing from the table.
type UnknownError struct {
	IDs []int64
}

func (e *UnknownError) Error() string {
	strs := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		strs[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%s id(s): %s", ErrUnknown, strings.Join(strs, ","))
}

func (e *UnknownError) Unwrap() error {
	return ErrUnknown
}
