// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("input file not found")
	ErrEmptyInput        = errors.New("input contains no data rows")
	ErrMissingColumn     = errors.New("identifier column not found")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrDuplicateColumn   = errors.New("duplicate column in header")
)

// MissingColumnError reports the identifier column together with the columns
// the input actually provides.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf(
		"%s: %q is not a column of the input, available columns: %s",
		ErrMissingColumn,
		e.Column,
		strings.Join(e.Available, ", "),
	)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// DuplicateColumnError reports a header naming the same column twice, positions
// are 1-based.
type DuplicateColumnError struct {
	Column string
	First  int
	Second int
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("%s: %q appears in columns %d and %d", ErrDuplicateColumn, e.Column, e.First, e.Second)
}

func (e *DuplicateColumnError) Unwrap() error {
	return ErrDuplicateColumn
}
