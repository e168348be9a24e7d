// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForeignKey   = errors.New("foreign key violation")
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsDuplicateKeyError(err error) bool {
	return pgErrorCode(err) == uniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == foreignKeyViolation
}

func WrapDuplicateKeyError(err error, msg string) error {
	return fmt.Errorf("%w: %s: %v", ErrDuplicateKey, msg, err)
}

func WrapForeignKeyError(err error, msg string) error {
	return fmt.Errorf("%w: %s: %v", ErrForeignKey, msg, err)
}
