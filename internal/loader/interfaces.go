// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package loader

import (
	"context"

	"github.com/canonical/device-audit/internal/types"
)

// LoaderInterface loads the ordered identity records to audit and checks the
// identifier column is part of them.
type LoaderInterface interface {
	Load(ctx context.Context, column string) ([]types.InputRecord, error)
}
