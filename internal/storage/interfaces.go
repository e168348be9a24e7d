// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/device-audit/internal/types"
)

type StorageInterface interface {
	// Run history
	SaveRun(ctx context.Context, run *types.AuditRun, matches []types.AuditMatch) error
	GetRun(ctx context.Context, id string) (*types.AuditRun, error)
	ListRuns(ctx context.Context, page, size int64) ([]*types.AuditRun, error)
	ListRunMatches(ctx context.Context, id string) ([]types.AuditMatch, error)
}
