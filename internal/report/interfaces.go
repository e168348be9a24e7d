// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package report

import (
	"context"

	"github.com/canonical/device-audit/internal/types"
)

type WriterInterface interface {
	Write(context.Context, string, []types.AuditMatch) error
}
