// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"

	"github.com/canonical/device-audit/internal/types"
)

// ClientInterface is an authenticated session on the identity directory.
type ClientInterface interface {
	// GetUser resolves a user principal name or an object id to one account.
	GetUser(ctx context.Context, identifier string) (*types.DirectoryUser, error)
	// HasRegisteredDevice reports whether the user owns at least one registered device.
	HasRegisteredDevice(ctx context.Context, userID string) (bool, error)
	// Disconnect releases the session, it is safe to call more than once.
	Disconnect()
}
