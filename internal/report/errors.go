// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package report

import "errors"

var ErrInvalidDestination = errors.New("invalid destination")
