// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

// ReporterInterface receives the side channel of a run: progress before each
// lookup and the non fatal diagnostics of skipped records. index is 1-based.
type ReporterInterface interface {
	Progress(index, total int, identifier string)
	Diagnostic(index int, identifier string, err error)
}
