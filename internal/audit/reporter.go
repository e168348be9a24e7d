// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"github.com/canonical/device-audit/internal/logging"
)

var _ ReporterInterface = (*LogReporter)(nil)

// LogReporter writes progress at info level and diagnostics at warn level.
type LogReporter struct {
	logger logging.LoggerInterface
}

func (r *LogReporter) Progress(index, total int, identifier string) {
	r.logger.Infof("[%d/%d] Checking %s", index, total, identifier)
}

func (r *LogReporter) Diagnostic(index int, identifier string, err error) {
	if identifier == "" {
		r.logger.Warnf("Record %d skipped: %v", index, err)
		return
	}
	r.logger.Warnf("Record %d (%s) skipped: %v", index, identifier, err)
}

func NewLogReporter(logger logging.LoggerInterface) *LogReporter {
	r := new(LogReporter)
	r.logger = logger

	return r
}
