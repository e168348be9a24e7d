// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"time"
)

type InputSource string

const (
	InputSourceFile       InputSource = "file"
	InputSourceSalesforce InputSource = "salesforce"
)

var ErrInvalidInputSource = errors.New("invalid input source")

// Validate checks the source is one the loaders know about.
func (s InputSource) Validate() error {
	switch s {
	case InputSourceFile, InputSourceSalesforce:
		return nil
	}
	return ErrInvalidInputSource
}

// AuditRun is a completed run as kept in the run history.
type AuditRun struct {
	ID      string      `json:"id"`
	Source  InputSource `json:"source"`
	Input   string      `json:"input"`
	Column  string      `json:"column"`
	Output  string      `json:"output"`
	Account string      `json:"account,omitempty"`

	Processed   int `json:"processed"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	Disabled    int `json:"disabled"`
	WithDevices int `json:"with_devices"`
	Matched     int `json:"matched"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAuditRun describes the run behind summary. Matches are stored apart.
func NewAuditRun(summary *AuditSummary, source InputSource, input, column, output string) *AuditRun {
	return &AuditRun{
		ID:          summary.RunID,
		Source:      source,
		Input:       input,
		Column:      column,
		Output:      output,
		Processed:   summary.Processed,
		Skipped:     summary.Skipped,
		Failed:      summary.Failed,
		Disabled:    summary.Disabled,
		WithDevices: summary.WithDevices,
		Matched:     summary.Matched(),
		StartedAt:   summary.StartedAt,
		FinishedAt:  summary.FinishedAt,
	}
}

func (r *AuditRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
