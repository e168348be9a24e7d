// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"strconv"
	"time"
)

const (
	// StatusActive is the only status a match can carry, only enabled accounts are audited.
	StatusActive = "Active"
)

// ReportHeader is the column order of the audit report.
var ReportHeader = []string{"UserPrincipalName", "DisplayName", "Status", "DeviceCount"}

// InputRecord is one row of the input table, keyed by column name.
type InputRecord map[string]string

// DirectoryUser is the subset of a directory account the audit relies on.
type DirectoryUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	AccountEnabled    bool   `json:"accountEnabled"`
}

// AuditMatch is an enabled account without any registered device.
type AuditMatch struct {
	UserPrincipalName string `json:"user_principal_name"`
	DisplayName       string `json:"display_name"`
	Status            string `json:"status"`
	DeviceCount       int    `json:"device_count"`
}

// NewAuditMatch builds the match for an enabled user with no registered device.
func NewAuditMatch(u *DirectoryUser) AuditMatch {
	return AuditMatch{
		UserPrincipalName: u.UserPrincipalName,
		DisplayName:       u.DisplayName,
		Status:            StatusActive,
		DeviceCount:       0,
	}
}

// Row returns the report row, in ReportHeader order.
func (m AuditMatch) Row() []string {
	return []string{m.UserPrincipalName, m.DisplayName, m.Status, strconv.Itoa(m.DeviceCount)}
}

// AuditSummary holds the outcome counters of a run together with its matches.
type AuditSummary struct {
	RunID string `json:"run_id"`

	Processed   int `json:"processed"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	Disabled    int `json:"disabled"`
	WithDevices int `json:"with_devices"`

	Matches []AuditMatch `json:"matches"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Matched returns the number of matches found.
func (s *AuditSummary) Matched() int {
	return len(s.Matches)
}
