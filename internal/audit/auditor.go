// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/device-audit/internal/directory"
	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

const (
	OutcomeMatched   = "matched"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeDisabled  = "disabled"
	OutcomeHasDevice = "has_device"
)

var ErrBlankIdentifier = errors.New("identifier is blank")

// Auditor finds the enabled accounts without any registered device among a
// list of identity records.
type Auditor struct {
	client   directory.ClientInterface
	reporter ReporterInterface

	// deviceErrorsAsNone counts a failed device lookup as "no device"
	deviceErrorsAsNone bool

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Run audits records in order, one lookup at a time. A record failing its
// lookups is reported and left out, it never stops the run. Matches keep the
// order of records. The only error returned is the cancellation of ctx,
// together with the summary of the records handled so far.
func (a *Auditor) Run(ctx context.Context, records []types.InputRecord, column string) (*types.AuditSummary, error) {
	ctx, span := a.tracer.Start(ctx, "audit.Auditor.Run")
	defer span.End()

	summary := &types.AuditSummary{
		RunID:     uuid.NewString(),
		Matches:   make([]types.AuditMatch, 0),
		StartedAt: time.Now().UTC(),
	}
	span.SetAttributes(attribute.String("run_id", summary.RunID), attribute.Int("records", len(records)))

	a.logger.Debugf("Starting audit run %s on %d records", summary.RunID, len(records))

	total := len(records)
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, err
		}

		summary.Processed++
		outcome := a.audit(ctx, i+1, total, record[column], summary)
		a.count(outcome)
	}

	summary.FinishedAt = time.Now().UTC()
	span.SetAttributes(attribute.Int("matches", summary.Matched()))

	return summary, nil
}

func (a *Auditor) audit(ctx context.Context, index, total int, value string, summary *types.AuditSummary) string {
	identifier := strings.TrimSpace(value)
	if identifier == "" {
		summary.Skipped++
		a.reporter.Diagnostic(index, "", ErrBlankIdentifier)
		return OutcomeSkipped
	}

	a.reporter.Progress(index, total, identifier)

	user, err := a.client.GetUser(ctx, identifier)
	if err != nil {
		summary.Failed++
		a.reporter.Diagnostic(index, identifier, err)
		return OutcomeFailed
	}

	if !user.AccountEnabled {
		summary.Disabled++
		return OutcomeDisabled
	}

	hasDevice, err := a.client.HasRegisteredDevice(ctx, user.ID)
	if err != nil {
		if !a.deviceErrorsAsNone {
			summary.Failed++
			a.reporter.Diagnostic(index, identifier, err)
			return OutcomeFailed
		}
		a.logger.Warnf("Counting %s as without device after a failed lookup: %v", identifier, err)
		hasDevice = false
	}

	if hasDevice {
		summary.WithDevices++
		return OutcomeHasDevice
	}

	summary.Matches = append(summary.Matches, types.NewAuditMatch(user))
	return OutcomeMatched
}

func (a *Auditor) count(outcome string) {
	if err := a.monitor.IncRecordOutcome(map[string]string{"outcome": outcome}); err != nil {
		a.logger.Debugf("Failed to count outcome %s: %v", outcome, err)
	}
}

// NewAuditor creates an Auditor on an open directory session. With
// deviceErrorsAsNone a failed device lookup is handled as a user without
// device instead of a skipped record.
func NewAuditor(
	client directory.ClientInterface,
	reporter ReporterInterface,
	deviceErrorsAsNone bool,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Auditor {
	a := new(Auditor)

	a.client = client
	a.reporter = reporter
	a.deviceErrorsAsNone = deviceErrorsAsNone

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
