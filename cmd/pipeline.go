// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/canonical/device-audit/internal/audit"
	"github.com/canonical/device-audit/internal/config"
	"github.com/canonical/device-audit/internal/directory"
	"github.com/canonical/device-audit/internal/loader"
	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/report"
	"github.com/canonical/device-audit/internal/storage"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

// pipeline wires one audit run: load, connect, audit, write, record.
type pipeline struct {
	specs *config.EnvSpec

	loader  loader.LoaderInterface
	connect func(context.Context) (directory.ClientInterface, string, error)
	writer  report.WriterInterface
	// store is nil when no run history is kept
	store storage.StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (p *pipeline) run(ctx context.Context) (*types.AuditSummary, error) {
	ctx, span := p.tracer.Start(ctx, "cmd.pipeline.run")
	defer span.End()

	records, err := p.loader.Load(ctx, p.specs.InputColumn)
	if err != nil {
		return nil, err
	}
	p.logger.Infof("Loaded %d records from %s", len(records), p.inputName())

	client, account, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect()

	auditor := audit.NewAuditor(
		client,
		audit.NewLogReporter(p.logger),
		p.specs.DeviceErrorsAsNone,
		p.tracer,
		p.monitor,
		p.logger,
	)

	summary, err := auditor.Run(ctx, records, p.specs.InputColumn)
	if err != nil {
		return summary, fmt.Errorf("audit interrupted after %d of %d records: %w", summary.Processed, len(records), err)
	}

	p.logger.Infof("Found %d active users with no registered devices", summary.Matched())
	p.logger.Debugf(
		"Run %s: processed=%d skipped=%d failed=%d disabled=%d with_devices=%d",
		summary.RunID, summary.Processed, summary.Skipped, summary.Failed, summary.Disabled, summary.WithDevices,
	)

	if err := p.writer.Write(ctx, p.specs.OutputPath, summary.Matches); err != nil {
		return summary, err
	}

	if p.store == nil {
		return summary, nil
	}

	run := types.NewAuditRun(summary, types.InputSource(p.specs.InputSource), p.inputName(), p.specs.InputColumn, p.specs.OutputPath)
	run.Account = account

	if err := p.store.SaveRun(ctx, run, summary.Matches); err != nil {
		return summary, fmt.Errorf("report written to %s but the run history was not updated: %w", p.specs.OutputPath, err)
	}
	p.logger.Infof("Run %s recorded", run.ID)

	return summary, nil
}

func (p *pipeline) inputName() string {
	if types.InputSource(p.specs.InputSource) == types.InputSourceSalesforce {
		return "salesforce"
	}
	return p.specs.InputPath
}
