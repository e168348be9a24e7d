// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/device-audit/internal/db"
	"github.com/canonical/device-audit/internal/types"
)

// postgres caps a statement at 65535 bind parameters
const matchBatchSize = 5000

var matchColumns = []string{"run_id", "position", "user_principal_name", "display_name", "status", "device_count"}

var runColumns = []string{
	"id", "source", "input", "input_column", "output", "account",
	"processed", "skipped", "failed", "disabled", "with_devices", "matched",
	"started_at", "finished_at", "created_at",
}

// SaveRun stores a completed run and its matches in a single transaction.
// Matches are inserted in batches of matchBatchSize rows.
func (s *Storage) SaveRun(ctx context.Context, run *types.AuditRun, matches []types.AuditMatch) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.SaveRun")
	defer span.End()

	return s.db.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.db.Statement(ctx).
			Insert("audit_runs").
			Columns(
				"id", "source", "input", "input_column", "output", "account",
				"processed", "skipped", "failed", "disabled", "with_devices", "matched",
				"started_at", "finished_at",
			).
			Values(
				run.ID, string(run.Source), run.Input, run.Column, run.Output, run.Account,
				run.Processed, run.Skipped, run.Failed, run.Disabled, run.WithDevices, run.Matched,
				run.StartedAt, run.FinishedAt,
			).
			ExecContext(ctx)
		if err != nil {
			if IsDuplicateKeyError(err) {
				return WrapDuplicateKeyError(err, "run already stored")
			}
			return fmt.Errorf("failed to insert run: %v", err)
		}

		if len(matches) == 0 {
			return nil
		}

		for start := 0; start < len(matches); start += matchBatchSize {
			end := min(start+matchBatchSize, len(matches))

			insert := s.db.Statement(ctx).
				Insert("audit_matches").
				Columns(matchColumns...)

			for i := start; i < end; i++ {
				m := matches[i]
				insert = insert.Values(run.ID, i, m.UserPrincipalName, m.DisplayName, m.Status, m.DeviceCount)
			}

			if _, err := insert.ExecContext(ctx); err != nil {
				if IsForeignKeyViolation(err) {
					return WrapForeignKeyError(err, "run does not exist")
				}
				return fmt.Errorf("failed to insert matches %d to %d: %v", start, end-1, err)
			}
		}

		return nil
	})
}

// GetRun retrieves a single run by id.
func (s *Storage) GetRun(ctx context.Context, id string) (*types.AuditRun, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.GetRun")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(runColumns...).
		From("audit_runs").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run: %v", err)
	}

	return run, nil
}

// ListRuns retrieves a page of runs, most recent first.
func (s *Storage) ListRuns(ctx context.Context, page, size int64) ([]*types.AuditRun, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListRuns")
	defer span.End()

	pageSize := db.PageSize(size)

	rows, err := s.db.Statement(ctx).
		Select(runColumns...).
		From("audit_runs").
		OrderBy("started_at DESC", "id ASC").
		Limit(pageSize).
		Offset(db.Offset(page, pageSize)).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %v", err)
	}
	defer rows.Close()

	runs := make([]*types.AuditRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %v", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %v", err)
	}

	return runs, nil
}

// ListRunMatches retrieves the matches of a run in report order.
func (s *Storage) ListRunMatches(ctx context.Context, id string) ([]types.AuditMatch, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListRunMatches")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("user_principal_name", "display_name", "status", "device_count").
		From("audit_matches").
		Where(sq.Eq{"run_id": id}).
		OrderBy("position ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %v", err)
	}
	defer rows.Close()

	matches := make([]types.AuditMatch, 0)
	for rows.Next() {
		var m types.AuditMatch
		if err := rows.Scan(&m.UserPrincipalName, &m.DisplayName, &m.Status, &m.DeviceCount); err != nil {
			return nil, fmt.Errorf("failed to scan match: %v", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %v", err)
	}

	return matches, nil
}

// scanRun scans a database row into an AuditRun struct.
func scanRun(row interface{ Scan(...interface{}) error }) (*types.AuditRun, error) {
	run := &types.AuditRun{}
	var source string

	err := row.Scan(
		&run.ID,
		&source,
		&run.Input,
		&run.Column,
		&run.Output,
		&run.Account,
		&run.Processed,
		&run.Skipped,
		&run.Failed,
		&run.Disabled,
		&run.WithDevices,
		&run.Matched,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Source = types.InputSource(source)

	return run, nil
}
