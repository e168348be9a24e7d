// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package report

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

var _ WriterInterface = (*Writer)(nil)

// Writer produces the CSV report of the audit.
type Writer struct {
	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// Write stores matches at path with the report header first, replacing any
// existing file. The parent directory must already exist. Rows go to a
// temporary file in the same directory which is then renamed over path, so
// path either keeps its previous content or holds the complete report.
func (w *Writer) Write(ctx context.Context, path string, matches []types.AuditMatch) error {
	_, span := w.tracer.Start(ctx, "report.Writer.Write")
	defer span.End()

	span.SetAttributes(attribute.String("path", path), attribute.Int("rows", len(matches)))

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: directory %s: %v", ErrInvalidDestination, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDestination, dir)
	}

	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidDestination, path)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	buffered := bufio.NewWriter(tempFile)
	csvWriter := csv.NewWriter(buffered)

	if err := csvWriter.Write(types.ReportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range matches {
		if err := csvWriter.Write(m.Row()); err != nil {
			return fmt.Errorf("write row %s: %w", m.UserPrincipalName, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("flush buffered rows: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync report file: %w", err)
	}
	// CreateTemp uses 0600, reports are meant to be shared
	if err := tempFile.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod report file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("promote report file: %w", err)
	}
	cleanup = false

	w.logger.Infof("Report written to %s", path)

	return nil
}

func NewWriter(tracer tracing.TracingInterface, logger logging.LoggerInterface) *Writer {
	w := new(Writer)

	w.tracer = tracer
	w.logger = logger

	return w
}
