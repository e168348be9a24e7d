// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

var _ LoaderInterface = (*FileLoader)(nil)

// FileLoader reads identity records from a CSV file or an XLSX workbook.
type FileLoader struct {
	path string

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (l *FileLoader) Load(ctx context.Context, column string) ([]types.InputRecord, error) {
	_, span := l.tracer.Start(ctx, "loader.FileLoader.Load")
	defer span.End()

	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l.path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, l.path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, l.path)
	}

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readExcel(l.path)
	case ".csv", ".txt", "":
		rows, err = readCSV(l.path)
	default:
		return nil, fmt.Errorf("%w: %s, expected .csv, .txt, .xlsx or .xlsm", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	records, err := tableToRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	if err := validateColumn(records, column, headers); err != nil {
		return nil, err
	}

	l.logger.Debugf("Loaded %d records from %s", len(records), l.path)

	return records, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	defer f.Close()

	// honours UTF-8 and UTF-16 byte order marks, plain UTF-8 otherwise
	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv %s: %w", path, err)
	}

	return rows, nil
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx %s: %w", path, err)
	}

	return rows, nil
}

// NewFileLoader creates a loader for the CSV or XLSX file at path, the format is
// picked from the extension. Files without extension are read as CSV.
func NewFileLoader(path string, tracer tracing.TracingInterface, logger logging.LoggerInterface) *FileLoader {
	l := new(FileLoader)

	l.path = path

	l.tracer = tracer
	l.logger = logger

	return l
}
