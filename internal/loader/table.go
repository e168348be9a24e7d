// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package loader

import (
	"sort"
	"strings"

	"github.com/canonical/device-audit/internal/types"
)

// tableToRecords turns raw rows, header first, into records keyed by the
// trimmed header cells. Short rows are padded and long rows truncated. A named
// column may appear only once, blank header cells are ignored.
func tableToRecords(rows [][]string) ([]types.InputRecord, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			continue
		}
		if first, ok := seen[headers[i]]; ok {
			return nil, &DuplicateColumnError{Column: headers[i], First: first + 1, Second: i + 1}
		}
		seen[headers[i]] = i
	}

	records := make([]types.InputRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		row = padRow(row, len(headers))

		record := make(types.InputRecord, len(headers))
		for i, h := range headers {
			record[h] = row[i]
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	return records, nil
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}

	padded := make([]string, length)
	copy(padded, row)

	return padded
}

// validateColumn checks the identifier column against the first record only,
// every record of a table shares the same keys.
func validateColumn(records []types.InputRecord, column string, headers []string) error {
	if len(records) == 0 {
		return ErrEmptyInput
	}

	if _, ok := records[0][column]; ok {
		return nil
	}

	if headers == nil {
		headers = make([]string, 0, len(records[0]))
		for k := range records[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}

	return &MissingColumnError{Column: column, Available: headers}
}
