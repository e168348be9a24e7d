// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package loader

import (
	"context"
	"fmt"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/salesforce"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

var _ LoaderInterface = (*SalesforceLoader)(nil)

// SalesforceLoader reads identity records from the result of a SOQL query,
// each queried field becomes a column.
type SalesforceLoader struct {
	client salesforce.SalesforceInterface
	query  string

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (l *SalesforceLoader) Load(ctx context.Context, column string) ([]types.InputRecord, error) {
	_, span := l.tracer.Start(ctx, "loader.SalesforceLoader.Load")
	defer span.End()

	rs := []map[string]any{}
	if err := l.client.Query(l.query, &rs); err != nil {
		return nil, fmt.Errorf("failed to query salesforce: %w", err)
	}

	if len(rs) == 0 {
		return nil, fmt.Errorf("salesforce query: %w", ErrEmptyInput)
	}

	records := make([]types.InputRecord, 0, len(rs))
	for _, r := range rs {
		record := make(types.InputRecord, len(r))
		for k, v := range r {
			// salesforce adds type and url metadata to every record
			if k == "attributes" {
				continue
			}
			record[k] = fieldValue(v)
		}
		records = append(records, record)
	}

	if err := validateColumn(records, column, nil); err != nil {
		return nil, err
	}

	l.logger.Debugf("Loaded %d records from salesforce", len(records))

	return records, nil
}

func fieldValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func NewSalesforceLoader(client salesforce.SalesforceInterface, query string, tracer tracing.TracingInterface, logger logging.LoggerInterface) *SalesforceLoader {
	l := new(SalesforceLoader)

	l.client = client
	l.query = query
	if l.query == "" {
		l.query = salesforce.DefaultTeamMemberQuery
	}

	l.tracer = tracer
	l.logger = logger

	return l
}
