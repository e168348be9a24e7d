// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/device-audit/internal/directory"
	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_audit.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_directory.go -source=../directory/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_monitor.go -source=../monitoring/interfaces.go

func records(column string, values ...string) []types.InputRecord {
	r := make([]types.InputRecord, 0, len(values))
	for _, v := range values {
		r = append(r, types.InputRecord{column: v, "Department": "Engineering"})
	}
	return r
}

func user(id, name, upn string, enabled bool) *types.DirectoryUser {
	return &types.DirectoryUser{ID: id, DisplayName: name, UserPrincipalName: upn, AccountEnabled: enabled}
}

func newTestAuditor(client directory.ClientInterface, reporter ReporterInterface, compat bool) *Auditor {
	return NewAuditor(
		client,
		reporter,
		compat,
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("device-audit"),
		logging.NewNoopLogger(),
	)
}

func TestAuditorRun(t *testing.T) {
	deviceErr := &directory.DeviceLookupError{UserID: "id-b", Err: errors.New("throttled")}
	lookupErr := &directory.LookupError{Identifier: "ghost@x.com", Err: &directory.APIError{StatusCode: 404, Code: "Request_ResourceNotFound"}}

	tests := []struct {
		name       string
		input      []types.InputRecord
		compat     bool
		setupMocks func(*MockClientInterface, *MockReporterInterface)
		expected   []types.AuditMatch
		summary    types.AuditSummary
	}{
		{
			name:  "enabled user without device, blank row and disabled user",
			input: records("mail", "a@x.com", "", "b@x.com"),
			setupMocks: func(client *MockClientInterface, reporter *MockReporterInterface) {
				gomock.InOrder(
					reporter.EXPECT().Progress(1, 3, "a@x.com"),
					client.EXPECT().GetUser(gomock.Any(), "a@x.com").Return(user("id-a", "Ann", "a@x.com", true), nil),
					client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-a").Return(false, nil),
					reporter.EXPECT().Diagnostic(2, "", ErrBlankIdentifier),
					reporter.EXPECT().Progress(3, 3, "b@x.com"),
					client.EXPECT().GetUser(gomock.Any(), "b@x.com").Return(user("id-b", "Bob", "b@x.com", false), nil),
				)
			},
			expected: []types.AuditMatch{
				{UserPrincipalName: "a@x.com", DisplayName: "Ann", Status: types.StatusActive, DeviceCount: 0},
			},
			summary: types.AuditSummary{Processed: 3, Skipped: 1, Disabled: 1},
		},
		{
			name:  "matches keep input order",
			input: records("UserPrincipalName", "c@x.com", "a@x.com", "b@x.com"),
			setupMocks: func(client *MockClientInterface, reporter *MockReporterInterface) {
				reporter.EXPECT().Progress(gomock.Any(), 3, gomock.Any()).Times(3)
				for _, id := range []string{"c", "a", "b"} {
					client.EXPECT().GetUser(gomock.Any(), id+"@x.com").Return(user("id-"+id, id, id+"@x.com", true), nil)
					client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-"+id).Return(false, nil)
				}
			},
			expected: []types.AuditMatch{
				{UserPrincipalName: "c@x.com", DisplayName: "c", Status: types.StatusActive},
				{UserPrincipalName: "a@x.com", DisplayName: "a", Status: types.StatusActive},
				{UserPrincipalName: "b@x.com", DisplayName: "b", Status: types.StatusActive},
			},
			summary: types.AuditSummary{Processed: 3},
		},
		{
			name:  "user with a device is left out",
			input: records("mail", "a@x.com"),
			setupMocks: func(client *MockClientInterface, reporter *MockReporterInterface) {
				reporter.EXPECT().Progress(1, 1, "a@x.com")
				client.EXPECT().GetUser(gomock.Any(), "a@x.com").Return(user("id-a", "Ann", "a@x.com", true), nil)
				client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-a").Return(true, nil)
			},
			expected: []types.AuditMatch{},
			summary:  types.AuditSummary{Processed: 1, WithDevices: 1},
		},
		{
			name:  "user lookup failure does not stop the run",
			input: records("mail", "ghost@x.com", "a@x.com"),
			setupMocks: func(client *MockClientInterface, reporter *MockReporterInterface) {
				reporter.EXPECT().Progress(gomock.Any(), 2, gomock.Any()).Times(2)
				client.EXPECT().GetUser(gomock.Any(), "ghost@x.com").Return(nil, lookupErr)
				reporter.EXPECT().Diagnostic(1, "ghost@x.com", lookupErr)
				client.EXPECT().GetUser(gomock.Any(), "a@x.com").Return(user("id-a", "Ann", "a@x.com", true), nil)
				client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-a").Return(false, nil)
			},
			expected: []types.AuditMatch{
				{UserPrincipalName: "a@x.com", DisplayName: "Ann", Status: types.StatusActive},
			},
			summary: types.AuditSummary{Processed: 2, Failed: 1},
		},
		{
			name:  "device lookup failure skips the record",
			input: records("mail", "b@x.com"),
			setupMocks: func(client *MockClientInterface, reporter *MockReporterInterface) {
				reporter.EXPECT().Progress(1, 1, "b@x.com")
				client.EXPECT().GetUser(gomock.Any(), "b@x.com").Return(user("id-b", "Bob", "b@x.com", true), nil)
				client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-b").Return(false, deviceErr)
				reporter.EXPECT().Diagnostic(1, "b@x.com", deviceErr)
			},
			expected: []types.AuditMatch{},
			summary:  types.AuditSummary{Processed: 1, Failed: 1},
		},
		{
			name:   "device lookup failure counts as no device when asked to",
			input:  records("mail", "b@x.com"),
			compat: true,
			setupMocks: func(client *MockClientInterface, reporter *MockReporterInterface) {
				reporter.EXPECT().Progress(1, 1, "b@x.com")
				client.EXPECT().GetUser(gomock.Any(), "b@x.com").Return(user("id-b", "Bob", "b@x.com", true), nil)
				client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-b").Return(false, deviceErr)
			},
			expected: []types.AuditMatch{
				{UserPrincipalName: "b@x.com", DisplayName: "Bob", Status: types.StatusActive},
			},
			summary: types.AuditSummary{Processed: 1},
		},
		{
			name:  "identifier is trimmed and whitespace only is blank",
			input: records("mail", "  a@x.com ", "   "),
			setupMocks: func(client *MockClientInterface, reporter *MockReporterInterface) {
				reporter.EXPECT().Progress(1, 2, "a@x.com")
				client.EXPECT().GetUser(gomock.Any(), "a@x.com").Return(user("id-a", "Ann", "a@x.com", true), nil)
				client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-a").Return(true, nil)
				reporter.EXPECT().Diagnostic(2, "", ErrBlankIdentifier)
			},
			expected: []types.AuditMatch{},
			summary:  types.AuditSummary{Processed: 2, Skipped: 1, WithDevices: 1},
		},
		{
			name:       "no records",
			input:      []types.InputRecord{},
			setupMocks: func(*MockClientInterface, *MockReporterInterface) {},
			expected:   []types.AuditMatch{},
			summary:    types.AuditSummary{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := NewMockClientInterface(ctrl)
			reporter := NewMockReporterInterface(ctrl)
			test.setupMocks(client, reporter)

			column := "mail"
			if len(test.input) > 0 {
				for k := range test.input[0] {
					if k != "Department" {
						column = k
					}
				}
			}

			summary, err := newTestAuditor(client, reporter, test.compat).Run(context.Background(), test.input, column)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if summary.RunID == "" {
				t.Error("expected a run id")
			}
			if summary.FinishedAt.Before(summary.StartedAt) {
				t.Errorf("finished %v before started %v", summary.FinishedAt, summary.StartedAt)
			}

			if len(summary.Matches) != len(test.expected) {
				t.Fatalf("expected %d matches, got %d: %v", len(test.expected), len(summary.Matches), summary.Matches)
			}
			for i, m := range summary.Matches {
				if m != test.expected[i] {
					t.Errorf("match %d: expected %+v, got %+v", i, test.expected[i], m)
				}
			}

			if summary.Processed != test.summary.Processed ||
				summary.Skipped != test.summary.Skipped ||
				summary.Failed != test.summary.Failed ||
				summary.Disabled != test.summary.Disabled ||
				summary.WithDevices != test.summary.WithDevices {
				t.Errorf("expected counters %+v, got %+v", test.summary, *summary)
			}
		})
	}
}

func TestAuditorRunMissingColumnValueIsBlank(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockClientInterface(ctrl)
	reporter := NewMockReporterInterface(ctrl)
	reporter.EXPECT().Diagnostic(1, "", ErrBlankIdentifier)

	summary, err := newTestAuditor(client, reporter, false).Run(
		context.Background(),
		[]types.InputRecord{{"other": "a@x.com"}},
		"mail",
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Skipped != 1 || summary.Matched() != 0 {
		t.Errorf("expected a single skipped record, got %+v", *summary)
	}
}

func TestAuditorRunCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())

	client := NewMockClientInterface(ctrl)
	reporter := NewMockReporterInterface(ctrl)
	reporter.EXPECT().Progress(1, 3, "a@x.com")
	client.EXPECT().GetUser(gomock.Any(), "a@x.com").Return(user("id-a", "Ann", "a@x.com", true), nil)
	client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-a").DoAndReturn(
		func(context.Context, string) (bool, error) {
			cancel()
			return false, nil
		},
	)

	summary, err := newTestAuditor(client, reporter, false).Run(ctx, records("mail", "a@x.com", "b@x.com", "c@x.com"), "mail")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary == nil {
		t.Fatal("expected a partial summary")
	}
	if summary.Processed != 1 || summary.Matched() != 1 {
		t.Errorf("expected one processed record and one match, got %+v", *summary)
	}
}

func TestAuditorRunCountsOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockClientInterface(ctrl)
	reporter := NewMockReporterInterface(ctrl)
	monitor := NewMockMonitorInterface(ctrl)

	reporter.EXPECT().Progress(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	reporter.EXPECT().Diagnostic(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	client.EXPECT().GetUser(gomock.Any(), "a@x.com").Return(user("id-a", "Ann", "a@x.com", true), nil)
	client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-a").Return(false, nil)
	client.EXPECT().GetUser(gomock.Any(), "b@x.com").Return(user("id-b", "Bob", "b@x.com", false), nil)
	client.EXPECT().GetUser(gomock.Any(), "c@x.com").Return(user("id-c", "Cat", "c@x.com", true), nil)
	client.EXPECT().HasRegisteredDevice(gomock.Any(), "id-c").Return(true, nil)
	client.EXPECT().GetUser(gomock.Any(), "d@x.com").Return(nil, errors.New("boom"))

	gomock.InOrder(
		monitor.EXPECT().IncRecordOutcome(map[string]string{"outcome": OutcomeMatched}).Return(nil),
		monitor.EXPECT().IncRecordOutcome(map[string]string{"outcome": OutcomeDisabled}).Return(nil),
		monitor.EXPECT().IncRecordOutcome(map[string]string{"outcome": OutcomeSkipped}).Return(nil),
		monitor.EXPECT().IncRecordOutcome(map[string]string{"outcome": OutcomeHasDevice}).Return(nil),
		monitor.EXPECT().IncRecordOutcome(map[string]string{"outcome": OutcomeFailed}).Return(errors.New("unregistered")),
	)

	a := NewAuditor(client, reporter, false, tracing.NewNoopTracer(), monitor, logging.NewNoopLogger())

	summary, err := a.Run(context.Background(), records("mail", "a@x.com", "b@x.com", "", "c@x.com", "d@x.com"), "mail")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Matched() != 1 {
		t.Errorf("expected 1 match, got %d", summary.Matched())
	}
}
