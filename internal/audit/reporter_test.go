// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogReporter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewLogReporter(zap.New(core).Sugar())

	r.Progress(2, 5, "a@x.com")
	r.Diagnostic(3, "b@x.com", errors.New("not found"))
	r.Diagnostic(4, "", ErrBlankIdentifier)

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	expected := []struct {
		level   string
		message string
	}{
		{"info", "[2/5] Checking a@x.com"},
		{"warn", "Record 3 (b@x.com) skipped: not found"},
		{"warn", "Record 4 skipped: identifier is blank"},
	}

	for i, e := range expected {
		if entries[i].Level.String() != e.level {
			t.Errorf("entry %d: expected level %s, got %s", i, e.level, entries[i].Level)
		}
		if entries[i].Message != e.message {
			t.Errorf("entry %d: expected %q, got %q", i, e.message, entries[i].Message)
		}
	}
}
