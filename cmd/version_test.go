// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	previous := version
	version = "1.2.3"
	defer func() { version = previous }()

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	if strings.TrimSpace(out.String()) != "1.2.3" {
		t.Errorf("expected 1.2.3, got %q", out.String())
	}
}

func TestAppVersionFallback(t *testing.T) {
	previous := version
	version = ""
	defer func() { version = previous }()

	if appVersion() == "" {
		t.Error("expected a version even without ldflags")
	}
}
