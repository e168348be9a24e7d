// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("directory authentication failed")
	ErrLookup         = errors.New("user lookup failed")
	ErrDeviceLookup   = errors.New("registered device lookup failed")
	ErrSessionClosed  = errors.New("directory session is closed")
)

// APIError is a non 2xx answer of the directory API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("directory API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("directory API returned status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// LookupError means the identifier did not resolve to exactly one account,
// whatever the reason: not found, ambiguous, denied or unreachable.
type LookupError struct {
	Identifier string
	Err        error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s for %q: %v", ErrLookup, e.Identifier, e.Err)
}

func (e *LookupError) Unwrap() []error {
	return []error{ErrLookup, e.Err}
}

// DeviceLookupError means the registered devices of a user could not be
// listed. It never stands for "no device".
type DeviceLookupError struct {
	UserID string
	Err    error
}

func (e *DeviceLookupError) Error() string {
	return fmt.Sprintf("%s for user %s: %v", ErrDeviceLookup, e.UserID, e.Err)
}

func (e *DeviceLookupError) Unwrap() []error {
	return []error{ErrDeviceLookup, e.Err}
}
