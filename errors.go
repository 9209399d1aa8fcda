// go-crsfpwm
// Copyright (c) 2026 The Waybeam Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-crsfpwm.
//
// go-crsfpwm is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-crsfpwm is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-crsfpwm; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package crsfpwm

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// Source errors
var (
	ErrNoData       = errors.New("no data before deadline")
	ErrSourceClosed = errors.New("source closed")
)

// Configuration and output errors
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrAmbiguousMux      = errors.New("ambiguous mux strategy")
	ErrOutputUnavailable = errors.New("output unavailable")
)

// ConfigError names the option that failed validation
type ConfigError struct {
	Err    error
	Option string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid --%s: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("invalid value for --%s: %s (%s)", e.Option, e.Value, e.Reason)
}

// Unwrap returns the underlying error, ErrInvalidConfig when none is set
func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfig
}

// NewConfigError creates a configuration error for option
func NewConfigError(option string, value any, reason string) *ConfigError {
	return &ConfigError{
		Option: option,
		Value:  fmt.Sprint(value),
		Reason: reason,
	}
}

// SourceError wraps a receive failure with whether it is worth retrying
type SourceError struct {
	Err       error
	Op        string
	Source    string
	Retryable bool
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a source error
func NewSourceError(op, source string, err error, retryable bool) *SourceError {
	return &SourceError{
		Op:        op,
		Source:    source,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable reports whether err is a benign receive error after which the
// loop should simply wait for the next tick
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNoData) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Retryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
