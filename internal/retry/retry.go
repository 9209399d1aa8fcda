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

// Package retry provides small retry loops for flaky device writes and for
// waiting on nodes the kernel creates asynchronously
package retry

import (
	"errors"
	"fmt"
	"time"
)

// Retry errors
var (
	ErrExhausted = errors.New("retries exhausted")
	ErrTimeout   = errors.New("timed out")
)

// Operation is a function that can be retried.
// It returns the result, whether to try again, and a permanent error that
// stops retrying.
type Operation[T any] func() (T, bool, error)

// Config configures WithRetry
type Config struct {
	OnRetry     func(attempt int) error
	Description string
	MaxRetries  int
	Delay       time.Duration
}

// WithRetry runs operation until it stops asking for a retry, fails
// permanently, or MaxRetries extra attempts were made
func WithRetry[T any](config Config, operation Operation[T]) (T, error) {
	var zero T

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, again, err := operation()
		if err != nil {
			return zero, err
		}
		if !again {
			return result, nil
		}
		if attempt >= config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(attempt + 1); err != nil {
				return zero, err
			}
		}
		if config.Delay > 0 {
			time.Sleep(config.Delay)
		}
	}

	return zero, fmt.Errorf("%s: %w after %d attempts", describe(config.Description), ErrExhausted, config.MaxRetries+1)
}

// Poll retries operation every interval until it succeeds, fails
// permanently, or timeout elapses. The operation runs at least once.
func Poll[T any](timeout, interval time.Duration, operation Operation[T]) (T, error) {
	var zero T
	if interval <= 0 {
		interval = time.Millisecond
	}
	deadline := time.Now().Add(timeout)

	for {
		result, again, err := operation()
		if err != nil {
			return zero, err
		}
		if !again {
			return result, nil
		}
		if !time.Now().Before(deadline) {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		time.Sleep(interval)
	}
}

func describe(s string) string {
	if s == "" {
		return "operation"
	}
	return s
}
