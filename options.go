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
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTick bounds how long the loop blocks waiting for input, and so the
// failsafe check period
const DefaultTick = 20 * time.Millisecond

// Option is a functional option for configuring a Bridge or Gateway
type Option func(*settings) error

type settings struct {
	logger         *log.Logger
	now            func() time.Time
	observers      []LinkObserver
	tick           time.Duration
	bufferCapacity int
}

func defaultSettings() *settings {
	return &settings{
		logger: discardLogger(),
		now:    time.Now,
		tick:   DefaultTick,
	}
}

func applyOptions(opts []Option) (*settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *settings) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		s.now = now
		return nil
	}
}

// WithTick sets the receive timeout of the loop
func WithTick(tick time.Duration) Option {
	return func(s *settings) error {
		if tick <= 0 {
			return errors.New("tick must be positive")
		}
		s.tick = tick
		return nil
	}
}

// WithObserver adds a link state observer
func WithObserver(observer LinkObserver) Option {
	return func(s *settings) error {
		if observer == nil {
			return errors.New("observer cannot be nil")
		}
		s.observers = append(s.observers, observer)
		return nil
	}
}

// WithBufferCapacity sets the reassembly buffer size
func WithBufferCapacity(capacity int) Option {
	return func(s *settings) error {
		if capacity < 0 {
			return errors.New("buffer capacity cannot be negative")
		}
		s.bufferCapacity = capacity
		return nil
	}
}
