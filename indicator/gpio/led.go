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

// Package gpio drives a link status LED on a GPIO line or a sysfs LED
package gpio

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	crsfpwm "github.com/waybeam/go-crsfpwm"
)

// Consumer is the label shown for requested lines in gpioinfo
const Consumer = "crsfpwm-link"

// ErrUnsupported is returned where link LEDs cannot be driven
var ErrUnsupported = errors.New("link LEDs need linux")

// Line is an output line
type Line interface {
	SetValue(value int) error
	Close() error
}

// LED lights while the link is active or holding, and goes dark when idle
// or centered by the failsafe
type LED struct {
	line   Line
	logger *log.Logger
	mu     sync.Mutex
	lit    bool
}

// New wraps an output line requested low
func New(line Line, logger *log.Logger) *LED {
	return &LED{line: line, logger: logger}
}

// LinkStateChanged implements crsfpwm.LinkObserver
func (l *LED) LinkStateChanged(ev crsfpwm.LinkEvent) {
	on := ev.To == crsfpwm.LinkActive || ev.To == crsfpwm.LinkHeld
	l.set(on)
}

// Lit reports the LED state
func (l *LED) Lit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lit
}

func (l *LED) set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on == l.lit {
		return
	}
	value := 0
	if on {
		value = 1
	}
	if err := l.line.SetValue(value); err != nil {
		l.logger.Warn("link LED write failed", "err", err)
		return
	}
	l.lit = on
}

// Close turns the LED off and releases the line
func (l *LED) Close() error {
	l.set(false)
	return l.line.Close()
}
