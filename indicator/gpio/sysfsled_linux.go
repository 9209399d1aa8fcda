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

//go:build linux

package gpio

import (
	"fmt"

	"github.com/charmbracelet/log"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/sysfs"
)

// OpenSysfsLED drives the /sys/class/leds entry called name
func OpenSysfsLED(name string, logger *log.Logger) (*LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	led, err := sysfs.LEDByName(name)
	if err != nil {
		return nil, fmt.Errorf("open led %s: %w", name, err)
	}
	if err := led.Out(pgpio.Low); err != nil {
		return nil, fmt.Errorf("clear led %s: %w", name, err)
	}
	return New(&sysfsLine{led: led}, logger), nil
}

type sysfsLine struct {
	led *sysfs.LED
}

func (s *sysfsLine) SetValue(value int) error {
	return s.led.Out(pgpio.Level(value != 0))
}

func (s *sysfsLine) Close() error {
	return s.led.Out(pgpio.Low)
}
