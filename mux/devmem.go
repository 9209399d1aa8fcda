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

// Package mux writes the SoC pin mux register that routes PWM signals to pins
package mux

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrRegisterWrite wraps every failed register write
var ErrRegisterWrite = errors.New("register write failed")

// Devmem writes registers by running a devmem helper, as shipped by BusyBox
type Devmem struct {
	// Binary is the helper to run, looked up in PATH when not absolute
	Binary string
}

// WriteRegister runs "devmem <addr> 16 <value>"
func (d *Devmem) WriteRegister(addr uint64, value uint16) error {
	bin := d.Binary
	if bin == "" {
		bin = "devmem"
	}
	cmd := exec.Command(bin, fmt.Sprintf("%#x", addr), "16", fmt.Sprintf("0x%04x", value))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrRegisterWrite, bin, err, msg)
		}
		return fmt.Errorf("%w: %s: %w", ErrRegisterWrite, bin, err)
	}
	return nil
}
