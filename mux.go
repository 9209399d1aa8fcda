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

import "fmt"

// Mux register defaults for the SigmaStar board
const (
	DefaultMuxRegister = 0x1f207994
	DefaultMuxPWM0     = 0x1102
	DefaultMuxPWM1     = 0x1121
	DefaultMuxCombined = 0x1122 // routes both outputs at once
)

// MuxMode selects when the pin mux register is written
type MuxMode int

const (
	// MuxDisabled never touches the register
	MuxDisabled MuxMode = iota
	// MuxPerChannel writes once per output during its initialization
	MuxPerChannel
	// MuxCombined writes one combined value before any output is initialized.
	// The register is overwritten as a whole, so sequential per-channel
	// writes would undo each other's routing when both outputs are used.
	MuxCombined
)

func (m MuxMode) String() string {
	switch m {
	case MuxDisabled:
		return "disabled"
	case MuxPerChannel:
		return "per-channel"
	case MuxCombined:
		return "one-shot"
	default:
		return fmt.Sprintf("MuxMode(%d)", int(m))
	}
}

// MuxStrategy is the resolved mux plan, fixed at startup
type MuxStrategy struct {
	Register   uint64
	PerChannel [NumOutputs]uint16
	Combined   uint16
	Mode       MuxMode
}

// RegisterWriter writes a 16-bit value to a physical register
type RegisterWriter interface {
	WriteRegister(addr uint64, value uint16) error
}

// RegisterWriterFunc adapts a function to RegisterWriter
type RegisterWriterFunc func(addr uint64, value uint16) error

// WriteRegister implements RegisterWriter
func (f RegisterWriterFunc) WriteRegister(addr uint64, value uint16) error {
	return f(addr, value)
}

// ResolveMux decides the mux strategy from the configuration.
//
// An explicit --no-mux wins over everything. An explicit --mux-init-val
// selects a one-shot write and cannot be combined with per-channel values.
// Without explicit choices, two enabled outputs get the combined write.
func (c *Config) ResolveMux() (MuxStrategy, error) {
	m := c.Mux
	if m.Disabled {
		return MuxStrategy{Mode: MuxDisabled}, nil
	}

	reg, err := ParseRegister(m.Register)
	if err != nil {
		return MuxStrategy{}, &ConfigError{Option: "mux-reg", Value: m.Register, Reason: err.Error()}
	}

	strategy := MuxStrategy{
		Register:   reg,
		PerChannel: [NumOutputs]uint16{valueOr(m.PWM0, DefaultMuxPWM0), valueOr(m.PWM1, DefaultMuxPWM1)},
		Combined:   valueOr(m.InitValue, DefaultMuxCombined),
	}

	explicitPerChannel := m.PWM0 != nil || m.PWM1 != nil
	switch {
	case m.InitValue != nil && explicitPerChannel:
		return MuxStrategy{}, &ConfigError{
			Option: "mux-init-val",
			Value:  fmt.Sprintf("%#04x", *m.InitValue),
			Reason: "cannot be combined with --mux-pwm0/--mux-pwm1",
			Err:    ErrAmbiguousMux,
		}
	case m.InitValue != nil:
		strategy.Mode = MuxCombined
	case explicitPerChannel:
		strategy.Mode = MuxPerChannel
	case c.PWM0Channel > 0 && c.PWM1Channel > 0:
		strategy.Mode = MuxCombined
	default:
		strategy.Mode = MuxPerChannel
	}
	return strategy, nil
}

func valueOr(v *uint16, def uint16) uint16 {
	if v != nil {
		return *v
	}
	return def
}
