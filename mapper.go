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

import "github.com/waybeam/go-crsfpwm/internal/frame"

// Assignment is one output command derived from a channel frame
type Assignment struct {
	Output  int // PWM output index
	Channel int // CRSF channel, 1-based
	RawUS   int // pulse width before clamping
	US      int // pulse width clamped to the configured range
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MapChannels selects the configured channel for each enabled output and
// clamps it to the pulse range
func MapChannels(cfg *Config, channels frame.Channels) []Assignment {
	out := make([]Assignment, 0, NumOutputs)
	for i := 0; i < NumOutputs; i++ {
		ch := cfg.Channel(i)
		if ch < 1 || ch > frame.NumChannels {
			continue
		}
		raw := channels[ch-1]
		out = append(out, Assignment{
			Output:  i,
			Channel: ch,
			RawUS:   raw,
			US:      Clamp(raw, cfg.MinUS, cfg.MaxUS),
		})
	}
	return out
}
