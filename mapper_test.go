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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waybeam/go-crsfpwm/internal/frame"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1000, Clamp(880, 1000, 2000))
	assert.Equal(t, 2000, Clamp(2119, 1000, 2000))
	assert.Equal(t, 1500, Clamp(1500, 1000, 2000))
	assert.Equal(t, 1000, Clamp(1000, 1000, 2000))
}

func TestMapChannels(t *testing.T) {
	t.Parallel()

	var channels frame.Channels
	for i := range channels {
		channels[i] = 1000 + 50*i
	}
	channels[0] = 880   // below range
	channels[15] = 2119 // above range

	tests := []struct {
		name string
		want []Assignment
		pwm0 int
		pwm1 int
	}{
		{
			name: "default mapping clamps",
			pwm0: 1,
			pwm1: 2,
			want: []Assignment{
				{Output: 0, Channel: 1, RawUS: 880, US: 1000},
				{Output: 1, Channel: 2, RawUS: 1050, US: 1050},
			},
		},
		{
			name: "disabled output is skipped",
			pwm0: 0,
			pwm1: 16,
			want: []Assignment{
				{Output: 1, Channel: 16, RawUS: 2119, US: 2000},
			},
		},
		{
			name: "same channel on both outputs",
			pwm0: 5,
			pwm1: 5,
			want: []Assignment{
				{Output: 0, Channel: 5, RawUS: 1200, US: 1200},
				{Output: 1, Channel: 5, RawUS: 1200, US: 1200},
			},
		},
		{
			name: "neither output",
			want: []Assignment{},
		},
	}

	for _, tt := range tests {
		tt := tt // capture loop variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			cfg.PWM0Channel, cfg.PWM1Channel = tt.pwm0, tt.pwm1
			assert.Equal(t, tt.want, MapChannels(cfg, channels))
		})
	}
}
