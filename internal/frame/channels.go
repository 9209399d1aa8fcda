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

package frame

// Channels holds decoded channel pulse widths in microseconds, CH1 at index 0
type Channels [NumChannels]int

// Ticks holds raw 11-bit channel values
type Ticks [NumChannels]uint16

// TicksToMicroseconds converts a raw channel value to a pulse width.
// 992 ticks is the 1500us center; integer division truncates toward zero.
func TicksToMicroseconds(ticks int) int {
	return (ticks-CenterTicks)*5/8 + CenterMicros
}

// MicrosecondsToTicks returns the tick value whose pulse width is closest to us
func MicrosecondsToTicks(us int) uint16 {
	estimate := (us-CenterMicros)*8/5 + CenterTicks

	best, bestDiff := 0, -1
	for t := estimate - 1; t <= estimate+1; t++ {
		if t < 0 || t > MaxChannelTicks {
			continue
		}
		diff := TicksToMicroseconds(t) - us
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = t, diff
		}
	}
	if bestDiff < 0 {
		if estimate < 0 {
			return 0
		}
		return MaxChannelTicks
	}
	return uint16(best)
}

// UnpackTicks decodes 16 packed 11-bit channel values from an RC payload
func UnpackTicks(payload []byte) (Ticks, error) {
	var ticks Ticks
	if len(payload) < RCPayloadLength {
		return ticks, ErrInsufficientData
	}

	r := NewBitReader(payload[:RCPayloadLength])
	for ch := range ticks {
		v, err := r.ReadBits(ChannelBits)
		if err != nil {
			return ticks, err
		}
		ticks[ch] = uint16(v)
	}
	return ticks, nil
}

// UnpackChannels decodes an RC payload into pulse widths
func UnpackChannels(payload []byte) (Channels, error) {
	var channels Channels
	ticks, err := UnpackTicks(payload)
	if err != nil {
		return channels, err
	}
	for ch, t := range ticks {
		channels[ch] = TicksToMicroseconds(int(t))
	}
	return channels, nil
}

// PackTicks packs 16 channel values into a 22-byte RC payload.
// Values above 2047 are truncated to 11 bits.
func PackTicks(ticks Ticks) []byte {
	w := &BitWriter{data: make([]byte, 0, RCPayloadLength)}
	for _, t := range ticks {
		_ = w.WriteBits(uint32(t)&MaxChannelTicks, ChannelBits)
	}
	return w.Bytes()
}

// PackChannels packs pulse widths into a 22-byte RC payload
func PackChannels(channels Channels) []byte {
	var ticks Ticks
	for ch, us := range channels {
		ticks[ch] = MicrosecondsToTicks(us)
	}
	return PackTicks(ticks)
}
