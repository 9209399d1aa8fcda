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

// centeredPayload is an RC payload with every channel at 992 ticks
var centeredPayload = []byte{
	0xE0, 0x03, 0x1F, 0xF8, 0xC0, 0x07, 0x3E, 0xF0, 0x81, 0x0F, 0x7C,
	0xE0, 0x03, 0x1F, 0xF8, 0xC0, 0x07, 0x3E, 0xF0, 0x81, 0x0F, 0x7C,
}

// centeredFrame is a complete RC frame with every channel centered
var centeredFrame = append([]byte{AddrFlightController, 0x18, TypeRCChannelsPacked},
	append(append([]byte{}, centeredPayload...), 0xAD)...)

func mustEncode(addr, frameType byte, payload []byte) []byte {
	frm, err := Encode(addr, frameType, payload)
	if err != nil {
		panic(err)
	}
	return frm
}

func channelsFrame(us int) []byte {
	var ch Channels
	for i := range ch {
		ch[i] = us
	}
	return EncodeChannels(ch)
}
