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

import "errors"

// ErrPayloadTooLarge is returned when a payload cannot fit a single frame
var ErrPayloadTooLarge = errors.New("payload too large for CRSF frame")

// Encode builds a complete frame: address, length, type, payload, crc
func Encode(addr, frameType byte, payload []byte) ([]byte, error) {
	length := len(payload) + 2 // type + crc
	if length > MaxFrameLength {
		return nil, ErrPayloadTooLarge
	}

	frm := make([]byte, 0, length+headerSize)
	frm = append(frm, addr, byte(length), frameType)
	frm = append(frm, payload...)
	frm = append(frm, CRC8(frm[headerSize:]))
	return frm, nil
}

// EncodeChannels builds an RC channel frame addressed to the flight controller
func EncodeChannels(channels Channels) []byte {
	frm, _ := Encode(AddrFlightController, TypeRCChannelsPacked, PackChannels(channels))
	return frm
}
