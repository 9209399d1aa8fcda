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

// Package frame provides CRSF framing, checksum and channel decoding
package frame

// Frame addresses - only frames aimed at the flight controller are accepted
const (
	AddrFlightController = 0xC8 // Destination address of RC channel frames
)

// Frame types
const (
	TypeRCChannelsPacked = 0x16 // 16 packed 11-bit channels
)

// Frame size limits
const (
	MinFrameLength = 2  // Smallest length field (type + crc)
	MaxFrameLength = 62 // Largest length field CRSF allows
	MaxFrameSize   = MaxFrameLength + 2
	MinScanBytes   = 4 // address + length + type + crc
	headerSize     = 2 // address + length
)

// Channel payload layout
const (
	NumChannels      = 16
	ChannelBits      = 11
	RCPayloadLength  = NumChannels * ChannelBits / 8 // 22 bytes
	MaxChannelTicks  = 1<<ChannelBits - 1
	CenterTicks      = 992
	CenterMicros     = 1500
	DefaultCapacity  = 4096 // Reassembly buffer capacity
	MaxDatagramBytes = 1500
)
