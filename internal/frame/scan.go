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

// Frame is a checksum-valid frame located by a scan. Payload aliases the
// scanned buffer and is only valid during the visit callback.
type Frame struct {
	Payload []byte
	Address byte
	Length  byte
	Type    byte
	CRC     byte
}

// Result aggregates what one scan pass found in the buffer
type Result struct {
	// Channels holds the last valid RC frame of the pass when HasChannels is set
	Channels Channels

	FramesSeen      int // candidate positions examined
	FramesCRCOK     int // frames with a valid checksum
	FramesBadCRC    int // structurally plausible frames with a bad checksum
	FramesBadAddr   int // positions rejected on the address byte
	FramesBadLength int // positions rejected on the length byte
	RCFrames        int // valid RC channel frames decoded
	RCIgnored       int // valid RC channel frames with the wrong payload size

	HasChannels bool
}

// Scan examines buf for CRSF frames starting at offset 0.
//
// It never modifies buf. Any validation failure advances exactly one byte so
// a real frame boundary hidden inside garbage is never skipped. Scanning stops
// when fewer than MinScanBytes remain or when a candidate frame is incomplete.
// The returned count is the number of leading bytes the caller may discard.
func Scan(buf []byte) (consumed int, res Result) {
	return ScanFrames(buf, nil)
}

// ScanFrames is Scan with a callback invoked for every checksum-valid frame
// in stream order. visit may be nil.
func ScanFrames(buf []byte, visit func(Frame)) (consumed int, res Result) {
	i := 0
	for len(buf)-i >= MinScanBytes {
		addr := buf[i]
		length := int(buf[i+1])
		res.FramesSeen++

		if addr != AddrFlightController {
			res.FramesBadAddr++
			i++
			continue
		}

		if length < MinFrameLength || length > MaxFrameLength {
			res.FramesBadLength++
			i++
			continue
		}

		total := length + headerSize
		if len(buf)-i < total {
			break
		}

		frm := buf[i : i+total]
		body := frm[headerSize : total-1] // type + payload
		if CRC8(body) != frm[total-1] {
			res.FramesBadCRC++
			i++
			continue
		}
		res.FramesCRCOK++

		frameType, payload := body[0], body[1:]
		if visit != nil {
			visit(Frame{
				Address: addr,
				Length:  byte(length),
				Type:    frameType,
				Payload: payload,
				CRC:     frm[total-1],
			})
		}
		if frameType == TypeRCChannelsPacked {
			decodeRC(payload, &res)
		}

		i += total
	}
	return i, res
}

func decodeRC(payload []byte, res *Result) {
	if len(payload) != RCPayloadLength {
		res.RCIgnored++
		return
	}
	channels, err := UnpackChannels(payload)
	if err != nil {
		res.RCIgnored++
		return
	}
	res.Channels = channels
	res.HasChannels = true
	res.RCFrames++
}
