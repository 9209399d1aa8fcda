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

// Stats counts what the bridge has seen since startup
type Stats struct {
	Datagrams       uint64 `json:"datagrams"`
	Bytes           uint64 `json:"bytes"`
	EmptyDatagrams  uint64 `json:"empty_datagrams"`
	ReceiveErrors   uint64 `json:"receive_errors"`
	Overruns        uint64 `json:"overruns"`
	OverrunBytes    uint64 `json:"overrun_bytes"`
	FramesSeen      uint64 `json:"frames_seen"`
	FramesCRCOK     uint64 `json:"frames_crc_ok"`
	FramesBadCRC    uint64 `json:"frames_bad_crc"`
	FramesBadAddr   uint64 `json:"frames_bad_addr"`
	FramesBadLength uint64 `json:"frames_bad_length"`
	RCFrames        uint64 `json:"rc_frames"`
	RCIgnored       uint64 `json:"rc_ignored"`
	Centerings      uint64 `json:"centerings"`
	Recoveries      uint64 `json:"recoveries"`
	OutputWrites    uint64 `json:"output_writes"`
	OutputFailures  uint64 `json:"output_failures"`
}

func (s *Stats) addScan(res frame.Result) {
	s.FramesSeen += uint64(res.FramesSeen)
	s.FramesCRCOK += uint64(res.FramesCRCOK)
	s.FramesBadCRC += uint64(res.FramesBadCRC)
	s.FramesBadAddr += uint64(res.FramesBadAddr)
	s.FramesBadLength += uint64(res.FramesBadLength)
	s.RCFrames += uint64(res.RCFrames)
	s.RCIgnored += uint64(res.RCIgnored)
}
