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

// maxBitWidth is the widest field that fits a 24-bit window at any bit offset
const maxBitWidth = 17

// Bit packing errors
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrBitWidth         = errors.New("bit width out of range")
)

// BitReader reads fixed-width unsigned fields packed least-significant-bit
// first with no padding between fields.
type BitReader struct {
	data []byte
	pos  int
}

// NewBitReader creates a reader positioned at bit 0 of data
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// ReadBits returns the next width bits. A field may straddle up to three
// bytes; they are composed into a 24-bit window, shifted by the intra-byte
// offset and masked.
func (r *BitReader) ReadBits(width int) (uint32, error) {
	if width <= 0 || width > maxBitWidth {
		return 0, ErrBitWidth
	}
	if r.pos+width > len(r.data)*8 {
		return 0, ErrInsufficientData
	}

	bytePos := r.pos >> 3
	shift := r.pos & 7

	var window uint32
	for i := 0; i < 3 && bytePos+i < len(r.data); i++ {
		window |= uint32(r.data[bytePos+i]) << (8 * i)
	}

	r.pos += width
	return (window >> shift) & (1<<width - 1), nil
}

// Remaining returns the number of unread bits
func (r *BitReader) Remaining() int {
	return len(r.data)*8 - r.pos
}

// BitWriter packs fixed-width fields least-significant-bit first
type BitWriter struct {
	data []byte
	pos  int
}

// WriteBits appends the low width bits of v
func (w *BitWriter) WriteBits(v uint32, width int) error {
	if width <= 0 || width > maxBitWidth {
		return ErrBitWidth
	}
	for i := 0; i < width; i++ {
		if w.pos>>3 >= len(w.data) {
			w.data = append(w.data, 0)
		}
		if v&(1<<i) != 0 {
			w.data[w.pos>>3] |= 1 << (w.pos & 7)
		}
		w.pos++
	}
	return nil
}

// Bytes returns the packed bytes; a trailing partial byte is zero padded
func (w *BitWriter) Bytes() []byte {
	return w.data
}
