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

// Buffer is a bounded reassembly buffer for an unstructured byte stream.
//
// When input arrives faster than it can be decoded the oldest bytes are
// evicted so the newest data always fits. Buffer is not safe for concurrent use.
type Buffer struct {
	data     []byte
	capacity int
}

// NewBuffer creates a reassembly buffer holding at most capacity bytes.
// A non-positive capacity selects DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		data:     make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Feed appends p to the buffer and returns how many bytes were dropped to
// stay within capacity. An oversized chunk is truncated from its front
// before the buffer's own oldest bytes are evicted.
func (b *Buffer) Feed(p []byte) (dropped int) {
	if len(p) == 0 {
		return 0
	}
	if len(p) > b.capacity {
		dropped = len(p) - b.capacity
		p = p[dropped:]
	}
	if over := len(b.data) + len(p) - b.capacity; over > 0 {
		b.Consume(over)
		dropped += over
	}
	b.data = append(b.data, p...)
	return dropped
}

// Consume removes the first n bytes, compacting the remainder to the front
func (b *Buffer) Consume(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.data) {
		b.data = b.data[:0]
		return
	}
	remaining := copy(b.data, b.data[n:])
	b.data = b.data[:remaining]
}

// Bytes returns a view of the buffered bytes, valid until the next Feed or Consume
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of buffered bytes
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the buffer capacity
func (b *Buffer) Cap() int {
	return b.capacity
}

// Reset discards all buffered bytes
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}
