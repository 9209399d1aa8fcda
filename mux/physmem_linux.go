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

//go:build linux

package mux

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultMemPath is the physical memory device
const DefaultMemPath = "/dev/mem"

// PhysMem writes registers by mapping physical memory directly, for systems
// without a devmem helper
type PhysMem struct {
	// Path defaults to /dev/mem
	Path string
}

// WriteRegister maps the page holding addr and stores a 16-bit value
func (m *PhysMem) WriteRegister(addr uint64, value uint16) error {
	if addr%2 != 0 {
		return fmt.Errorf("%w: unaligned address %#x", ErrRegisterWrite, addr)
	}
	path := m.Path
	if path == "" {
		path = DefaultMemPath
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegisterWrite, err)
	}
	defer f.Close()

	pageSize := uint64(unix.Getpagesize())
	base := addr &^ (pageSize - 1)
	offset := addr - base

	mem, err := unix.Mmap(int(f.Fd()), int64(base), int(pageSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("%w: mmap %s at %#x: %w", ErrRegisterWrite, path, base, err)
	}
	defer func() { _ = unix.Munmap(mem) }()

	*(*uint16)(unsafe.Pointer(&mem[offset])) = value
	return nil
}
