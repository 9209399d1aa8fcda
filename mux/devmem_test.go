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

//go:build unix

package mux

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevmem writes a script that records its arguments. Tests using it do
// not run in parallel: exec of a script another goroutine is still writing
// fails with ETXTBSY.
func fakeDevmem(t *testing.T, exitCode int) (bin, argsFile string) {
	t.Helper()
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	bin = filepath.Join(dir, "devmem")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\necho 'bus error' >&2\nexit " +
		strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o700))
	return bin, argsFile
}

func TestDevmemWriteRegister(t *testing.T) {
	bin, argsFile := fakeDevmem(t, 0)
	d := &Devmem{Binary: bin}
	require.NoError(t, d.WriteRegister(0x1f207994, 0x1122))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "0x1f207994 16 0x1122\n", string(args))
}

func TestDevmemFailure(t *testing.T) {
	bin, _ := fakeDevmem(t, 1)
	err := (&Devmem{Binary: bin}).WriteRegister(0x1f207994, 0x0102)
	require.ErrorIs(t, err, ErrRegisterWrite)
	assert.Contains(t, err.Error(), "bus error")
}

func TestDevmemMissingBinary(t *testing.T) {
	t.Parallel()

	err := (&Devmem{Binary: filepath.Join(t.TempDir(), "nope")}).WriteRegister(0x1f207994, 1)
	assert.ErrorIs(t, err, ErrRegisterWrite)
}
