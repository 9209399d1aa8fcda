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

import (
	"io"

	"github.com/charmbracelet/log"
)

// TraceVerbosity enables per-datagram and per-write trace lines
const TraceVerbosity = 3

// NewLogger returns a logger for the -v count: 0 warnings, 1 info,
// 2 and up debug
func NewLogger(w io.Writer, verbosity int) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           LevelFor(verbosity),
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Prefix:          "crsfpwm",
	})
}

// LevelFor maps a verbosity count to a log level
func LevelFor(verbosity int) log.Level {
	switch {
	case verbosity <= 0:
		return log.WarnLevel
	case verbosity == 1:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
