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

package uart

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port a receiver might be attached to
type PortInfo struct {
	Path         string
	VIDPID       string
	Product      string
	SerialNumber string
	USB          bool
}

// ListPorts returns the serial ports on this host, skipping ignored paths
func ListPorts(ignore []string) ([]PortInfo, error) {
	return listPorts(enumerator.GetDetailedPortsList, ignore)
}

func listPorts(lister func() ([]*enumerator.PortDetails, error), ignore []string) ([]PortInfo, error) {
	details, err := lister()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || IsPathIgnored(d.Name, ignore) {
			continue
		}
		info := PortInfo{Path: d.Name, USB: d.IsUSB}
		if d.IsUSB {
			info.VIDPID = strings.ToUpper(d.VID + ":" + d.PID)
			info.Product = d.Product
			info.SerialNumber = d.SerialNumber
		}
		ports = append(ports, info)
	}
	return ports, nil
}

// String formats the port for a listing
func (p PortInfo) String() string {
	if !p.USB {
		return p.Path
	}
	s := p.Path + " [" + p.VIDPID + "]"
	if p.Product != "" {
		s += " " + p.Product
	}
	if p.SerialNumber != "" {
		s += " (" + p.SerialNumber + ")"
	}
	return s
}

// IsPathIgnored reports whether devicePath matches one of ignorePaths after
// cleaning. The comparison ignores case.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	for _, p := range ignorePaths {
		if p != "" && normalizedPath(p) == device {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
