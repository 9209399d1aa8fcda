//go:build !linux

package mux

import "fmt"

// DefaultMemPath is the physical memory device
const DefaultMemPath = "/dev/mem"

// PhysMem is only supported on Linux
type PhysMem struct {
	Path string
}

// WriteRegister always fails off Linux
func (*PhysMem) WriteRegister(addr uint64, _ uint16) error {
	return fmt.Errorf("%w: %#x: /dev/mem mapping needs linux", ErrRegisterWrite, addr)
}
