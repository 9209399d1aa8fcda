//go:build !linux

package gpio

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// OpenSysfsLED is not supported off Linux
func OpenSysfsLED(name string, _ *log.Logger) (*LED, error) {
	return nil, fmt.Errorf("open led %s: %w", name, ErrUnsupported)
}
