//go:build !linux

package gpio

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Open is not supported off Linux
func Open(chip string, offset int, _ *log.Logger) (*LED, error) {
	return nil, fmt.Errorf("request %s:%d: %w", chip, offset, ErrUnsupported)
}
