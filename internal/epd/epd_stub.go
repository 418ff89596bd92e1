//go:build !(linux && arm)

// Skeleton driver for non-linux/arm targets. The real SPI driver only
// builds on linux/arm; everywhere else this stub keeps the package
// compiling so that render-only runs and tests work on any machine.
package epd

import (
	"context"
	"fmt"
)

// Panel geometry.
const (
	Width     = 800
	Height    = 480
	planeSize = Width / 8 * Height
)

// Driver is the no-hardware stand-in for the SPI driver.
type Driver struct{}

// Open always fails off-target; callers should use -render-only there.
func Open(_ context.Context) (*Driver, error) {
	return nil, fmt.Errorf("epd: SPI driver is only available on linux/arm")
}

var errNoHardware = fmt.Errorf("epd: no hardware on this platform")

func (d *Driver) Init() error { return errNoHardware }

func (d *Driver) Clear() error { return errNoHardware }

func (d *Driver) Display(black, red []byte) error { return errNoHardware }

func (d *Driver) Sleep() error { return errNoHardware }

func (d *Driver) Close() error { return errNoHardware }
