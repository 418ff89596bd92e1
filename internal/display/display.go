// Package display drives a composed dashboard image onto the e-paper panel:
// init, clear, transmit both planes, sleep.
package display

import (
	"fmt"
	"image"

	"epdweather/internal/convert"
	appLog "epdweather/internal/log"
)

// Panel is the one deliberate hardware abstraction in this program. The SPI
// driver implements it on linux/arm; tests use a recording fake.
type Panel interface {
	Init() error
	Clear() error
	Display(black, red []byte) error
	Sleep() error
}

// Show runs the full presentation sequence for one image. The panel always
// receives a blank red plane; this application only uses the black channel.
//
// Sleep is mandatory once Init has succeeded: sustained drive voltage
// damages the panel glass, so even a failed clear or transfer still ends in
// a sleep attempt before the error propagates.
func Show(panel Panel, img *image.Gray) error {
	black, err := convert.PackGray(img)
	if err != nil {
		appLog.Error("image packing failed", err)
		return err
	}
	red := convert.BlankPlane()

	appLog.Info("initializing e-paper panel")
	if err := panel.Init(); err != nil {
		appLog.Error("panel init failed", err)
		return fmt.Errorf("display: init: %w", err)
	}

	if err := show(panel, black, red); err != nil {
		if serr := panel.Sleep(); serr != nil {
			appLog.Error("panel sleep after failure also failed", serr)
		}
		return err
	}

	appLog.Info("putting panel to sleep")
	if err := panel.Sleep(); err != nil {
		appLog.Error("panel sleep failed", err)
		return fmt.Errorf("display: sleep: %w", err)
	}
	return nil
}

func show(panel Panel, black, red []byte) error {
	if err := panel.Clear(); err != nil {
		appLog.Error("panel clear failed", err)
		return fmt.Errorf("display: clear: %w", err)
	}

	appLog.Info("sending image to panel (a full refresh takes ~15-20s)")
	if err := panel.Display(black, red); err != nil {
		appLog.Error("panel display failed", err)
		return fmt.Errorf("display: transmit: %w", err)
	}
	return nil
}
