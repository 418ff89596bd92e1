//go:build linux && arm

// Package epd provides a SPI-based driver for the Waveshare 7.5" black/red
// (B) V2 e-paper panel, implemented in pure Go using periph.io instead of
// the vendor C/Python SDK. The DEV_* layer (GPIO/SPI wiring) and the
// EPD_7IN5B_V2_* register sequences are ported from the vendor reference.
package epd

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Panel geometry.
const (
	Width     = 800
	Height    = 480
	planeSize = Width / 8 * Height
)

// BCM pin numbers from the Waveshare HAT wiring (DEV_Config).
const (
	bcmEPDRST  = 17
	bcmEPDDC   = 25
	bcmEPDCS   = 8
	bcmEPDBUSY = 24
	bcmEPDPWR  = 18
)

// Panel command set (subset used by this driver).
const (
	cmdPanelSetting   = 0x00
	cmdPowerSetting   = 0x01
	cmdPowerOff       = 0x02
	cmdPowerOn        = 0x04
	cmdDeepSleep      = 0x07
	cmdDataStartBlack = 0x10
	cmdDisplayRefresh = 0x12
	cmdDataStartRed   = 0x13
	cmdDualSPI        = 0x15
	cmdVCOMInterval   = 0x50
	cmdTCONSetting    = 0x60
	cmdResolution     = 0x61
	cmdGetStatus      = 0x71
)

// busyTimeout bounds the BUSY polling loops. A full refresh on this panel
// takes on the order of 15-20 seconds.
const busyTimeout = 60 * time.Second

// dev wraps the SPI bus and GPIO pins, the Go equivalent of the C DEV_* layer.
type dev struct {
	spi spi.Conn

	cs   gpio.PinOut
	dc   gpio.PinOut
	rst  gpio.PinOut
	pwr  gpio.PinOut
	busy gpio.PinIn
}

// Driver is the high-level handle used by the presenter. It satisfies the
// display.Panel interface.
type Driver struct {
	dev *dev
}

// Open initializes periph.io, opens the SPI bus, and configures all GPIO
// pins. It does not touch the panel; call Init for the wake-up sequence.
func Open(_ context.Context) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("epd: periph host init failed: %w", err)
	}

	// Default SPI port; on Raspberry Pi this is /dev/spidev0.0.
	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("epd: failed to open SPI port: %w", err)
	}

	const maxHz = 4_000_000
	spiConn, err := port.Connect(maxHz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("epd: failed to connect SPI: %w", err)
	}

	gpioOut := func(num int, level gpio.Level) (gpio.PinOut, error) {
		name := fmt.Sprintf("GPIO%d", num)
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("epd: gpio %s not found", name)
		}
		if err := p.Out(level); err != nil {
			return nil, fmt.Errorf("epd: gpio %s Out failed: %w", name, err)
		}
		return p, nil
	}

	rst, err := gpioOut(bcmEPDRST, gpio.High)
	if err != nil {
		return nil, err
	}
	dc, err := gpioOut(bcmEPDDC, gpio.Low)
	if err != nil {
		return nil, err
	}
	cs, err := gpioOut(bcmEPDCS, gpio.High)
	if err != nil {
		return nil, err
	}
	pwr, err := gpioOut(bcmEPDPWR, gpio.High)
	if err != nil {
		return nil, err
	}

	busyName := fmt.Sprintf("GPIO%d", bcmEPDBUSY)
	busy := gpioreg.ByName(busyName)
	if busy == nil {
		return nil, fmt.Errorf("epd: gpio %s not found", busyName)
	}
	if err := busy.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("epd: gpio %s In failed: %w", busyName, err)
	}

	return &Driver{dev: &dev{
		spi:  spiConn,
		cs:   cs,
		dc:   dc,
		rst:  rst,
		pwr:  pwr,
		busy: busy,
	}}, nil
}

// Close releases the SPI port and drops panel power.
func (d *Driver) Close() error {
	_ = d.dev.pwr.Out(gpio.Low)
	if closer, ok := d.dev.spi.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Init wakes the panel and programs the power/panel/resolution registers,
// the port of EPD_7IN5B_V2_Init.
func (d *Driver) Init() error {
	d.reset()

	// Power setting: VGH=20V, VGL=-20V, VDH=15V, VDL=-15V.
	if err := d.sendCommand(cmdPowerSetting); err != nil {
		return err
	}
	if err := d.sendData(0x07, 0x07, 0x3F, 0x3F); err != nil {
		return err
	}

	if err := d.sendCommand(cmdPowerOn); err != nil {
		return err
	}
	delayMs(100)
	if err := d.readBusy(); err != nil {
		return err
	}

	// Panel setting: KWR mode, LUT from OTP.
	if err := d.sendCommand(cmdPanelSetting); err != nil {
		return err
	}
	if err := d.sendData(0x0F); err != nil {
		return err
	}

	// Resolution: 800 source lines, 480 gate lines.
	if err := d.sendCommand(cmdResolution); err != nil {
		return err
	}
	if err := d.sendData(0x03, 0x20, 0x01, 0xE0); err != nil {
		return err
	}

	if err := d.sendCommand(cmdDualSPI); err != nil {
		return err
	}
	if err := d.sendData(0x00); err != nil {
		return err
	}

	// VCOM and data interval.
	if err := d.sendCommand(cmdVCOMInterval); err != nil {
		return err
	}
	if err := d.sendData(0x11, 0x07); err != nil {
		return err
	}

	if err := d.sendCommand(cmdTCONSetting); err != nil {
		return err
	}
	return d.sendData(0x22)
}

// Clear flushes both channels to white and refreshes.
func (d *Driver) Clear() error {
	white := make([]byte, planeSize)
	for i := range white {
		white[i] = 0xFF
	}
	none := make([]byte, planeSize) // red channel: 0 = no ink after inversion

	if err := d.sendCommand(cmdDataStartBlack); err != nil {
		return err
	}
	if err := d.sendBulk(white); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDataStartRed); err != nil {
		return err
	}
	if err := d.sendBulk(none); err != nil {
		return err
	}
	return d.refresh()
}

// Display transmits both planes and refreshes the panel. black and red are
// 1bpp MSB-first planes of exactly Width/8*Height bytes; the red plane is
// inverted on the wire per the vendor protocol.
func (d *Driver) Display(black, red []byte) error {
	if len(black) != planeSize || len(red) != planeSize {
		return fmt.Errorf("epd: plane size must be %d bytes, got black=%d red=%d",
			planeSize, len(black), len(red))
	}

	if err := d.sendCommand(cmdDataStartBlack); err != nil {
		return err
	}
	if err := d.sendBulk(black); err != nil {
		return err
	}

	inverted := make([]byte, planeSize)
	for i, b := range red {
		inverted[i] = ^b
	}
	if err := d.sendCommand(cmdDataStartRed); err != nil {
		return err
	}
	if err := d.sendBulk(inverted); err != nil {
		return err
	}

	return d.refresh()
}

// Sleep powers the panel down into deep sleep. The panel glass degrades
// under sustained drive voltage, so this must run after every refresh.
func (d *Driver) Sleep() error {
	if err := d.sendCommand(cmdPowerOff); err != nil {
		return err
	}
	if err := d.readBusy(); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDeepSleep); err != nil {
		return err
	}
	return d.sendData(0xA5)
}

// --- low-level helpers (DEV_* ports) ---

// reset pulses the RST line, the port of EPD_Reset.
func (d *Driver) reset() {
	digitalWrite(d.dev.rst, true)
	delayMs(200)
	digitalWrite(d.dev.rst, false)
	delayMs(4)
	digitalWrite(d.dev.rst, true)
	delayMs(200)
}

func (d *Driver) refresh() error {
	if err := d.sendCommand(cmdDisplayRefresh); err != nil {
		return err
	}
	delayMs(100)
	return d.readBusy()
}

// sendCommand writes one register byte with DC low.
func (d *Driver) sendCommand(reg byte) error {
	digitalWrite(d.dev.dc, false)
	digitalWrite(d.dev.cs, false)
	err := d.dev.spi.Tx([]byte{reg}, nil)
	digitalWrite(d.dev.cs, true)
	return err
}

// sendData writes parameter bytes with DC high.
func (d *Driver) sendData(data ...byte) error {
	digitalWrite(d.dev.dc, true)
	digitalWrite(d.dev.cs, false)
	err := d.dev.spi.Tx(data, nil)
	digitalWrite(d.dev.cs, true)
	return err
}

// sendBulk streams a full plane with DC high, chunked below the kernel's
// SPI transfer ceiling.
func (d *Driver) sendBulk(data []byte) error {
	const chunk = 2048

	digitalWrite(d.dev.dc, true)
	digitalWrite(d.dev.cs, false)
	defer digitalWrite(d.dev.cs, true)

	for off := 0; off < len(data); off += chunk {
		end := off + chunk
		if end > len(data) {
			end = len(data)
		}
		if err := d.dev.spi.Tx(data[off:end], nil); err != nil {
			return err
		}
	}
	return nil
}

// readBusy polls the BUSY pin until the panel reports idle, the port of
// EPD_7IN5B_V2_ReadBusy (busy is active-low on this panel).
func (d *Driver) readBusy() error {
	deadline := time.Now().Add(busyTimeout)
	for {
		if err := d.sendCommand(cmdGetStatus); err != nil {
			return err
		}
		if digitalRead(d.dev.busy) {
			delayMs(20)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("epd: busy wait timed out after %s", busyTimeout)
		}
		delayMs(10)
	}
}

func digitalWrite(pin gpio.PinOut, value bool) {
	if value {
		_ = pin.Out(gpio.High)
	} else {
		_ = pin.Out(gpio.Low)
	}
}

func digitalRead(pin gpio.PinIn) bool {
	return pin.Read() == gpio.High
}

func delayMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
