//go:build tinygo

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"lidkeeper"
	"lidkeeper/controller"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// oledDisplay renders controller status on the SSD1306.
type oledDisplay struct {
	dev ssd1306.Device
}

var _ controller.Display = (*oledDisplay)(nil)

func newOLED(bus *machine.I2C) *oledDisplay {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Width:   128,
		Height:  64,
		Address: ssd1306.Address,
	})
	dev.ClearDisplay()
	return &oledDisplay{dev: dev}
}

// ShowStatus implements controller.Display.
func (d *oledDisplay) ShowStatus(mode lidkeeper.OperatingMode, line1, line2 string) {
	d.dev.Sleep(false)
	d.dev.ClearBuffer()
	tinyfont.WriteLine(&d.dev, &proggy.TinySZ8pt7b, 0, 12, mode.String(), white)
	tinyfont.WriteLine(&d.dev, &proggy.TinySZ8pt7b, 0, 32, line1, white)
	tinyfont.WriteLine(&d.dev, &proggy.TinySZ8pt7b, 0, 52, line2, white)
	d.dev.Display()
}

// PowerOff implements controller.Display.
func (d *oledDisplay) PowerOff() {
	d.dev.Sleep(true)
}
