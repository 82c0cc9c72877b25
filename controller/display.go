package controller

import "lidkeeper"

// Display is the attached status screen. The core only ever writes to it.
type Display interface {
	ShowStatus(mode lidkeeper.OperatingMode, line1, line2 string)
	PowerOff()
}

type noopDisplay struct{}

var _ Display = noopDisplay{}

// ShowStatus implements Display.
func (noopDisplay) ShowStatus(mode lidkeeper.OperatingMode, line1, line2 string) {}

// PowerOff implements Display.
func (noopDisplay) PowerOff() {}
