//go:build tinygo

package main

import (
	"machine"

	"lidkeeper"
	"lidkeeper/commands"
	"lidkeeper/controller"
)

// rig gives the calibration console raw access to the motor and sensors,
// bypassing the mode loops.
type rig struct {
	stepper *controller.Stepper
	sensors *controller.Sensors
	cfg     controller.Config
}

var _ commands.Machine = (*rig)(nil)

func (r *rig) Move(steps int32) {
	r.stepper.Move(steps)
}

func (r *rig) OpenLid() {
	r.stepper.Actuate(lidkeeper.DirectionOpen, r.cfg.CloseRevolutions, r.cfg.StepSleepOpen)
}

func (r *rig) CloseLid() {
	r.stepper.Actuate(lidkeeper.DirectionClose, r.cfg.CloseRevolutions, r.cfg.StepSleepClose)
}

func (r *rig) MeasureBrightness() uint16 {
	return r.sensors.MeasureBrightness()
}

func (r *rig) MeasureDistance() (float64, error) {
	return r.sensors.MeasureDistance()
}

func (r *rig) Baseline() float64 {
	return r.sensors.Baseline()
}

func (r *rig) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (r *rig) WriteByte(b byte) error {
	return machine.Serial.WriteByte(b)
}
