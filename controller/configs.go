package controller

import "time"

const (
	defaultStepDelay   = 2000 * time.Microsecond
	defaultConsolePoll = 50 * time.Millisecond
	defaultEchoTimeout = 30 * time.Millisecond
)

// Config has the calibration constants for an installation. All values are
// fixed at startup; there is no runtime reconfiguration surface.
type Config struct {
	// ActionAfter is how long presence must stay absent before the lid closes.
	ActionAfter time.Duration

	// BrightnessThreshold is the raw ADC level above which the room light
	// counts as on.
	BrightnessThreshold uint16

	// MotionThreshold is the distance delta (cm) between successive readings
	// that counts as motion.
	MotionThreshold float64

	// PollPresence is the poll cadence while presence is being tracked.
	PollPresence time.Duration

	// PollStandby is the poll cadence while the space is empty.
	PollStandby time.Duration

	StepsPerRevolution uint32
	StepSleepOpen      time.Duration
	StepSleepClose     time.Duration

	// CloseRevolutions is how many full revolutions a close (or open) action
	// runs. Open-loop: there is no position feedback.
	CloseRevolutions int

	// InitialDistance (cm) seeds the motion baseline before the first
	// reading, typically the distance to the far wall.
	InitialDistance float64

	// EchoTimeout bounds the wait for the rangefinder echo pulse. A stuck
	// echo line surfaces as ErrEchoStall instead of hanging the control loop.
	EchoTimeout time.Duration

	// ConsolePoll is the cadence for servicing calibration-console input.
	ConsolePoll time.Duration
}
