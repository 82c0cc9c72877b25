package controller

import (
	"errors"
	"time"
)

// (0.0343 cm per us) / 2 for the round trip
const cmPerMicrosecond = 0.01715

// ErrEchoStall is returned when the rangefinder echo pulse never completes
// within the configured timeout.
var ErrEchoStall = errors.New("echo pulse never completed")

// Sensors fuses the phototransistor and the ultrasonic rangefinder into a
// single presence verdict.
type Sensors struct {
	trigger Pin
	echo    Pin
	light   ADC

	brightnessThreshold uint16
	motionThreshold     float64
	echoTimeout         time.Duration

	// baseline is the previous distance reading. Only the main control flow
	// touches it; the interrupt context never does.
	baseline float64
}

func NewSensors(trigger, echo Pin, light ADC, cfg Config) *Sensors {
	timeout := cfg.EchoTimeout
	if timeout == 0 {
		timeout = defaultEchoTimeout
	}
	return &Sensors{
		trigger:             trigger,
		echo:                echo,
		light:               light,
		brightnessThreshold: cfg.BrightnessThreshold,
		motionThreshold:     cfg.MotionThreshold,
		echoTimeout:         timeout,
		baseline:            cfg.InitialDistance,
	}
}

// DetectPresence reports whether the space is occupied: either the room
// light is on or the distance moved past the motion threshold since the
// previous reading. The baseline is overwritten with every successful
// reading regardless of the verdict, so an approach slower than the motion
// threshold per poll never registers. That matches the installed behaviour
// and stays.
func (s *Sensors) DetectPresence() (bool, error) {
	brightness := s.MeasureBrightness()
	brightnessDetected := brightness > s.brightnessThreshold

	distance, err := s.MeasureDistance()
	if err != nil {
		// Baseline untouched: the next successful reading compares against
		// the last good one.
		return false, err
	}

	motionDetected := distance > s.baseline+s.motionThreshold ||
		distance < s.baseline-s.motionThreshold
	s.baseline = distance

	return brightnessDetected || motionDetected, nil
}

// MeasureBrightness reads the raw phototransistor level.
func (s *Sensors) MeasureBrightness() uint16 {
	return s.light.Get()
}

// MeasureDistance fires the trigger pulse and times the echo, in cm.
//
// The waits on the echo line are busy-waits and deliberately contain no
// checkpoint: a button edge arriving here is deferred until the measurement
// completes. The deadline keeps a stuck echo line from hanging the control
// loop forever.
func (s *Sensors) MeasureDistance() (float64, error) {
	s.trigger.Set(false)
	time.Sleep(2 * time.Microsecond)
	s.trigger.Set(true)
	time.Sleep(5 * time.Microsecond)
	s.trigger.Set(false)

	deadline := time.Now().Add(s.echoTimeout)
	for !s.echo.Get() {
		if time.Now().After(deadline) {
			return 0, ErrEchoStall
		}
	}
	risen := time.Now()
	for s.echo.Get() {
		if time.Now().After(deadline) {
			return 0, ErrEchoStall
		}
	}
	highTime := time.Since(risen)

	return float64(highTime.Microseconds()) * cmPerMicrosecond, nil
}

// Baseline returns the reference distance the next reading is compared to.
func (s *Sensors) Baseline() float64 {
	return s.baseline
}
