package controller

import (
	"errors"
	"time"

	"lidkeeper"
)

// 4-step full-step sequence for the 28BYJ-48
var fullStepSequence = [4][4]bool{
	{true, false, false, false},
	{false, true, false, false},
	{false, false, true, false},
	{false, false, false, true},
}

// Result reports how an actuation sequence ended. StepsExecuted falls short
// of the request when the sequence was aborted.
type Result struct {
	Completed     bool
	StepsExecuted uint32
}

// Stepper drives the lid motor through the 4-phase coil sequence. At most
// one sequence runs at a time; the abort flag is the only way to stop one
// early.
type Stepper struct {
	pins        [4]Pin
	signals     *Signals
	stepsPerRev uint32
	phase       int
}

func NewStepper(pins [4]Pin, stepsPerRev uint32, signals *Signals) (*Stepper, error) {
	for _, p := range pins {
		if p == nil {
			return nil, errors.New("stepper requires four coil pins")
		}
	}
	if signals == nil {
		return nil, errors.New("stepper requires signals")
	}
	if stepsPerRev == 0 {
		return nil, errors.New("invalid StepsPerRevolution")
	}

	s := &Stepper{
		pins:        pins,
		signals:     signals,
		stepsPerRev: stepsPerRev,
	}
	s.Deenergize()
	return s, nil
}

// Deenergize forces all four coil outputs low. A coil left energized between
// moves heats the motor, so every sequence starts and ends here.
func (s *Stepper) Deenergize() {
	for _, p := range s.pins {
		p.Set(false)
	}
}

func (s *Stepper) applyPhase() {
	row := fullStepSequence[s.phase]
	for i, p := range s.pins {
		p.Set(row[i])
	}
}

// advance moves one row through the phase table. Close increments the phase
// index, open decrements it, modulo 4.
func (s *Stepper) advance(dir lidkeeper.Direction) {
	if dir == lidkeeper.DirectionClose {
		s.phase = (s.phase + 1) % 4
	} else {
		s.phase = (s.phase - 1 + 4) % 4
	}
	s.applyPhase()
}

// Actuate runs the phase sequence for the requested number of revolutions in
// one direction. The abort flag is checked between every step: on abort the
// coils are de-energized, the executed step count is recorded as the retract
// distance, the flag is cleared, and the result reports Completed=false.
func (s *Stepper) Actuate(dir lidkeeper.Direction, revolutions int, stepDelay time.Duration) Result {
	if stepDelay == 0 {
		stepDelay = defaultStepDelay
	}

	s.signals.ClearAbort()
	s.signals.retractSteps.Store(0)
	s.Deenergize()

	total := uint32(0)
	if revolutions > 0 {
		total = uint32(revolutions) * s.stepsPerRev
	}

	var executed uint32
	for executed < total {
		s.advance(dir)
		executed++

		if s.signals.ConsumeAbort() {
			s.Deenergize()
			s.signals.retractSteps.Store(int32(executed))
			return Result{Completed: false, StepsExecuted: executed}
		}

		time.Sleep(stepDelay)
	}

	s.Deenergize()
	return Result{Completed: true, StepsExecuted: executed}
}

// Move steps the motor by a signed raw step count: positive closes, negative
// opens. It is used for calibration nudges and retract compensation, so it
// honors an abort but does not record a retract distance. Like Actuate, it
// drops any stale abort first: the press that switched modes must not cancel
// the move it led to.
func (s *Stepper) Move(steps int32) {
	s.signals.ClearAbort()

	dir := lidkeeper.DirectionClose
	if steps < 0 {
		dir = lidkeeper.DirectionOpen
		steps = -steps
	}

	for range steps {
		s.advance(dir)
		if s.signals.ConsumeAbort() {
			break
		}
		time.Sleep(defaultStepDelay)
	}
	s.Deenergize()
}
