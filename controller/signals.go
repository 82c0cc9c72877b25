package controller

import (
	"sync/atomic"

	"lidkeeper"
)

// Signals is the state shared between the button interrupt and the main
// control flow. The interrupt context is the only writer of the mode and the
// flags; the main flow reads them at loop-top and inter-step checkpoints
// only, never mid-expression.
type Signals struct {
	mode       atomic.Int32
	modeSwitch atomic.Bool
	abort      atomic.Bool
	fault      atomic.Bool

	// retractSteps records how far an aborted actuation got, so the
	// scheduler can issue a compensating reverse move.
	retractSteps atomic.Int32
}

// NewSignals returns Signals starting in AUTOMATIC mode.
func NewSignals() *Signals {
	return &Signals{}
}

// ButtonEdge handles one rising edge of the mode button. It is safe to call
// from an interrupt context: it never blocks, never allocates, and never
// calls into the sensors or the stepper.
func (s *Signals) ButtonEdge() {
	s.abort.Store(true)

	next, err := lidkeeper.OperatingMode(s.mode.Load()).Next()
	if err != nil {
		// Unreachable with a correctly constructed mode, but an interrupt
		// context cannot halt safely itself. The main flow observes the
		// fault at its next checkpoint and de-energizes before exiting.
		s.fault.Store(true)
		return
	}

	s.mode.Store(int32(next))
	s.modeSwitch.Store(true)
}

// Mode returns the currently active operating mode.
func (s *Signals) Mode() lidkeeper.OperatingMode {
	return lidkeeper.OperatingMode(s.mode.Load())
}

// ForceMode overrides the operating mode, bypassing the cycle. Only for
// bench use; the interrupt is the sole writer in normal operation.
func (s *Signals) ForceMode(m lidkeeper.OperatingMode) {
	s.mode.Store(int32(m))
}

// ConsumeModeSwitch reports whether a mode switch is pending and clears it.
// Presses that pile up before a drain each advance the mode, but at most one
// switch intent is ever outstanding.
func (s *Signals) ConsumeModeSwitch() bool {
	return s.modeSwitch.CompareAndSwap(true, false)
}

// ConsumeAbort reports whether an actuation abort is pending and clears it.
func (s *Signals) ConsumeAbort() bool {
	return s.abort.CompareAndSwap(true, false)
}

// ClearAbort drops any stale abort request. Called at the start of each
// actuation sequence so an old press cannot cancel a new sequence.
func (s *Signals) ClearAbort() {
	s.abort.Store(false)
}

// Faulted reports whether the interrupt observed an unreachable mode.
func (s *Signals) Faulted() bool {
	return s.fault.Load()
}

// TakeRetractSteps returns the recorded retract distance and clears it.
func (s *Signals) TakeRetractSteps() int32 {
	return s.retractSteps.Swap(0)
}
