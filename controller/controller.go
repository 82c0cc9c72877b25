package controller

import (
	"errors"
	"time"

	"lidkeeper"
)

// PresenceSensor produces the fused presence verdict.
type PresenceSensor interface {
	DetectPresence() (bool, error)
}

// Actuator drives the lid motor.
type Actuator interface {
	Actuate(dir lidkeeper.Direction, revolutions int, stepDelay time.Duration) Result
	Move(steps int32)
	Deenergize()
}

// ConsoleHandler services pending calibration-console input. HandleNext
// reports whether a command was consumed so the loop can drain a burst
// before sleeping again.
type ConsoleHandler interface {
	HandleNext() (bool, error)
}

type noopConsole struct{}

func (noopConsole) HandleNext() (bool, error) { return false, nil }

// Controller owns the main control flow: it dispatches on the active mode
// and runs that mode's loop until the button advances the cycle. All shared
// state written by the interrupt lives in Signals and is read only at the
// loop-top and inter-step checkpoints.
type Controller struct {
	cfg     Config
	signals *Signals
	sensors PresenceSensor
	stepper Actuator
	display Display
	console ConsoleHandler
}

// New initializes the controller with the provided collaborators. Display
// and console are optional.
func New(cfg Config, signals *Signals, sensors PresenceSensor, stepper Actuator, display Display, console ConsoleHandler) (*Controller, error) {
	if signals == nil {
		return nil, errors.New("controller requires signals")
	}
	if sensors == nil {
		return nil, errors.New("controller requires sensors")
	}
	if stepper == nil {
		return nil, errors.New("controller requires a stepper")
	}
	if display == nil {
		display = noopDisplay{}
	}
	if console == nil {
		console = noopConsole{}
	}
	if cfg.ConsolePoll == 0 {
		cfg.ConsolePoll = defaultConsolePoll
	}

	return &Controller{
		cfg:     cfg,
		signals: signals,
		sensors: sensors,
		stepper: stepper,
		display: display,
		console: console,
	}, nil
}

// Run drives the mode dispatcher. It returns only on a fatal fault, with the
// coil outputs already de-energized.
func (c *Controller) Run() error {
	for {
		c.stepper.Deenergize()
		c.display.PowerOff()

		if c.signals.Faulted() {
			return c.failSafe(lidkeeper.ErrInvalidMode)
		}

		switch c.signals.Mode() {
		case lidkeeper.ModeAutomatic:
			c.runAutomatic()
		case lidkeeper.ModeManual:
			c.runManual()
		case lidkeeper.ModeCalibration:
			c.runCalibration()
		default:
			return c.failSafe(lidkeeper.ErrInvalidMode)
		}
	}
}

// failSafe is the single fatal-fault path shared by every component: coil
// outputs low first, then report.
func (c *Controller) failSafe(err error) error {
	c.stepper.Deenergize()
	c.display.ShowStatus(c.signals.Mode(), "FAULT", err.Error())
	println("fault:", err.Error())
	return err
}

// interrupted is the loop-top checkpoint: it reports whether the current
// mode loop must hand control back to the dispatcher, consuming a pending
// switch intent.
func (c *Controller) interrupted() bool {
	if c.signals.Faulted() {
		return true
	}
	return c.signals.ConsumeModeSwitch()
}

// runAutomatic is the presence-driven scheduler. The space is polled at the
// standby cadence until presence appears, then tracked at the presence
// cadence. Once presence stays absent for ActionAfter, the lid closes once
// and the loop returns to standby.
func (c *Controller) runAutomatic() {
	c.compensateRetract()

	if !c.detectPresence() {
		time.Sleep(c.cfg.PollStandby)
		return
	}

	for {
		if c.interrupted() {
			return
		}
		c.display.ShowStatus(lidkeeper.ModeAutomatic, "Presence", "detected")
		time.Sleep(c.cfg.PollPresence)
		if c.detectPresence() {
			continue
		}

		// Absence is accumulated in poll-interval units, not wall-clock
		// time, and resets whenever presence is reconfirmed.
		var absent time.Duration
		for {
			if c.interrupted() {
				return
			}
			if absent >= c.cfg.ActionAfter {
				c.closeLid()
				c.display.PowerOff()
				// An abort mid-close means a switch is pending; skip the
				// standby sleep so the new mode starts promptly.
				if !c.interrupted() {
					time.Sleep(c.cfg.PollStandby)
				}
				return
			}
			time.Sleep(c.cfg.PollPresence)
			absent += c.cfg.PollPresence
			if c.detectPresence() {
				break
			}
		}
	}
}

// runManual closes the lid on every iteration, ignoring the sensors.
// Re-closing an already-closed lid is a no-op in effect, though not in motor
// wear.
func (c *Controller) runManual() {
	for {
		if c.interrupted() {
			return
		}
		c.display.ShowStatus(lidkeeper.ModeManual, "MANUAL mode", "closing lid")
		c.closeLid()
		if c.interrupted() {
			return
		}
		time.Sleep(c.cfg.PollStandby)
	}
}

// runCalibration performs no actuation on its own; it only reports status
// and services manual stepper commands from the console.
func (c *Controller) runCalibration() {
	for {
		if c.interrupted() {
			return
		}
		c.display.ShowStatus(lidkeeper.ModeCalibration, "CALIBRATION mode", "console ready")

		handled, err := c.console.HandleNext()
		if err != nil {
			println("console error:", err.Error())
		}
		if handled {
			continue
		}
		time.Sleep(c.cfg.ConsolePoll)
	}
}

func (c *Controller) detectPresence() bool {
	present, err := c.sensors.DetectPresence()
	if err != nil {
		// A stalled rangefinder mutes presence detection until it recovers.
		println("sensor error:", err.Error())
		return false
	}
	return present
}

func (c *Controller) closeLid() {
	println("closing lid")
	res := c.stepper.Actuate(lidkeeper.DirectionClose, c.cfg.CloseRevolutions, c.cfg.StepSleepClose)
	if !res.Completed {
		println("close aborted after", res.StepsExecuted, "steps")
	}
}

// compensateRetract reverses an aborted close so the lid position matches
// what the presence logic assumes. Runs when AUTOMATIC resumes with a
// recorded retract distance.
func (c *Controller) compensateRetract() {
	steps := c.signals.TakeRetractSteps()
	if steps == 0 {
		return
	}
	println("retracting", steps, "steps")
	c.stepper.Move(-steps)
}
