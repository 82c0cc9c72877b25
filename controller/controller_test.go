package controller

import (
	"errors"
	"sync"
	"testing"
	"time"

	"lidkeeper"
)

type fakeSensor struct {
	mu     sync.Mutex
	script []bool
	idx    int
}

// DetectPresence replays the script, then sticks at its last value.
func (s *fakeSensor) DetectPresence() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 {
		return false, nil
	}
	v := s.script[min(s.idx, len(s.script)-1)]
	s.idx++
	return v, nil
}

type fakeActuator struct {
	mu          sync.Mutex
	actuations  []lidkeeper.Direction
	moves       []int32
	deenergized int
}

func (a *fakeActuator) Actuate(dir lidkeeper.Direction, revolutions int, stepDelay time.Duration) Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actuations = append(a.actuations, dir)
	return Result{Completed: true, StepsExecuted: uint32(revolutions) * 2048}
}

func (a *fakeActuator) Move(steps int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.moves = append(a.moves, steps)
}

func (a *fakeActuator) Deenergize() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deenergized++
}

func (a *fakeActuator) actuationCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.actuations)
}

func (a *fakeActuator) lastMove() (int32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.moves) == 0 {
		return 0, false
	}
	return a.moves[len(a.moves)-1], true
}

type fakeDisplay struct {
	mu    sync.Mutex
	modes []lidkeeper.OperatingMode
	lines []string
}

func (d *fakeDisplay) ShowStatus(mode lidkeeper.OperatingMode, line1, line2 string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modes = append(d.modes, mode)
	d.lines = append(d.lines, line1)
}

func (d *fakeDisplay) PowerOff() {}

func (d *fakeDisplay) sawMode(mode lidkeeper.OperatingMode) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (d *fakeDisplay) sawLine(line string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.lines {
		if l == line {
			return true
		}
	}
	return false
}

type fakeConsole struct {
	mu    sync.Mutex
	calls int
}

func (c *fakeConsole) HandleNext() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return false, nil
}

func (c *fakeConsole) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func fastConfig() Config {
	return Config{
		ActionAfter:      10 * time.Millisecond,
		PollPresence:     2 * time.Millisecond,
		PollStandby:      2 * time.Millisecond,
		CloseRevolutions: 1,
		ConsolePoll:      time.Millisecond,
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

type testHarness struct {
	signals  *Signals
	sensor   *fakeSensor
	actuator *fakeActuator
	display  *fakeDisplay
	console  *fakeConsole
	done     chan error
}

func startController(t *testing.T, script []bool) *testHarness {
	t.Helper()

	h := &testHarness{
		signals:  NewSignals(),
		sensor:   &fakeSensor{script: script},
		actuator: &fakeActuator{},
		display:  &fakeDisplay{},
		console:  &fakeConsole{},
		done:     make(chan error, 1),
	}

	ctrl, err := New(fastConfig(), h.signals, h.sensor, h.actuator, h.display, h.console)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	go func() {
		h.done <- ctrl.Run()
	}()
	return h
}

// stop forces the fault path so Run returns, and verifies the fail-safe exit.
func (h *testHarness) stop(t *testing.T) {
	t.Helper()
	h.signals.fault.Store(true)

	select {
	case err := <-h.done:
		if !errors.Is(err, lidkeeper.ErrInvalidMode) {
			t.Errorf("expected ErrInvalidMode from fail-safe exit, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("controller did not observe the fault in time")
	}
}

func TestAutomaticClosesOnceAfterAbsence(t *testing.T) {
	start := time.Now()
	h := startController(t, []bool{true, true, false})

	waitFor(t, 2*time.Second, func() bool {
		return h.actuator.actuationCount() > 0
	}, "close action never triggered")

	if elapsed := time.Since(start); elapsed < fastConfig().ActionAfter {
		t.Errorf("close triggered after %v, before the %v absence threshold", elapsed, fastConfig().ActionAfter)
	}

	// back in standby with no presence: no further closes
	time.Sleep(50 * time.Millisecond)
	if got := h.actuator.actuationCount(); got != 1 {
		t.Errorf("expected exactly one close action, got %d", got)
	}

	h.stop(t)
}

func TestAutomaticStaysOpenWhilePresent(t *testing.T) {
	h := startController(t, []bool{true})

	time.Sleep(50 * time.Millisecond)
	if got := h.actuator.actuationCount(); got != 0 {
		t.Errorf("expected no close action while present, got %d", got)
	}

	h.stop(t)
}

func TestModeSwitchDuringPresenceTracking(t *testing.T) {
	h := startController(t, []bool{true})

	waitFor(t, time.Second, func() bool {
		return h.display.sawMode(lidkeeper.ModeAutomatic)
	}, "never entered the presence-tracking loop")

	h.signals.ButtonEdge()
	waitFor(t, time.Second, func() bool {
		return h.display.sawMode(lidkeeper.ModeManual)
	}, "mode switch to MANUAL not observed")

	// MANUAL closes unconditionally, even though presence is detected
	waitFor(t, time.Second, func() bool {
		return h.actuator.actuationCount() > 0
	}, "MANUAL mode never invoked the close action")

	h.signals.ButtonEdge()
	waitFor(t, time.Second, func() bool {
		return h.display.sawMode(lidkeeper.ModeCalibration)
	}, "mode switch to CALIBRATION not observed")

	// CALIBRATION services the console and never actuates on its own
	before := h.actuator.actuationCount()
	waitFor(t, time.Second, func() bool {
		return h.console.callCount() > 0
	}, "CALIBRATION mode never serviced the console")
	time.Sleep(20 * time.Millisecond)
	if got := h.actuator.actuationCount(); got != before {
		t.Errorf("expected no actuation in CALIBRATION, got %d new", got-before)
	}

	h.stop(t)
}

func TestRetractCompensation(t *testing.T) {
	h := startController(t, []bool{false})
	h.signals.retractSteps.Store(500)

	waitFor(t, time.Second, func() bool {
		_, ok := h.actuator.lastMove()
		return ok
	}, "compensating move never issued")

	if steps, _ := h.actuator.lastMove(); steps != -500 {
		t.Errorf("expected a -500 step opening move, got %d", steps)
	}

	h.stop(t)
}

func TestFailSafeReportsAndDeenergizes(t *testing.T) {
	h := startController(t, []bool{false})
	h.stop(t)

	if !h.display.sawLine("FAULT") {
		t.Error("expected the fault to be reported on the display")
	}

	h.actuator.mu.Lock()
	defer h.actuator.mu.Unlock()
	if h.actuator.deenergized == 0 {
		t.Error("expected coil outputs to be de-energized on the fault path")
	}
}

func TestNewValidation(t *testing.T) {
	signals := NewSignals()
	sensor := &fakeSensor{}
	actuator := &fakeActuator{}

	if _, err := New(fastConfig(), nil, sensor, actuator, nil, nil); err == nil {
		t.Error("expected error for nil signals")
	}
	if _, err := New(fastConfig(), signals, nil, actuator, nil, nil); err == nil {
		t.Error("expected error for nil sensors")
	}
	if _, err := New(fastConfig(), signals, sensor, nil, nil, nil); err == nil {
		t.Error("expected error for nil stepper")
	}
	if _, err := New(fastConfig(), signals, sensor, actuator, nil, nil); err != nil {
		t.Errorf("unexpected error with nil display and console: %v", err)
	}
}
