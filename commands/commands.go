package commands

import (
	"errors"
	"time"

	"lidkeeper"
)

// nudge commands move a multiple of this many raw steps
const stepsPerNudge = 32

// inputDeadline bounds how long a command waits for its input bytes. A
// terminal sends them in one burst, so a half-typed command must not pin
// the calling loop.
const inputDeadline = 500 * time.Millisecond

// Machine is the raw hardware access the calibration console needs.
type Machine interface {
	Move(int32)
	OpenLid()
	CloseLid()
	MeasureBrightness() uint16
	MeasureDistance() (float64, error)
	Baseline() float64

	// I/O
	ReadByte() (byte, error)
	WriteByte(byte) error
}

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Machine, []byte) error
	Description string
}

var (
	StepCommand = &Command{
		Flag:      's',
		InputSize: 2,
		Run: func(m Machine, b []byte) error {
			sign := int32(1)
			if b[0] == '-' {
				sign = -1
			} else if b[0] != '+' {
				return errors.New("invalid input: " + string(b))
			}

			v := b2i(b[1])
			if v == 0 {
				return errors.New("invalid input: " + string(b))
			}

			m.Move(sign * int32(v) * stepsPerNudge)
			return nil
		},
		Description: "Nudge the motor. Input: '+' (close) or '-' (open), then step multiplier 1-9.",
	}
	OpenCommand = &Command{
		Flag:      'O',
		InputSize: 0,
		Run: func(m Machine, b []byte) error {
			m.OpenLid()
			return nil
		},
		Description: "Run a full opening revolution.",
	}
	CloseCommand = &Command{
		Flag:      'C',
		InputSize: 0,
		Run: func(m Machine, b []byte) error {
			m.CloseLid()
			return nil
		},
		Description: "Run a full closing revolution.",
	}
	ReadoutCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(m Machine, b []byte) error {
			println("brightness:", m.MeasureBrightness())
			distance, err := m.MeasureDistance()
			if err != nil {
				return err
			}
			println("distance (cm):", int(distance))
			println("baseline (cm):", int(m.Baseline()))
			return nil
		},
		Description: "Print the current sensor readings.",
	}
	MicroStepCommand = &Command{
		Flag:      0x1B,
		InputSize: 2,
		Run: func(m Machine, b []byte) error {
			if b[0] != '[' {
				return errors.New("invalid input")
			}
			switch b[1] {
			case 'D':
				m.Move(-5)
			case 'C':
				m.Move(5)
			}
			return nil
		},
		Description: "Move the motor by microsteps. Use left and right arrow keys.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(m Machine, b []byte) error {
			println("Available Commands:")
			for _, cmd := range commands {
				flagStr := ""
				if cmd.Flag >= 32 && cmd.Flag <= 126 {
					flagStr = string(cmd.Flag)
				} else {
					flagStr = "0x" + string("0123456789ABCDEF"[(cmd.Flag>>4)&0xF]) + string("0123456789ABCDEF"[cmd.Flag&0xF])
				}
				println(flagStr + ": " + cmd.Description)
			}
			return nil
		},
	}
)

var commands = []*Command{
	StepCommand,
	OpenCommand,
	CloseCommand,
	ReadoutCommand,
	MicroStepCommand,
}

func b2i(b byte) uint {
	v := uint(b - '0')
	if v < 1 || v > 9 {
		return 0
	}
	return v
}

// Console dispatches single-byte commands from the serial line to the
// machine. It only runs while the controller is in CALIBRATION mode.
type Console struct {
	machine Machine
	cmdMap  map[byte]*Command
}

func NewConsole(m Machine) *Console {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}
	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	return &Console{machine: m, cmdMap: cmdMap}
}

// HandleNext services at most one pending command. It reports false when no
// input is waiting, so the calling loop keeps its checkpoint cadence instead
// of busy-spinning on the serial line.
func (c *Console) HandleNext() (bool, error) {
	flag, err := c.machine.ReadByte()
	if err != nil {
		return false, nil
	}

	cmd, ok := c.cmdMap[flag]
	if !ok {
		// Unknown byte: consumed, nothing to run.
		return true, nil
	}

	in := make([]byte, cmd.InputSize)
	deadline := time.Now().Add(inputDeadline)
	for i := 0; i < int(cmd.InputSize); {
		b, err := c.machine.ReadByte()
		if err != nil {
			if time.Now().After(deadline) {
				return true, errors.New("incomplete command input")
			}
			time.Sleep(time.Millisecond)
			continue
		}

		in[i] = b
		i++
	}

	runErr := cmd.Run(c.machine, in)

	// Terminate the response so the host side can read up to EOT.
	_ = c.machine.WriteByte(lidkeeper.TerminationChar)

	return true, runErr
}
