package lidkeeper

import "errors"

const TerminationChar = 0x04 // ascii EOT (End of Transmission)

// ErrInvalidMode is reported when the operating mode is somehow outside the
// three-mode cycle. This is unreachable under correct construction, but it
// must surface as a fault instead of a silent fallthrough.
var ErrInvalidMode = errors.New("invalid operating mode")

// OperatingMode selects which control loop is active. Exactly one mode is
// active at a time and the button cycles through them.
type OperatingMode int

const (
	ModeAutomatic OperatingMode = iota
	ModeManual
	ModeCalibration
)

func (m OperatingMode) String() string {
	switch m {
	case ModeAutomatic:
		return "AUTOMATIC"
	case ModeManual:
		return "MANUAL"
	case ModeCalibration:
		return "CALIBRATION"
	default:
		return "UNKNOWN"
	}
}

// Next returns the mode a button press advances to:
// AUTOMATIC -> MANUAL -> CALIBRATION -> AUTOMATIC.
func (m OperatingMode) Next() (OperatingMode, error) {
	switch m {
	case ModeAutomatic:
		return ModeManual, nil
	case ModeManual:
		return ModeCalibration, nil
	case ModeCalibration:
		return ModeAutomatic, nil
	default:
		return m, ErrInvalidMode
	}
}

// Direction selects which way the lid moves.
type Direction int

const (
	DirectionOpen Direction = iota
	DirectionClose
)

func (d Direction) String() string {
	switch d {
	case DirectionOpen:
		return "Open"
	case DirectionClose:
		return "Close"
	default:
		return "Unknown"
	}
}
