package controller

// Pin is a single digital I/O line. machine.Pin satisfies it directly, and
// tests substitute fakes.
type Pin interface {
	Get() bool
	Set(bool)
}

// ADC is an analog input line. machine.ADC satisfies it directly.
type ADC interface {
	Get() uint16
}
