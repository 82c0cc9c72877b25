//go:build tinygo

package main

import (
	"machine"
	"time"

	"lidkeeper/commands"
	"lidkeeper/controller"
)

func main() {
	cfg := controller.Config{
		ActionAfter:         60 * time.Second,
		BrightnessThreshold: 25000,
		MotionThreshold:     5,
		PollPresence:        1 * time.Second,
		PollStandby:         5 * time.Second,
		StepsPerRevolution:  2048,
		StepSleepOpen:       2 * time.Millisecond,
		StepSleepClose:      3 * time.Millisecond,
		CloseRevolutions:    1,
		InitialDistance:     165,
		EchoTimeout:         30 * time.Millisecond,
		ConsolePoll:         50 * time.Millisecond,
	}

	// 28BYJ-48 coils
	motorPins := [4]machine.Pin{machine.GP18, machine.GP19, machine.GP20, machine.GP21}
	for _, p := range motorPins {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}

	// HC-SR04
	trigger := machine.GP14
	trigger.Configure(machine.PinConfig{Mode: machine.PinOutput})
	echo := machine.GP15
	echo.Configure(machine.PinConfig{Mode: machine.PinInput})

	// SFH 300 phototransistor
	machine.InitADC()
	light := machine.ADC{Pin: machine.GP26}
	light.Configure(machine.ADCConfig{})

	machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP16,
		SCL:       machine.GP17,
		Frequency: 200000,
	})
	display := newOLED(machine.I2C0)

	signals := controller.NewSignals()

	stepper, err := controller.NewStepper(
		[4]controller.Pin{motorPins[0], motorPins[1], motorPins[2], motorPins[3]},
		cfg.StepsPerRevolution, signals)
	if err != nil {
		panic(err)
	}

	sensors := controller.NewSensors(trigger, echo, light, cfg)

	// KY-040 button: one rising edge per press
	button := machine.GP10
	button.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	err = button.SetInterrupt(machine.PinRising, func(machine.Pin) {
		signals.ButtonEdge()
	})
	if err != nil {
		panic(err)
	}

	console := commands.NewConsole(&rig{stepper: stepper, sensors: sensors, cfg: cfg})

	ctrl, err := controller.New(cfg, signals, sensors, stepper, display, console)
	if err != nil {
		panic(err)
	}

	// Run returns only on a fatal fault, with the coils already de-energized.
	panic(ctrl.Run())
}
