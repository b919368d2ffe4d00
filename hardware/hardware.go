package hardware

import (
	"fmt"
	"io"

	"github.com/gloworm-vision/encodersine/hardware/encoder"
	"github.com/gloworm-vision/encodersine/hardware/gpio"
	"github.com/gloworm-vision/encodersine/hardware/pigpio"
)

// Config describes how to reach the encoder and optional status LED.
type Config struct {
	// Simulated uses an in-memory encoder instead of real hardware.
	Simulated bool `json:"simulated"`

	PigpioAddr string `json:"pigpioAddr"`
	I2CBus     int    `json:"i2cBus"`
	I2CAddr    uint8  `json:"i2cAddr"`

	// StatusLEDPin is a GPIO pin lit while the synth is running. Zero disables it.
	StatusLEDPin int `json:"statusLEDPin"`
}

// DefaultConfig is the SEN0502 at its factory address on I2C bus 1, through a
// local pigpio daemon.
func DefaultConfig() Config {
	return Config{
		PigpioAddr: "localhost:8888",
		I2CBus:     1,
		I2CAddr:    encoder.DFRobotDefaultAddr,
	}
}

// Device is the hardware the synth runs on: an encoder and, optionally,
// some way to show status.
type Device struct {
	Encoder encoder.Encoder

	// Indicators is nil when the hardware has no status LEDs.
	Indicators StatusIndicators

	closer io.Closer
}

// New sets up the hardware described by config. The encoder still has to be
// checked with Begin before use.
func New(config Config) (*Device, error) {
	if config.Simulated {
		return &Device{Encoder: encoder.NewSim()}, nil
	}

	client, err := pigpio.Dial(config.PigpioAddr)
	if err != nil {
		return nil, encoder.NewErrInit(fmt.Errorf("unable to dial pigpio to setup i2c: %w", err))
	}

	bus, err := client.I2COpen(config.I2CBus, config.I2CAddr)
	if err != nil {
		client.Close()
		return nil, encoder.NewErrInit(fmt.Errorf("unable to open encoder: %w", err))
	}

	device := &Device{
		Encoder: encoder.NewDFRobot(bus),
		closer:  client,
	}

	if config.StatusLEDPin != 0 {
		device.Indicators = &StatusLED{gpio: client, pin: config.StatusLEDPin}
	}

	return device, nil
}

// Close turns off any status LEDs and releases the encoder.
func (d *Device) Close() error {
	if d.Indicators != nil {
		if err := d.Indicators.SetStatus(Running, false); err != nil {
			return fmt.Errorf("unable to turn off status LED: %w", err)
		}
	}

	if err := d.Encoder.Close(); err != nil {
		return fmt.Errorf("unable to close encoder: %w", err)
	}

	if d.closer != nil {
		return d.closer.Close()
	}

	return nil
}

// Status defines a list of statuses that can be indicated in various ways by different
// hardware
type Status int

const (
	// Running is true while audio is being rendered and the encoder polled
	Running Status = iota
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type ErrUnsupportedStatus struct {
	error
}

func (err ErrUnsupportedStatus) Is(target error) bool {
	_, ok := target.(ErrUnsupportedStatus)
	return ok
}

// StatusIndicators describes hardware with one or more status indicators
type StatusIndicators interface {
	// SetStatus sets a status on or off. If the underlying hardware can't indicate this
	// status, it should return an ErrUnsupportedStatus error.
	SetStatus(status Status, value bool) error
}

// StatusLED shows the Running status on a single GPIO pin.
type StatusLED struct {
	gpio gpio.GPIO
	pin  int
}

func NewStatusLED(g gpio.GPIO, pin int) *StatusLED {
	return &StatusLED{gpio: g, pin: pin}
}

func (l *StatusLED) SetStatus(status Status, value bool) error {
	switch status {
	case Running:
		if err := l.gpio.Write(l.pin, gpio.Level(value)); err != nil {
			return fmt.Errorf("can't set status LED on pin %d: %w", l.pin, err)
		}
	default:
		return ErrUnsupportedStatus{fmt.Errorf("status %q not implemented by StatusLED", status)}
	}

	return nil
}
