// Package encoder describes a rotary encoder peripheral with a push button and
// an LED ring, like the DFRobot visual rotary encoder (SEN0502).
//
// All methods may block on bus I/O, so they must never be called from the audio
// render path.
package encoder

import "io"

const (
	// MaxEncoderValue is the largest count the encoder reports or accepts.
	MaxEncoderValue = 1023

	// MinGain and MaxGain bound the gain coefficient, i.e. how far the count
	// moves per step of rotation. 1 lights an LED roughly every 2.5 turns, 51
	// lights one every step.
	MinGain = 1
	MaxGain = 51
)

// BasicInfo identifies a device.
type BasicInfo struct {
	PID     uint16 `json:"pid"`
	VID     uint16 `json:"vid"`
	Version uint16 `json:"version"`
	Addr    uint8  `json:"addr"`
}

// Encoder is a rotary encoder with a button.
type Encoder interface {
	// Begin checks the device is reachable. Errors match ErrInit.
	Begin() error

	// RefreshBasicInfo reads the identity of the device.
	RefreshBasicInfo() (BasicInfo, error)

	// EncoderValue returns the current count (0 - 1023).
	EncoderValue() (uint16, error)

	// SetEncoderValue sets the count. Values above MaxEncoderValue are ignored.
	SetEncoderValue(v uint16) error

	// DetectButtonDown reports whether the button was pressed since the last call.
	DetectButtonDown() (bool, error)

	// GainCoefficient returns the current gain coefficient (1 - 51).
	GainCoefficient() (uint8, error)

	// SetGainCoefficient sets the gain coefficient. Values outside
	// [MinGain, MaxGain] are ignored.
	SetGainCoefficient(v uint8) error

	io.Closer
}

// ErrInit is returned by Begin when the device can't be reached, or doesn't
// identify as the expected device.
type ErrInit struct {
	error
}

func (err ErrInit) Is(target error) bool {
	_, ok := target.(ErrInit)
	return ok
}

// NewErrInit wraps err so it matches ErrInit.
func NewErrInit(err error) error {
	return ErrInit{err}
}

func (err ErrInit) Unwrap() error {
	return err.error
}

func validEncoderValue(v uint16) bool {
	return v <= MaxEncoderValue
}

func validGain(v uint8) bool {
	return v >= MinGain && v <= MaxGain
}
