package encoder

import (
	"errors"
	"sync"
)

// Sim is an in-memory encoder. It behaves like the real device (range checks,
// latched button presses) and lets tests and headless runs turn the knob.
type Sim struct {
	// Unreachable makes Begin fail as if nothing answered on the bus.
	Unreachable bool

	// Info is reported by RefreshBasicInfo.
	Info BasicInfo

	mu      sync.Mutex
	count   uint16
	gain    uint8
	pressed bool
	fail    error
}

// compile-time check for whether Sim satisfies the Encoder interface
var _ Encoder = &Sim{}

// NewSim returns a simulated encoder with the factory identity, count and gain.
func NewSim() *Sim {
	return &Sim{
		Info: BasicInfo{
			PID:     DFRobotPID,
			VID:     0x3343,
			Version: 0x0100,
			Addr:    DFRobotDefaultAddr,
		},
		gain: 1,
	}
}

// Turn moves the count by steps, clamping to [0, MaxEncoderValue].
func (s *Sim) Turn(steps int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := int(s.count) + steps
	if v < 0 {
		v = 0
	} else if v > MaxEncoderValue {
		v = MaxEncoderValue
	}
	s.count = uint16(v)
}

// Press latches a button press to be reported by the next DetectButtonDown.
func (s *Sim) Press() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pressed = true
}

// Fail makes every following bus operation return err. A nil err restores normal
// operation.
func (s *Sim) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail = err
}

var errUnreachable = errors.New("no device responded")

func (s *Sim) Begin() error {
	if s.Unreachable {
		return ErrInit{errUnreachable}
	}

	return nil
}

func (s *Sim) RefreshBasicInfo() (BasicInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return BasicInfo{}, s.fail
	}

	return s.Info, nil
}

func (s *Sim) EncoderValue() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return 0, s.fail
	}

	return s.count, nil
}

func (s *Sim) SetEncoderValue(v uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}

	if validEncoderValue(v) {
		s.count = v
	}

	return nil
}

func (s *Sim) DetectButtonDown() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return false, s.fail
	}

	pressed := s.pressed
	s.pressed = false

	return pressed, nil
}

func (s *Sim) GainCoefficient() (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return 0, s.fail
	}

	return s.gain, nil
}

func (s *Sim) SetGainCoefficient(v uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}

	if validGain(v) {
		s.gain = v
	}

	return nil
}

func (s *Sim) Close() error {
	return nil
}
