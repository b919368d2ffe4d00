package encoder

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Bus is a register oriented connection to a single device, e.g. an I2C handle.
type Bus interface {
	ReadRegister(reg byte, buf []byte) error
	WriteRegister(reg byte, data []byte) error
	io.Closer
}

// DFRobotPID is the product ID reported by the SEN0502.
const DFRobotPID = 0x01F6

// DFRobotDefaultAddr is the factory I2C address. The module can be strapped to 0x54 - 0x57.
const DFRobotDefaultAddr = 0x54

const (
	regPID       = 0x00
	regVID       = 0x02
	regVersion   = 0x04
	regAddr      = 0x07
	regCount     = 0x08
	regKeyStatus = 0x0A
	regGain      = 0x0B
)

// DFRobot drives the DFRobot visual rotary encoder over a Bus.
type DFRobot struct {
	bus Bus
}

// compile-time check for whether DFRobot satisfies the Encoder interface
var _ Encoder = &DFRobot{}

func NewDFRobot(bus Bus) *DFRobot {
	return &DFRobot{bus: bus}
}

func (d *DFRobot) Begin() error {
	pid, err := d.readUint16(regPID)
	if err != nil {
		return ErrInit{fmt.Errorf("unable to read product id: %w", err)}
	}

	if pid != DFRobotPID {
		return ErrInit{fmt.Errorf("unexpected product id %#x, expected %#x", pid, DFRobotPID)}
	}

	return nil
}

func (d *DFRobot) RefreshBasicInfo() (BasicInfo, error) {
	buf := make([]byte, regAddr+1)
	if err := d.bus.ReadRegister(regPID, buf); err != nil {
		return BasicInfo{}, fmt.Errorf("unable to read basic info: %w", err)
	}

	return BasicInfo{
		PID:     binary.BigEndian.Uint16(buf[regPID:]),
		VID:     binary.BigEndian.Uint16(buf[regVID:]),
		Version: binary.BigEndian.Uint16(buf[regVersion:]),
		Addr:    buf[regAddr],
	}, nil
}

func (d *DFRobot) EncoderValue() (uint16, error) {
	v, err := d.readUint16(regCount)
	if err != nil {
		return 0, fmt.Errorf("unable to read encoder value: %w", err)
	}

	return v, nil
}

func (d *DFRobot) SetEncoderValue(v uint16) error {
	if !validEncoderValue(v) {
		return nil
	}

	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)

	if err := d.bus.WriteRegister(regCount, buf); err != nil {
		return fmt.Errorf("unable to write encoder value: %w", err)
	}

	return nil
}

func (d *DFRobot) DetectButtonDown() (bool, error) {
	buf := make([]byte, 1)
	if err := d.bus.ReadRegister(regKeyStatus, buf); err != nil {
		return false, fmt.Errorf("unable to read key status: %w", err)
	}

	if buf[0] != 1 {
		return false, nil
	}

	// the status latches until cleared, so an uncleared press is seen again next time
	if err := d.bus.WriteRegister(regKeyStatus, []byte{0}); err != nil {
		return false, fmt.Errorf("unable to clear key status: %w", err)
	}

	return true, nil
}

func (d *DFRobot) GainCoefficient() (uint8, error) {
	buf := make([]byte, 1)
	if err := d.bus.ReadRegister(regGain, buf); err != nil {
		return 0, fmt.Errorf("unable to read gain coefficient: %w", err)
	}

	return buf[0], nil
}

func (d *DFRobot) SetGainCoefficient(v uint8) error {
	if !validGain(v) {
		return nil
	}

	if err := d.bus.WriteRegister(regGain, []byte{v}); err != nil {
		return fmt.Errorf("unable to write gain coefficient: %w", err)
	}

	return nil
}

func (d *DFRobot) Close() error {
	return d.bus.Close()
}

func (d *DFRobot) readUint16(reg byte) (uint16, error) {
	buf := make([]byte, 2)
	if err := d.bus.ReadRegister(reg, buf); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(buf), nil
}
