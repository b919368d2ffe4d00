package store

import (
	"io"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/gloworm-vision/encodersine/synth"
)

// Store describes a persistent storage engine for encodersine settings.
type Store interface {
	HardwareConfig() (hardware.Config, error)
	PutHardwareConfig(h hardware.Config) error

	SynthConfig() (synth.Config, error)
	PutSynthConfig(s synth.Config) error

	io.Closer
}

// ErrNotFound is returned when a setting has never been stored.
type ErrNotFound struct {
	error
}

func (err ErrNotFound) Is(target error) bool {
	_, ok := target.(ErrNotFound)
	return ok
}
