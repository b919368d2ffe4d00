package oscillator

import (
	"math"
	"sync/atomic"
)

// Amplitude is the peak output level, leaving some headroom below full scale.
const Amplitude = 0.8

// peak is the largest float32 not above Amplitude. float32(Amplitude) itself
// rounds up.
var peak = math.Nextafter32(float32(Amplitude), 0)

// DefaultFrequency is what the oscillator plays before anything has stored a
// frequency.
const DefaultFrequency = 440.0

const twoPi = 2 * math.Pi

// Frequency is a single float64 (in Hz) shared between one writer and one
// reader. It's safe to Store from a polling goroutine while the audio path Loads.
type Frequency struct {
	bits atomic.Uint64
}

// NewFrequency returns a Frequency holding hz.
func NewFrequency(hz float64) *Frequency {
	f := &Frequency{}
	f.Store(hz)
	return f
}

func (f *Frequency) Store(hz float64) {
	f.bits.Store(math.Float64bits(hz))
}

func (f *Frequency) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Oscillator is a phase accumulating sine oscillator. It is owned by the audio
// path and must not be shared between goroutines.
type Oscillator struct {
	freq              *Frequency
	phase             float64
	inverseSampleRate float64
}

// New creates an oscillator reading its frequency from freq at the given
// sample rate. A sample rate that isn't positive and finite leaves the phase
// where it is, so the oscillator stays silent.
func New(freq *Frequency, sampleRate float64) *Oscillator {
	o := &Oscillator{freq: freq}
	if sampleRate > 0 && !math.IsInf(sampleRate, 1) {
		o.inverseSampleRate = 1 / sampleRate
	}

	return o
}

// Advance produces the sample for the current phase and moves the phase on by
// one sample period.
func (o *Oscillator) Advance() float32 {
	out := float32(Amplitude * math.Sin(o.phase))
	if out > peak {
		out = peak
	} else if out < -peak {
		out = -peak
	}

	o.phase = Wrap(o.phase + twoPi*o.freq.Load()*o.inverseSampleRate)

	return out
}

// Phase returns the current phase in radians.
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Reset puts the phase back to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Wrap brings a non-negative phase back into [0, 2π). A phase that isn't
// finite comes back as NaN rather than looping.
func Wrap(phase float64) float64 {
	if phase >= twoPi {
		phase = math.Mod(phase, twoPi)
	}

	return phase
}
