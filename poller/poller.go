package poller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gloworm-vision/encodersine/hardware/encoder"
	"github.com/gloworm-vision/encodersine/oscillator"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is how long the poller sleeps between ticks.
const DefaultInterval = 10 * time.Millisecond

// FrequencyOffset is added to the encoder count to get a frequency in Hz, so
// the full range of the encoder maps to 100 - 1123 Hz.
const FrequencyOffset = 100

// noCount marks that no count has been observed yet.
const noCount = -1

// Poller reads the encoder off the audio path and publishes the frequency it
// selects. Bus I/O can stall, so it runs on its own goroutine.
type Poller struct {
	Encoder   encoder.Encoder
	Frequency *oscillator.Frequency
	Logger    *logrus.Logger
	Interval  time.Duration

	last atomic.Int64
}

// New creates a Poller that hasn't observed a count yet.
func New(enc encoder.Encoder, freq *oscillator.Frequency, logger *logrus.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p := &Poller{
		Encoder:   enc,
		Frequency: freq,
		Logger:    logger,
		Interval:  interval,
	}
	p.last.Store(noCount)

	return p
}

// Last returns the last count observed, if any.
func (p *Poller) Last() (uint16, bool) {
	v := p.last.Load()
	if v == noCount {
		return 0, false
	}

	return uint16(v), true
}

// Tick reads the encoder once, publishes a new frequency if the count changed,
// and resets the count if the button was pressed. On error nothing after the
// failing step happens; the next tick starts over.
func (p *Poller) Tick() error {
	count, err := p.Encoder.EncoderValue()
	if err != nil {
		return fmt.Errorf("unable to read encoder: %w", err)
	}

	if int64(count) != p.last.Load() {
		p.Logger.WithField("count", count).Info("encoder count changed")
		p.last.Store(int64(count))
		p.Frequency.Store(float64(count) + FrequencyOffset)
	}

	pressed, err := p.Encoder.DetectButtonDown()
	if err != nil {
		return fmt.Errorf("unable to read button: %w", err)
	}

	if pressed {
		if err := p.Encoder.SetEncoderValue(0); err != nil {
			return fmt.Errorf("unable to reset encoder: %w", err)
		}
		p.Logger.Info("button pressed, encoder reset")
	}

	return nil
}

// Run ticks every Interval until ctx is cancelled. Failed ticks are logged and
// retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if err := p.Tick(); err != nil {
			p.Logger.Warnf("poll failed: %s", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
