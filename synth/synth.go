// Package synth is a sine oscillator whose frequency is set by a rotary
// encoder. Pressing the encoder's button resets the count, and with it the
// frequency, back to the bottom of the range.
//
// The encoder is polled on a background goroutine because bus I/O isn't safe
// to do while rendering audio. The two sides share only the current frequency.
package synth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/gloworm-vision/encodersine/hardware/encoder"
	"github.com/gloworm-vision/encodersine/oscillator"
	"github.com/gloworm-vision/encodersine/poller"
	"github.com/gloworm-vision/encodersine/render"
	"github.com/sirupsen/logrus"
)

// Config holds the settings applied at setup.
type Config struct {
	// TargetGain is the gain coefficient written to the encoder.
	TargetGain uint8 `json:"targetGain"`

	PollInterval time.Duration `json:"pollInterval"`

	// SettleDelay is waited after setting the gain, before reading it back.
	SettleDelay time.Duration `json:"settleDelay"`
}

func DefaultConfig() Config {
	return Config{
		TargetGain:   25,
		PollInterval: poller.DefaultInterval,
		SettleDelay:  10 * time.Millisecond,
	}
}

// App is the synth program. Render runs on the audio path; everything else
// runs elsewhere.
type App struct {
	Config     Config
	Encoder    encoder.Encoder
	Indicators hardware.StatusIndicators
	Logger     *logrus.Logger

	freq *oscillator.Frequency
	osc  *oscillator.Oscillator

	mu         sync.Mutex
	state      State
	info       encoder.BasicInfo
	gain       uint8
	poller     *poller.Poller
	stopPoller context.CancelFunc
	pollerDone chan struct{}
}

// compile-time check for whether App satisfies the Program interface
var _ render.Program = &App{}

func New(config Config, enc encoder.Encoder, logger *logrus.Logger) *App {
	return &App{
		Config:  config,
		Encoder: enc,
		Logger:  logger,
		freq:    oscillator.NewFrequency(oscillator.DefaultFrequency),
	}
}

// Setup identifies the encoder, configures its gain, starts polling it and
// prepares the oscillator. An error means the audio context is unusable or the
// encoder couldn't be reached, and Render must not be called.
func (a *App) Setup(c *render.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Uninitialized {
		return fmt.Errorf("can't setup from state %s", a.state)
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("unable to setup audio: %w", err)
	}

	a.state = Initializing

	if err := a.Encoder.Begin(); err != nil {
		a.state = Uninitialized
		a.Logger.Errorf("unable to initialise encoder, are the address and bus correct? %s", err)
		return fmt.Errorf("unable to initialise encoder: %w", err)
	}

	a.report()

	if a.Indicators != nil {
		if err := a.Indicators.SetStatus(hardware.Running, true); err != nil {
			a.Logger.Warnf("unable to show running status: %s", err)
		}
	}

	p := poller.New(a.Encoder, a.freq, a.Logger, a.Config.PollInterval)
	done := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	a.poller = p
	a.stopPoller = cancel
	a.pollerDone = done

	go func() {
		defer close(done)
		a.Logger.Info("starting encoder poller")
		p.Run(ctx)
	}()

	a.osc = oscillator.New(a.freq, c.AudioSampleRate)
	a.state = Running

	return nil
}

// report logs the encoder's identity and sets its gain. None of this is
// needed to run, so failures are only logged.
func (a *App) report() {
	info, err := a.Encoder.RefreshBasicInfo()
	if err != nil {
		a.Logger.Warnf("unable to read encoder info: %s", err)
	} else {
		a.info = info
		a.Logger.WithFields(logrus.Fields{
			"pid":     fmt.Sprintf("%#x", info.PID),
			"vid":     fmt.Sprintf("%#x", info.VID),
			"version": fmt.Sprintf("%#x", info.Version),
			"addr":    fmt.Sprintf("%#x", info.Addr),
		}).Info("encoder identified")
	}

	gain, err := a.Encoder.GainCoefficient()
	if err != nil {
		a.Logger.Warnf("unable to read gain coefficient: %s", err)
	} else {
		a.Logger.WithField("gain", gain).Info("encoder current gain coefficient")
	}

	a.Logger.WithField("gain", a.Config.TargetGain).Info("setting encoder gain coefficient")
	if err := a.Encoder.SetGainCoefficient(a.Config.TargetGain); err != nil {
		a.Logger.Warnf("unable to set gain coefficient: %s", err)
	}

	time.Sleep(a.Config.SettleDelay)

	gain, err = a.Encoder.GainCoefficient()
	if err != nil {
		a.Logger.Warnf("unable to read back gain coefficient: %s", err)
		return
	}

	a.gain = gain
	a.Logger.WithField("gain", gain).Info("encoder current gain coefficient")

	if gain != a.Config.TargetGain {
		a.Logger.Warnf("encoder gain coefficient is %d, wanted %d", gain, a.Config.TargetGain)
	}
}

// Render writes one oscillator sample per frame to every output channel.
func (a *App) Render(c *render.Context) {
	for n := 0; n < c.AudioFrames; n++ {
		out := a.osc.Advance()

		for ch := 0; ch < c.AudioOutChannels; ch++ {
			c.Write(n, ch, out)
		}
	}
}

// Cleanup stops the poller once audio has stopped.
func (a *App) Cleanup(c *render.Context) {
	a.Logger.Debug("cleaning up")
	a.Stop()
}

// Stop asks the poller to stop and waits for it. It's safe to call more than once.
func (a *App) Stop() {
	a.mu.Lock()
	if a.state != Running {
		a.mu.Unlock()
		return
	}
	a.state = StopRequested
	stop, done := a.stopPoller, a.pollerDone
	a.mu.Unlock()

	stop()
	<-done

	a.mu.Lock()
	a.state = Stopped
	a.mu.Unlock()

	if a.Indicators != nil {
		if err := a.Indicators.SetStatus(hardware.Running, false); err != nil {
			a.Logger.Warnf("unable to clear running status: %s", err)
		}
	}

	a.Logger.Info("encoder poller stopped")
}

// Status is a snapshot of the synth for reporting.
type Status struct {
	State     string            `json:"state"`
	Frequency float64           `json:"frequency"`
	Count     *uint16           `json:"count,omitempty"`
	Gain      uint8             `json:"gain"`
	Info      encoder.BasicInfo `json:"info"`
}

func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Status{
		State:     a.state.String(),
		Frequency: a.freq.Load(),
		Gain:      a.gain,
		Info:      a.info,
	}

	if a.poller != nil {
		if count, ok := a.poller.Last(); ok {
			s.Count = &count
		}
	}

	return s
}

// State returns where the synth is in its lifecycle.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}
