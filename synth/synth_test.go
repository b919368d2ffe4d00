package synth

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/gloworm-vision/encodersine/hardware/encoder"
	"github.com/gloworm-vision/encodersine/render"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type recordingIndicators struct {
	running []bool
}

func (r *recordingIndicators) SetStatus(status hardware.Status, value bool) error {
	r.running = append(r.running, value)
	return nil
}

func testConfig() Config {
	return Config{TargetGain: 25, PollInterval: time.Millisecond}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSetupAndRender(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sim := encoder.NewSim()
	sim.SetEncoderValue(423)

	indicators := &recordingIndicators{}
	app := New(testConfig(), sim, logger)
	app.Indicators = indicators

	c, err := render.NewContext(44100, 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if err := app.Setup(c); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer app.Stop()

	if app.State() != Running {
		t.Fatalf("expected running, got %s", app.State())
	}

	waitFor(t, func() bool { return app.Status().Frequency == 523 })

	app.Render(c)

	step := 2 * math.Pi * 523 / 44100
	for n := 0; n < 4; n++ {
		want := 0.8 * math.Sin(float64(n)*step)
		for ch := 0; ch < 2; ch++ {
			if got := float64(c.Read(n, ch)); math.Abs(got-want) > 1e-5 {
				t.Errorf("frame %d channel %d: expected %v, got %v", n, ch, want, got)
			}
		}
	}

	status := app.Status()
	if status.Count == nil || *status.Count != 423 {
		t.Fatalf("expected count 423, got %v", status.Count)
	}
	if status.Gain != 25 {
		t.Fatalf("expected gain 25, got %d", status.Gain)
	}
	if status.Info.PID != encoder.DFRobotPID {
		t.Fatalf("expected PID %#x, got %#x", encoder.DFRobotPID, status.Info.PID)
	}

	if gain, _ := sim.GainCoefficient(); gain != 25 {
		t.Fatalf("expected device gain 25, got %d", gain)
	}

	var identified bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "encoder identified" && entry.Data["pid"] == "0x1f6" {
			identified = true
		}
	}
	if !identified {
		t.Fatal("expected encoder identity to be logged")
	}

	if len(indicators.running) != 1 || !indicators.running[0] {
		t.Fatalf("expected running status to be shown, got %v", indicators.running)
	}
}

func TestButtonResetsFrequency(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sim := encoder.NewSim()
	sim.SetEncoderValue(700)

	app := New(testConfig(), sim, logger)
	c, _ := render.NewContext(48000, 16, 1)

	if err := app.Setup(c); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer app.Stop()

	waitFor(t, func() bool { return app.Status().Frequency == 800 })

	sim.Press()

	waitFor(t, func() bool { return app.Status().Frequency == 100 })

	if v, _ := sim.EncoderValue(); v != 0 {
		t.Fatalf("expected the encoder to be reset, got %d", v)
	}
}

func TestSetupFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sim := encoder.NewSim()
	sim.Unreachable = true

	indicators := &recordingIndicators{}
	app := New(testConfig(), sim, logger)
	app.Indicators = indicators

	c, _ := render.NewContext(44100, 4, 2)

	err := app.Setup(c)
	if !errors.Is(err, encoder.ErrInit{}) {
		t.Fatalf("expected ErrInit, got %v", err)
	}

	if app.State() != Uninitialized {
		t.Fatalf("expected uninitialized, got %s", app.State())
	}
	if app.pollerDone != nil || app.poller != nil {
		t.Fatal("expected no poller to be started")
	}
	if len(indicators.running) != 0 {
		t.Fatalf("expected no status change, got %v", indicators.running)
	}

	if hook.LastEntry().Level != logrus.ErrorLevel {
		t.Fatalf("expected an error to be logged, got %s", hook.LastEntry().Level)
	}

	// stopping a synth that never started does nothing
	app.Stop()
	if app.State() != Uninitialized {
		t.Fatalf("expected uninitialized, got %s", app.State())
	}
}

func TestGainMismatchIsNotFatal(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sim := encoder.NewSim()

	app := New(Config{TargetGain: 60, PollInterval: time.Millisecond}, sim, logger)
	c, _ := render.NewContext(44100, 4, 2)

	if err := app.Setup(c); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer app.Stop()

	if gain, _ := sim.GainCoefficient(); gain != 1 {
		t.Fatalf("expected out of range gain to be ignored, got %d", gain)
	}

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && strings.Contains(entry.Message, "wanted 60") {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected a warning about the gain coefficient")
	}
}

func TestStop(t *testing.T) {
	logger, _ := test.NewNullLogger()
	indicators := &recordingIndicators{}

	app := New(testConfig(), encoder.NewSim(), logger)
	app.Indicators = indicators

	c, _ := render.NewContext(44100, 4, 2)
	if err := app.Setup(c); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	app.Cleanup(c)
	if app.State() != Stopped {
		t.Fatalf("expected stopped, got %s", app.State())
	}

	select {
	case <-app.pollerDone:
	default:
		t.Fatal("expected the poller to have exited")
	}

	app.Stop()

	if len(indicators.running) != 2 || indicators.running[1] {
		t.Fatalf("expected running status on then off, got %v", indicators.running)
	}

	if err := app.Setup(c); err == nil {
		t.Fatal("expected setting up a stopped synth to fail")
	}
}

func TestRenderDoesNotAllocate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	app := New(testConfig(), encoder.NewSim(), logger)

	c, _ := render.NewContext(44100, 64, 2)
	if err := app.Setup(c); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// the poller's goroutine would count towards the allocations
	app.Stop()

	allocs := testing.AllocsPerRun(50, func() {
		app.Render(c)
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations, got %v", allocs)
	}
}

func TestStateString(t *testing.T) {
	if StopRequested.String() != "stop requested" {
		t.Fatalf("unexpected string %q", StopRequested.String())
	}
	if State(42).String() != "state(42)" {
		t.Fatalf("unexpected string %q", State(42).String())
	}
}

// countingEncoder records whether the encoder was touched at all.
type countingEncoder struct {
	*encoder.Sim
	begins int
}

func (c *countingEncoder) Begin() error {
	c.begins++
	return c.Sim.Begin()
}

func TestSetupRejectsBadContext(t *testing.T) {
	for _, c := range []*render.Context{
		{AudioFrames: 4, AudioOutChannels: 2, AudioSampleRate: 0, AudioOut: make([]float32, 8)},
		{AudioFrames: 4, AudioOutChannels: 2, AudioSampleRate: math.Inf(1), AudioOut: make([]float32, 8)},
		{AudioFrames: 4, AudioOutChannels: 2, AudioSampleRate: math.NaN(), AudioOut: make([]float32, 8)},
		{AudioFrames: 4, AudioOutChannels: 2, AudioSampleRate: 44100, AudioOut: make([]float32, 3)},
	} {
		logger, _ := test.NewNullLogger()
		enc := &countingEncoder{Sim: encoder.NewSim()}
		app := New(testConfig(), enc, logger)

		if err := app.Setup(c); err == nil {
			app.Stop()
			t.Fatalf("expected an error for %+v", c)
		}

		if enc.begins != 0 {
			t.Fatalf("expected the encoder not to be touched for %+v", c)
		}
		if app.State() != Uninitialized || app.poller != nil {
			t.Fatalf("expected nothing to be started for %+v", c)
		}
	}
}
