package main

import (
	"flag"
	"os"
	"time"

	"github.com/gloworm-vision/encodersine/hardware/encoder"
	"github.com/gloworm-vision/encodersine/render"
	"github.com/gloworm-vision/encodersine/synth"
	"github.com/sirupsen/logrus"
)

// sinewav renders the synth to a WAV file with a simulated encoder turned to
// a fixed count.
func main() {
	out := flag.String("o", "sine.wav", "output file")
	count := flag.Uint("count", 340, "encoder count (frequency is count + 100 Hz)")
	seconds := flag.Float64("seconds", 2, "length to render")
	sampleRate := flag.Float64("rate", 44100, "sample rate")
	flag.Parse()

	logger := logrus.New()

	sim := encoder.NewSim()
	if err := sim.SetEncoderValue(uint16(*count)); err != nil {
		logger.Fatalf("unable to set encoder value: %s", err)
	}

	app := synth.New(synth.DefaultConfig(), sim, logger)

	c, err := render.NewContext(*sampleRate, 256, 2)
	if err != nil {
		logger.Fatalf("unable to create audio context: %s", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Fatalf("unable to create %s: %s", *out, err)
	}
	defer f.Close()

	// WriteWAV sets the synth up, so the poller needs a moment to pick up the
	// count before the first block is rendered
	primed := &primedProgram{App: app, wait: 5 * synth.DefaultConfig().PollInterval}

	blocks := int(*seconds * *sampleRate / float64(c.AudioFrames))
	if err := render.WriteWAV(f, primed, c, blocks); err != nil {
		logger.Fatalf("unable to write wav: %s", err)
	}

	logger.WithField("file", *out).Info("wrote wav")
}

type primedProgram struct {
	*synth.App
	wait time.Duration
}

func (p *primedProgram) Setup(c *render.Context) error {
	if err := p.App.Setup(c); err != nil {
		return err
	}

	time.Sleep(p.wait)
	return nil
}
