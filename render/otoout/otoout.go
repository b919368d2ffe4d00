// Package otoout plays a render.Program through the system's audio output.
// It's kept apart from render because oto needs cgo and the platform's audio
// headers (ALSA on Linux), which headless tools and tests shouldn't have to link.
package otoout

import (
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gloworm-vision/encodersine/render"
	"github.com/sirupsen/logrus"
)

// Player plays a Program live through oto.
type Player struct {
	Context *render.Context
	Logger  *logrus.Logger
}

// Run sets up the program, plays it until ctx is cancelled, then cleans it up.
// If setup fails nothing is played and the error is returned.
func (o *Player) Run(ctx context.Context, p render.Program) error {
	c := o.Context

	if err := p.Setup(c); err != nil {
		return fmt.Errorf("unable to setup program: %w", err)
	}
	defer p.Cleanup(c)

	blockDuration := time.Duration(float64(time.Second) * float64(c.AudioFrames) / c.AudioSampleRate)

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(c.AudioSampleRate),
		ChannelCount: c.AudioOutChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   blockDuration * 4,
	})
	if err != nil {
		return fmt.Errorf("unable to open audio output: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(render.NewReader(p, c))
	player.Play()

	o.Logger.WithFields(logrus.Fields{
		"sampleRate": c.AudioSampleRate,
		"frames":     c.AudioFrames,
		"channels":   c.AudioOutChannels,
	}).Info("audio started")

	<-ctx.Done()

	player.Pause()
	player.Close()

	o.Logger.Info("audio stopped")

	return nil
}
