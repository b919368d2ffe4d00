// Package render is the boundary between an audio program and whatever drives
// it: a program is set up once, asked to render fixed size blocks for as long
// as audio is running, then cleaned up.
package render

import (
	"fmt"
	"math"
)

// Context describes the block being rendered. AudioOut is interleaved:
// the sample for frame n on channel ch lives at AudioOut[n*AudioOutChannels+ch].
type Context struct {
	AudioFrames      int
	AudioOutChannels int
	AudioSampleRate  float64
	AudioOut         []float32
}

// NewContext allocates a Context with an output buffer for one block.
func NewContext(sampleRate float64, frames, channels int) (*Context, error) {
	c := &Context{
		AudioFrames:      frames,
		AudioOutChannels: channels,
		AudioSampleRate:  sampleRate,
	}
	if frames > 0 && channels > 0 {
		c.AudioOut = make([]float32, frames*channels)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks the block description makes sense and AudioOut can hold a block.
func (c *Context) Validate() error {
	if !(c.AudioSampleRate > 0) || math.IsInf(c.AudioSampleRate, 1) {
		return fmt.Errorf("invalid sample rate %v", c.AudioSampleRate)
	}
	if c.AudioFrames <= 0 {
		return fmt.Errorf("invalid block size %d", c.AudioFrames)
	}
	if c.AudioOutChannels <= 0 {
		return fmt.Errorf("invalid channel count %d", c.AudioOutChannels)
	}
	if len(c.AudioOut) < c.AudioFrames*c.AudioOutChannels {
		return fmt.Errorf("output buffer holds %d samples, need %d", len(c.AudioOut), c.AudioFrames*c.AudioOutChannels)
	}

	return nil
}

// Write sets the output sample for a frame and channel.
func (c *Context) Write(frame, channel int, v float32) {
	c.AudioOut[frame*c.AudioOutChannels+channel] = v
}

// Read returns the output sample for a frame and channel.
func (c *Context) Read(frame, channel int) float32 {
	return c.AudioOut[frame*c.AudioOutChannels+channel]
}

// Program is an audio program driven block by block.
type Program interface {
	// Setup is called once before any call to Render. If it fails, Render
	// must not be called.
	Setup(c *Context) error

	// Render fills c.AudioOut. It runs under a real-time deadline so it must
	// not block, allocate or lock.
	Render(c *Context)

	// Cleanup is called once when audio stops.
	Cleanup(c *Context)
}
