package render

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WriteWAV sets up the program, renders the given number of blocks into a 16 bit
// PCM WAV stream and cleans the program up. Nothing is written if setup fails.
func WriteWAV(w io.WriteSeeker, p Program, c *Context, blocks int) error {
	if err := p.Setup(c); err != nil {
		return fmt.Errorf("unable to setup program: %w", err)
	}
	defer p.Cleanup(c)

	enc := wav.NewEncoder(w, int(c.AudioSampleRate), wavBitDepth, c.AudioOutChannels, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: c.AudioOutChannels,
			SampleRate:  int(c.AudioSampleRate),
		},
		Data:           make([]int, len(c.AudioOut)),
		SourceBitDepth: wavBitDepth,
	}

	const fullScale = 1<<(wavBitDepth-1) - 1

	for i := 0; i < blocks; i++ {
		p.Render(c)

		for j, v := range c.AudioOut {
			buf.Data[j] = int(v * fullScale)
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("unable to write block %d: %w", i, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to finish wav stream: %w", err)
	}

	return nil
}
