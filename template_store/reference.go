package template_store

import (
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// ReadWAV decodes a whole PCM wav file from fs.
func ReadWAV(fs afero.Fs, path string) (*audio.IntBuffer, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid wav file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: decode pcm: %w", path, err)
	}

	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%s: missing audio format", path)
	}

	return buf, nil
}

// MonoSamples downmixes buf to one channel and scales it to [-1, 1] using the
// source bit depth.
func MonoSamples(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}

	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	out := make([]float64, frames)

	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}

		out[i] = sum / float64(channels) / scale
	}

	return out
}
