// Package feature_extraction computes MFCC matrices from mono PCM.
//
// The pipeline follows the usual cepstral front-end: centered framing, Hann
// window, power spectrum, mel filterbank, decibel scaling and an orthonormal
// DCT-II. Defaults mirror the common librosa settings:
//
//	FFTSize:   2048
//	HopLength:  512
//	NumMels:    128
//	TopDB:       80
package feature_extraction

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var ErrEmptySignal = errors.New("feature_extraction: empty signal")

// amin floors the power spectrum before taking the logarithm.
const amin = 1e-10

type Config struct {
	SampleRate      int
	NumCoefficients int
	FFTSize         int     // default 2048
	HopLength       int     // default 512
	NumMels         int     // default 128
	MinFreq         float64 // default 0
	MaxFreq         float64 // default SampleRate/2
	TopDB           float64 // default 80; negative disables the floor
}

func (c *Config) applyDefaults() {
	if c.FFTSize == 0 {
		c.FFTSize = 2048
	}
	if c.HopLength == 0 {
		c.HopLength = 512
	}
	if c.NumMels == 0 {
		c.NumMels = 128
	}
	if c.MaxFreq == 0 {
		c.MaxFreq = float64(c.SampleRate) / 2
	}
	if c.TopDB == 0 {
		c.TopDB = 80
	}
}

type extractorImpl struct {
	cfg     Config
	window  []float64
	melBank [][]float64
	dct     [][]float64
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	c := *cfg
	c.applyDefaults()

	switch {
	case c.SampleRate <= 0:
		return nil, fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	case c.NumCoefficients <= 0:
		return nil, fmt.Errorf("coefficient count must be positive, got %d", c.NumCoefficients)
	case c.NumCoefficients > c.NumMels:
		return nil, fmt.Errorf("coefficient count %d exceeds mel band count %d", c.NumCoefficients, c.NumMels)
	case c.FFTSize < 2 || c.HopLength <= 0:
		return nil, fmt.Errorf("invalid framing: fft size %d, hop length %d", c.FFTSize, c.HopLength)
	case c.MinFreq < 0 || c.MaxFreq <= c.MinFreq || c.MaxFreq > float64(c.SampleRate)/2:
		return nil, fmt.Errorf("invalid mel range [%g, %g] for sample rate %d", c.MinFreq, c.MaxFreq, c.SampleRate)
	}

	return &extractorImpl{
		cfg:     c,
		window:  window.Hann(c.FFTSize),
		melBank: melFilterBank(c.NumMels, c.FFTSize, c.SampleRate, c.MinFreq, c.MaxFreq),
		dct:     dctBasis(c.NumCoefficients, c.NumMels),
	}, nil
}

func (e *extractorImpl) SampleRate() int {
	return e.cfg.SampleRate
}

// Extract returns a [NumCoefficients][T] matrix where
// T = 1 + len(samples)/HopLength.
func (e *extractorImpl) Extract(samples []float64) (Matrix, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}

	cfg := e.cfg
	nfft := cfg.FFTSize
	halfFFT := nfft/2 + 1

	// Center each frame on its hop position by zero-padding both ends.
	pad := nfft / 2
	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	numFrames := 1 + (len(padded)-nfft)/cfg.HopLength

	melDB := make([][]float64, numFrames)
	frame := make([]float64, nfft)
	power := make([]float64, halfFFT)
	maxDB := math.Inf(-1)

	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopLength
		for i := 0; i < nfft; i++ {
			frame[i] = padded[start+i] * e.window[i]
		}

		spectrum := fft.FFTReal(frame)
		for k := 0; k < halfFFT; k++ {
			a := cmplx.Abs(spectrum[k])
			power[k] = a * a
		}

		bands := make([]float64, cfg.NumMels)
		for m, filter := range e.melBank {
			var sum float64
			for k, w := range filter {
				if w != 0 {
					sum += w * power[k]
				}
			}

			db := 10 * math.Log10(math.Max(sum, amin))
			bands[m] = db

			if db > maxDB {
				maxDB = db
			}
		}

		melDB[t] = bands
	}

	if cfg.TopDB > 0 {
		floor := maxDB - cfg.TopDB
		for _, bands := range melDB {
			for m, v := range bands {
				if v < floor {
					bands[m] = floor
				}
			}
		}
	}

	out := make(Matrix, cfg.NumCoefficients)
	for k := range out {
		out[k] = make([]float64, numFrames)
	}

	for t, bands := range melDB {
		for k, row := range e.dct {
			var sum float64
			for j, b := range row {
				sum += b * bands[j]
			}

			out[k][t] = sum
		}
	}

	return out, nil
}

// NormalizeInt16 maps 16-bit PCM onto [-1, 1).
func NormalizeInt16(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768.0
	}

	return out
}
