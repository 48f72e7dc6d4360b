package voice_activity_detection

import "math"

// fullScale maps 16-bit samples onto [-1, 1].
const fullScale = 32768.0

// RMS returns the root-mean-square level of samples, normalized so that a
// full-scale square wave measures 1.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64

	for _, s := range samples {
		v := float64(s) / fullScale
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// RMSFloat is RMS for samples already scaled to [-1, 1].
func RMSFloat(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64

	for _, v := range samples {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// Meter flags frames whose RMS is strictly above Threshold.
type Meter struct {
	Threshold float64
}

func (m Meter) Active(samples []int16) bool {
	return RMS(samples) > m.Threshold
}

// Frame builds a Frame from samples, deriving the active flag. The samples are
// copied so later reuse of the caller's buffer cannot change the frame.
func (m Meter) Frame(samples []int16) Frame {
	data := make([]int16, len(samples))
	copy(data, samples)

	return Frame{
		Samples: data,
		Active:  m.Active(data),
	}
}
