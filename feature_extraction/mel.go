package feature_extraction

import "math"

// Slaney-style mel scale: linear below 1 kHz, logarithmic above.
const (
	melMinLogHz  = 1000.0
	melFSp       = 200.0 / 3
	melMinLogMel = melMinLogHz / melFSp
)

var melLogStep = math.Log(6.4) / 27.0

func hzToMel(hz float64) float64 {
	if hz < melMinLogHz {
		return hz / melFSp
	}

	return melMinLogMel + math.Log(hz/melMinLogHz)/melLogStep
}

func melToHz(mel float64) float64 {
	if mel < melMinLogMel {
		return mel * melFSp
	}

	return melMinLogHz * math.Exp(melLogStep*(mel-melMinLogMel))
}

// melFilterBank builds numMels triangular filters over the fftSize/2+1
// power bins, each scaled to unit area.
func melFilterBank(numMels, fftSize, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	halfFFT := fftSize/2 + 1

	binFreqs := make([]float64, halfFFT)
	for k := range binFreqs {
		binFreqs[k] = float64(k) * float64(sampleRate) / float64(fftSize)
	}

	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)

	edges := make([]float64, numMels+2)
	step := (highMel - lowMel) / float64(numMels+1)
	for i := range edges {
		edges[i] = melToHz(lowMel + float64(i)*step)
	}

	bank := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		left, center, right := edges[m], edges[m+1], edges[m+2]
		norm := 2.0 / (right - left)

		filter := make([]float64, halfFFT)
		for k, f := range binFreqs {
			lower := (f - left) / (center - left)
			upper := (right - f) / (right - center)

			w := math.Min(lower, upper)
			if w > 0 {
				filter[k] = w * norm
			}
		}

		bank[m] = filter
	}

	return bank
}
