package stream

import "math"

// logExponent maps a linear gain onto perceived loudness.
const logExponent = 1.660964

// LogarithmicFactor converts a gain into the multiplier applied to samples.
func LogarithmicFactor(gain float64) float64 {
	if gain <= 0 {
		return 0
	}
	return math.Pow(gain, logExponent)
}

func applyGain(pcm []int16, factor float64) {
	if factor == 1 {
		return
	}
	for i, v := range pcm {
		scaled := math.Round(float64(v) * factor)
		switch {
		case scaled > math.MaxInt16:
			pcm[i] = math.MaxInt16
		case scaled < math.MinInt16:
			pcm[i] = math.MinInt16
		default:
			pcm[i] = int16(scaled)
		}
	}
}
