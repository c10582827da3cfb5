// decoder_dsp.go - small sample-domain helpers shared by the decoder worker

package daw

// fadeSampleCount converts a millisecond duration to a scalar sample count
// (not frame count) at the given sample rate and channel width.
func fadeSampleCount(sampleRate int, ms int, channels int) int {
	return (sampleRate * ms / 1000) * channels
}

// applyFadeRamp scales the first n samples of data by a linear ramp from
// 0 to 1, consuming from *remaining (a running budget shared across
// multiple calls as a post-seek fade-in plays out). Each call ramps its own
// share of the budget, so the last sample it ramps is at unity.
func applyFadeRamp(data []float32, remaining *int) {
	if *remaining <= 0 || len(data) == 0 {
		return
	}
	n := *remaining
	if n > len(data) {
		n = len(data)
	}
	denom := float32(n - 1)
	if denom == 0 {
		denom = 1
	}
	for i := 0; i < n; i++ {
		ramp := float32(i) / denom
		data[i] *= ramp
	}
	*remaining -= n
}
