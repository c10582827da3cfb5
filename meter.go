// meter.go - lock-free peak/hold/RMS metering bridge between the audio
// thread and UI/control threads

package daw

import (
	"math"
	"sync/atomic"
)

// TrackMeters is the lock-free bridge: the audio thread writes, any other
// thread reads, via plain atomics on the IEEE-754 bit pattern of each f32.
type TrackMeters struct {
	PeakL atomic.Uint32
	PeakR atomic.Uint32
	HoldL atomic.Uint32
	HoldR atomic.Uint32
	RMSL  atomic.Uint32
	RMSR  atomic.Uint32
}

// NewTrackMeters constructs a zeroed meter bridge.
func NewTrackMeters() *TrackMeters { return &TrackMeters{} }

// Snapshot is a point-in-time read of all six meter values, in linear
// amplitude (not dB).
type Snapshot struct {
	PeakL, PeakR float32
	HoldL, HoldR float32
	RMSL, RMSR   float32
}

// Read takes a consistent-enough snapshot for UI display.
func (m *TrackMeters) Read() Snapshot {
	return Snapshot{
		PeakL: bitsToF32(m.PeakL.Load()),
		PeakR: bitsToF32(m.PeakR.Load()),
		HoldL: bitsToF32(m.HoldL.Load()),
		HoldR: bitsToF32(m.HoldR.Load()),
		RMSL:  bitsToF32(m.RMSL.Load()),
		RMSR:  bitsToF32(m.RMSR.Load()),
	}
}

// MeterState is the stateful DSP calculator. Owned exclusively by the audio
// thread; never shared.
type MeterState struct {
	decayCoeff float32

	storedPeakL, storedPeakR float32
	holdFramesL, holdFramesR int
	holdDurationFrames       int
}

// NewMeterState builds a meter calculator for the given sample rate: a
// 300ms exponential falloff and a 500ms peak hold, matching spec.md §4.7.
func NewMeterState(sampleRate float64) *MeterState {
	const releaseTimeSec = 0.300
	const holdTimeSec = 0.500

	return &MeterState{
		decayCoeff:         float32(math.Exp(-1.0 / (releaseTimeSec * sampleRate))),
		holdDurationFrames: int(holdTimeSec * sampleRate),
	}
}

// ProcessBlock analyzes one interleaved block and publishes updated values
// to meters. Block-size independent: the decay coefficient is scaled to the
// block length so metering behavior doesn't vary with buffer size.
func (s *MeterState) ProcessBlock(buffer []float32, channels int, meters *TrackMeters) {
	if channels == 0 {
		return
	}
	blockSize := len(buffer) / channels
	if blockSize == 0 {
		return
	}

	var maxL, maxR float32
	var sumSqL, sumSqR float32

	for i := 0; i < blockSize; i++ {
		l := buffer[i*channels]
		if l < 0 {
			l = -l
		}
		if l > maxL {
			maxL = l
		}
		sumSqL += buffer[i*channels] * buffer[i*channels]

		if channels > 1 {
			r := buffer[i*channels+1]
			if r < 0 {
				r = -r
			}
			if r > maxR {
				maxR = r
			}
			sumSqR += buffer[i*channels+1] * buffer[i*channels+1]
		} else {
			maxR = maxL
			sumSqR = sumSqL
		}
	}

	rmsL := float32(math.Sqrt(float64(sumSqL) / float64(blockSize)))
	rmsR := float32(math.Sqrt(float64(sumSqR) / float64(blockSize)))

	blockDecay := float32(math.Pow(float64(s.decayCoeff), float64(blockSize)))

	s.storedPeakL, s.holdFramesL = decayChannel(maxL, s.storedPeakL, s.holdFramesL, blockSize, s.holdDurationFrames, blockDecay)
	s.storedPeakR, s.holdFramesR = decayChannel(maxR, s.storedPeakR, s.holdFramesR, blockSize, s.holdDurationFrames, blockDecay)

	meters.PeakL.Store(f32ToBits(maxL))
	meters.PeakR.Store(f32ToBits(maxR))
	meters.HoldL.Store(f32ToBits(s.storedPeakL))
	meters.HoldR.Store(f32ToBits(s.storedPeakR))
	meters.RMSL.Store(f32ToBits(rmsL))
	meters.RMSR.Store(f32ToBits(rmsR))
}

// decayChannel implements instant-attack, 500ms-hold, scaled-decay peak
// tracking for a single channel, with a denormal-protection nudge during
// decay.
func decayChannel(max, storedPeak float32, holdFrames, blockSize, holdDurationFrames int, blockDecay float32) (float32, int) {
	if max > storedPeak {
		return max, holdDurationFrames
	}
	if holdFrames > 0 {
		holdFrames -= blockSize
		if holdFrames < 0 {
			holdFrames = 0
		}
		return storedPeak, holdFrames
	}
	storedPeak *= blockDecay
	storedPeak += 1e-20
	storedPeak -= 1e-20
	return storedPeak, holdFrames
}
