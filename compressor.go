// compressor.go - feed-forward peak compressor, realtime-safe

package daw

import (
	"math"
	"sync/atomic"
)

// CompressorParams is the full parameter set for a CompressorNode, as
// exchanged with control threads.
type CompressorParams struct {
	Active       bool
	ThresholdDB  float32
	Ratio        float32
	AttackMs     float32
	ReleaseMs    float32
	MakeupGainDB float32
}

// DefaultCompressorParams returns an active compressor with a -20dB
// threshold, 4:1 ratio, 5ms attack, 50ms release and no makeup gain.
func DefaultCompressorParams() CompressorParams {
	return CompressorParams{
		Active:       true,
		ThresholdDB:  -20,
		Ratio:        4,
		AttackMs:     5,
		ReleaseMs:    50,
		MakeupGainDB: 0,
	}
}

func f32ToBits(v float32) uint32 { return math.Float32bits(v) }
func bitsToF32(v uint32) float32 { return math.Float32frombits(v) }

// CompressorNode is a real-time safe feed-forward peak compressor. Every
// control parameter lives in its own atomic word so the audio thread never
// blocks on a control-thread write, and the audio thread itself never
// allocates or locks.
type CompressorNode struct {
	active       atomic.Bool
	thresholdDB  atomic.Uint32
	ratio        atomic.Uint32
	attackMs     atomic.Uint32
	releaseMs    atomic.Uint32
	makeupGainDB atomic.Uint32

	sampleRate float64
	envelope   float32
}

// NewCompressorNode constructs a compressor with spec.md's defaults.
func NewCompressorNode(sampleRate float64) *CompressorNode {
	c := &CompressorNode{sampleRate: sampleRate}
	c.SetParams(DefaultCompressorParams())
	return c
}

// SetActive toggles true bypass: when inactive, Process is a no-op and
// costs nothing on the audio thread.
func (c *CompressorNode) SetActive(active bool) { c.active.Store(active) }

func (c *CompressorNode) SetThreshold(db float32)  { c.thresholdDB.Store(f32ToBits(db)) }
func (c *CompressorNode) SetRatio(r float32)       { c.ratio.Store(f32ToBits(r)) }
func (c *CompressorNode) SetAttack(ms float32)     { c.attackMs.Store(f32ToBits(ms)) }
func (c *CompressorNode) SetRelease(ms float32)    { c.releaseMs.Store(f32ToBits(ms)) }
func (c *CompressorNode) SetMakeupGain(db float32) { c.makeupGainDB.Store(f32ToBits(db)) }

// Params returns a consistent-enough snapshot of all current parameters.
// Individual fields may be torn across concurrent writers by one update
// cycle; this matches the teacher's relaxed-atomics contract and is
// acceptable for control-rate parameters.
func (c *CompressorNode) Params() CompressorParams {
	return CompressorParams{
		Active:       c.active.Load(),
		ThresholdDB:  bitsToF32(c.thresholdDB.Load()),
		Ratio:        bitsToF32(c.ratio.Load()),
		AttackMs:     bitsToF32(c.attackMs.Load()),
		ReleaseMs:    bitsToF32(c.releaseMs.Load()),
		MakeupGainDB: bitsToF32(c.makeupGainDB.Load()),
	}
}

// SetParams publishes a full parameter set atomically-per-field.
func (c *CompressorNode) SetParams(p CompressorParams) {
	c.SetActive(p.Active)
	c.SetThreshold(p.ThresholdDB)
	c.SetRatio(p.Ratio)
	c.SetAttack(p.AttackMs)
	c.SetRelease(p.ReleaseMs)
	c.SetMakeupGain(p.MakeupGainDB)
}

// Process runs the compressor in place over an interleaved or mono buffer.
// Zero CPU when bypassed: the active check is the very first thing done.
func (c *CompressorNode) Process(buffer []float32) {
	if !c.active.Load() {
		return
	}

	threshold := bitsToF32(c.thresholdDB.Load())
	ratio := bitsToF32(c.ratio.Load())
	attack := bitsToF32(c.attackMs.Load())
	release := bitsToF32(c.releaseMs.Load())
	makeup := bitsToF32(c.makeupGainDB.Load())

	attackCoef := float32(math.Exp(-1.0 / (float64(attack) * 0.001 * c.sampleRate)))
	releaseCoef := float32(math.Exp(-1.0 / (float64(release) * 0.001 * c.sampleRate)))
	makeupLinear := float32(math.Pow(10, float64(makeup)/20))

	for i, sample := range buffer {
		inputLevel := float32(math.Abs(float64(sample)))

		if inputLevel > c.envelope {
			c.envelope = attackCoef*(c.envelope-inputLevel) + inputLevel
		} else {
			c.envelope = releaseCoef*(c.envelope-inputLevel) + inputLevel
		}

		envDB := 20 * float32(math.Log10(math.Max(float64(c.envelope), 1e-5)))

		var gainReductionDB float32
		if envDB > threshold {
			overshoot := envDB - threshold
			gainReductionDB = overshoot * (1 - 1/ratio)
		}

		gainReductionLinear := float32(math.Pow(10, float64(-gainReductionDB)/20))
		buffer[i] = sample * gainReductionLinear * makeupLinear
	}
}
