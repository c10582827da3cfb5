// eq.go - per-band parametric EQ using audio-EQ-cookbook biquads

package daw

import (
	"math"
	"sync"
	"sync/atomic"
)

// FilterType selects a biquad cookbook formula.
type FilterType int

const (
	FilterLowPass FilterType = iota
	FilterHighPass
	FilterBandPass
	FilterNotch
	FilterPeaking
	FilterLowShelf
	FilterHighShelf
)

// EQParams is one band's published parameter record. Freq is clamped to
// [20, sampleRate/2-1] and Q to >= 0.1 whenever coefficients are recomputed.
type EQParams struct {
	Type     FilterType
	FreqHz   float32
	Q        float32
	GainDB   float32
	Active   bool
}

// DefaultEQParams returns an inactive peaking band at 1kHz, Q 0.707 — the
// audio-EQ-cookbook's "neutral" starting point.
func DefaultEQParams() EQParams {
	return EQParams{Type: FilterPeaking, FreqHz: 1000, Q: 0.707, GainDB: 0, Active: false}
}

type biquadCoeffs struct {
	b0, b1, b2, a1, a2 float32
}

type biquadState struct {
	x1, x2, y1, y2 float32
}

func (s *biquadState) reset() {
	*s = biquadState{}
}

func (s *biquadState) process(c biquadCoeffs, x float32) float32 {
	y := c.b0*x + c.b1*s.x1 + c.b2*s.x2 - c.a1*s.y1 - c.a2*s.y2
	s.x2 = s.x1
	s.x1 = x
	s.y2 = s.y1
	s.y1 = y
	if math.Abs(float64(y)) < 1e-20 {
		return 0
	}
	return y
}

// computeCoeffs implements the standard audio-EQ-cookbook formulas
// (Robert Bristow-Johnson). freq and q are assumed already clamped.
func computeCoeffs(ft FilterType, sampleRate float64, freq, q, gainDB float64) biquadCoeffs {
	w0 := 2 * math.Pi * freq / sampleRate
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * q)
	A := math.Pow(10, gainDB/40)

	var b0, b1, b2, a0, a1, a2 float64

	switch ft {
	case FilterLowPass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case FilterHighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case FilterBandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case FilterNotch:
		b0 = 1
		b1 = -2 * cosW0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case FilterPeaking:
		b0 = 1 + alpha*A
		b1 = -2 * cosW0
		b2 = 1 - alpha*A
		a0 = 1 + alpha/A
		a1 = -2 * cosW0
		a2 = 1 - alpha/A
	case FilterLowShelf:
		sqrtA := math.Sqrt(A)
		beta := 2 * sqrtA * alpha
		b0 = A * ((A + 1) - (A-1)*cosW0 + beta)
		b1 = 2 * A * ((A - 1) - (A+1)*cosW0)
		b2 = A * ((A + 1) - (A-1)*cosW0 - beta)
		a0 = (A + 1) + (A-1)*cosW0 + beta
		a1 = -2 * ((A - 1) + (A+1)*cosW0)
		a2 = (A + 1) + (A-1)*cosW0 - beta
	case FilterHighShelf:
		sqrtA := math.Sqrt(A)
		beta := 2 * sqrtA * alpha
		b0 = A * ((A + 1) + (A-1)*cosW0 + beta)
		b1 = -2 * A * ((A - 1) + (A+1)*cosW0)
		b2 = A * ((A + 1) + (A-1)*cosW0 - beta)
		a0 = (A + 1) - (A-1)*cosW0 + beta
		a1 = 2 * ((A - 1) - (A+1)*cosW0)
		a2 = (A + 1) - (A-1)*cosW0 - beta
	default:
		// Transparent passthrough.
		return biquadCoeffs{b0: 1}
	}

	return biquadCoeffs{
		b0: float32(b0 / a0),
		b1: float32(b1 / a0),
		b2: float32(b2 / a0),
		a1: float32(a1 / a0),
		a2: float32(a2 / a0),
	}
}

// EQBand is one biquad stage with per-channel state. Parameters are
// published under a mutex from control threads; the audio thread reads the
// derived coefficients and active flag through atomic loads on every Process
// call, following the teacher's atomic-parameter-exchange idiom.
type EQBand struct {
	mu         sync.Mutex
	params     EQParams
	sampleRate float64

	coeffs atomic.Value // biquadCoeffs
	active atomic.Bool
	state  []biquadState
}

// NewEQBand constructs a band for the given channel count and initial
// parameters.
func NewEQBand(sampleRate float64, channels int, params EQParams) *EQBand {
	b := &EQBand{
		params:     params,
		sampleRate: sampleRate,
		state:      make([]biquadState, channels),
	}
	b.recompute(true)
	return b
}

func (b *EQBand) clampedFreqAndQ() (float64, float64) {
	nyquist := b.sampleRate/2 - 1
	freq := math.Max(20, math.Min(float64(b.params.FreqHz), nyquist))
	q := math.Max(0.1, float64(b.params.Q))
	return freq, q
}

func (b *EQBand) recompute(resetState bool) {
	freq, q := b.clampedFreqAndQ()
	c := computeCoeffs(b.params.Type, b.sampleRate, freq, q, float64(b.params.GainDB))
	b.coeffs.Store(c)
	b.active.Store(b.params.Active)
	if resetState {
		for i := range b.state {
			b.state[i].reset()
		}
	}
}

// SetParams publishes new parameters. Resets biquad state on filter-type
// change to avoid transients, per spec.md §4.5.
func (b *EQBand) SetParams(p EQParams) {
	b.mu.Lock()
	defer b.mu.Unlock()
	typeChanged := b.params.Type != p.Type
	b.params = p
	b.recompute(typeChanged)
}

// Params returns the currently published parameters.
func (b *EQBand) Params() EQParams {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.params
}

// SetSampleRate updates the operating sample rate and recomputes
// coefficients, resetting state.
func (b *EQBand) SetSampleRate(sampleRate float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sampleRate = sampleRate
	b.recompute(true)
}

// Process filters one sample on the given channel index. Realtime-safe: no
// locks, no allocation — reads the published coefficients via atomic.Value.
func (b *EQBand) Process(sample float32, channel int) float32 {
	if !b.active.Load() || channel >= len(b.state) {
		return sample
	}
	c := b.coeffs.Load().(biquadCoeffs)
	return b.state[channel].process(c, sample)
}

// IsActive reports whether the band currently processes audio.
func (b *EQBand) IsActive() bool {
	return b.active.Load()
}

// EQChain is the fixed four-band chain per track: HPF, two peaking, high
// shelf, by convention (spec.md §4.5).
type EQChain struct {
	Bands [4]*EQBand
}

// NewEQChain builds the default four-band chain for the given sample rate
// and channel count.
func NewEQChain(sampleRate float64, channels int) *EQChain {
	return &EQChain{
		Bands: [4]*EQBand{
			NewEQBand(sampleRate, channels, EQParams{Type: FilterHighPass, FreqHz: 75, Q: 0.707, Active: true}),
			NewEQBand(sampleRate, channels, EQParams{Type: FilterPeaking, FreqHz: 200, Q: 1.0, Active: false}),
			NewEQBand(sampleRate, channels, EQParams{Type: FilterPeaking, FreqHz: 2000, Q: 1.0, Active: false}),
			NewEQBand(sampleRate, channels, EQParams{Type: FilterHighShelf, FreqHz: 10000, Q: 0.707, Active: false}),
		},
	}
}

// ProcessInPlace runs the chain, in series, over an interleaved buffer.
func (c *EQChain) ProcessInPlace(buf []float32, channels int) {
	for i := 0; i < len(buf); i += channels {
		for ch := 0; ch < channels; ch++ {
			s := buf[i+ch]
			for _, band := range c.Bands {
				s = band.Process(s, ch)
			}
			buf[i+ch] = s
		}
	}
}
