// mixer.go - per-block mix bus: sums every track's scratch render and
// applies the final soft-clip before handing samples to the host

package daw

import (
	"math"
	"time"
)

// Mixer holds the two buffers spec.md §4.8 names: a scratch buffer handed
// to each track's RenderInto, and a mix bus accumulated across tracks.
type Mixer struct {
	channels int
	scratch  []float32
	mixBus   []float32
}

// NewMixer constructs a mixer for the given channel count.
func NewMixer(channels int) *Mixer {
	return &Mixer{channels: channels}
}

// BeginBlock (re)sizes both buffers for frames and zeroes the mix bus.
func (m *Mixer) BeginBlock(frames int) {
	needed := frames * m.channels
	if cap(m.mixBus) < needed {
		m.mixBus = make([]float32, needed)
		m.scratch = make([]float32, needed)
	}
	m.mixBus = m.mixBus[:needed]
	m.scratch = m.scratch[:needed]
	for i := range m.mixBus {
		m.mixBus[i] = 0
	}
}

// RenderTrack renders one track into the shared scratch buffer and sums the
// result into the mix bus.
func (m *Mixer) RenderTrack(t *Track, frames int, channels int, engineTime time.Duration, sampleRate int, audible bool) {
	written := t.RenderInto(m.scratch, channels, engineTime, sampleRate, audible)
	samples := written * channels
	for i := 0; i < samples; i++ {
		m.mixBus[i] += m.scratch[i]
	}
}

// MixInto copies the mix bus into out, applying a tanh soft-clip; samples
// below 1e-10 are forced to exact zero to keep denormals out of downstream
// host-side DSP.
func (m *Mixer) MixInto(out []float32) {
	n := len(out)
	if len(m.mixBus) < n {
		n = len(m.mixBus)
	}
	for i := 0; i < n; i++ {
		s := m.mixBus[i]
		if math.Abs(float64(s)) < 1e-10 {
			out[i] = 0
			continue
		}
		out[i] = float32(math.Tanh(float64(s)))
	}
}
