// track.go - a mixer channel: clips plus the per-track DSP chain

package daw

import (
	"math"
	"time"
)

// TrackPlayState mirrors the transport: a track only renders audio while
// Playing.
type TrackPlayState int

const (
	TrackStopped TrackPlayState = iota
	TrackPlaying
	TrackPaused
)

const fadeEdgeMs = 5

// Track owns an ordered list of clips, gain/pan/mute/solo, and the
// per-track EQ/compressor/meter chain.
type Track struct {
	ID    TrackID
	Name  string
	Color string

	Gain  float32
	Pan   float32
	Muted bool
	Solo  bool

	state TrackPlayState
	Clips []*Clip

	EQ         *EQChain
	Compressor *CompressorNode
	Meters     *TrackMeters
	meterState *MeterState

	scratch []float32
	clipBuf []float32
}

// NewTrack constructs a track with spec.md defaults (unity gain, centered
// pan, full EQ chain and a default-active compressor).
func NewTrack(id TrackID, name string, sampleRate float64, channels int) *Track {
	return &Track{
		ID:         id,
		Name:       name,
		Gain:       1.0,
		Pan:        0.0,
		state:      TrackStopped,
		EQ:         NewEQChain(sampleRate, channels),
		Compressor: NewCompressorNode(sampleRate),
		Meters:     NewTrackMeters(),
		meterState: NewMeterState(sampleRate),
	}
}

// State returns the track's transport state.
func (t *Track) State() TrackPlayState { return t.state }

// SetState updates transport state and propagates playing/paused to every
// clip's decoder worker.
func (t *Track) SetState(state TrackPlayState) {
	t.state = state
	for _, c := range t.Clips {
		c.SetPlaying(state == TrackPlaying)
	}
}

// Seek forwards a timeline seek to every clip so they're ready when the
// playhead reaches them.
func (t *Track) Seek(globalPos time.Duration) {
	for _, c := range t.Clips {
		c.Seek(globalPos)
	}
}

// AddClip appends a clip, syncing its play state and position to the
// track's current state and the given transport position.
func (t *Track) AddClip(clip *Clip, currentPos time.Duration) {
	clip.Seek(currentPos)
	clip.SetPlaying(t.state == TrackPlaying)
	t.Clips = append(t.Clips, clip)
}

// IsAudible implements the non-destructive solo rule of spec.md §4.4:
// anySolo ? t.Solo : !t.Muted, and gain above the near-silence floor.
func (t *Track) IsAudible(anySolo bool) bool {
	var soloGate bool
	if anySolo {
		soloGate = t.Solo
	} else {
		soloGate = !t.Muted
	}
	return soloGate && t.Gain > 1e-3
}

func (t *Track) scratchBuf(n int) []float32 {
	if cap(t.scratch) < n {
		t.scratch = make([]float32, n)
	}
	buf := t.scratch[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// clipScratchBuf returns a zeroed private buffer for a single clip's
// contribution to a block, kept separate from the track-level scratch
// accumulator so edge fades scale only that clip's own samples.
func (t *Track) clipScratchBuf(n int) []float32 {
	if cap(t.clipBuf) < n {
		t.clipBuf = make([]float32, n)
	}
	buf := t.clipBuf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// RenderInto renders this track's contribution to one block, per spec.md
// §4.4: zero dst, find clips overlapping [t0, t1), mix audible ones through
// a scratch buffer with edge fades, apply pan/gain, then the EQ chain and
// compressor, then update meters.
func (t *Track) RenderInto(dst []float32, channels int, engineTime time.Duration, sampleRate int, audible bool) int {
	for i := range dst {
		dst[i] = 0
	}
	if t.state != TrackPlaying {
		return 0
	}

	frames := len(dst) / channels
	bufferDuration := time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
	t0 := engineTime
	t1 := engineTime + bufferDuration

	scratch := t.scratchBuf(len(dst))
	activeClips := 0

	for _, clip := range t.Clips {
		clipStart := clip.StartTime
		clipEnd := clip.End()

		if t0 >= clipEnd || t1 <= clipStart {
			continue
		}

		offsetFrames := 0
		if t0 < clipStart {
			diff := (clipStart - t0).Seconds()
			offsetFrames = int(math.Round(diff * float64(sampleRate)))
		}
		if offsetFrames*channels >= len(dst) {
			continue
		}

		remaining := scratch[offsetFrames*channels:]
		framesToMix := len(remaining) / channels

		if audible {
			local := t.clipScratchBuf(len(remaining))
			mixed := clip.MixInto(local, framesToMix, channels)
			applyEdgeFades(local[:mixed*channels], channels, sampleRate, t0, t1, clipStart, clipEnd)
			for i := 0; i < mixed*channels; i++ {
				remaining[i] += local[i]
			}
			activeClips++
		} else {
			clip.Consume(framesToMix, channels)
		}
	}

	if activeClips > 0 && audible {
		gain := t.Gain
		pan := t.Pan
		if pan < -1 {
			pan = -1
		} else if pan > 1 {
			pan = 1
		}

		var panL, panR float32 = 1, 1
		if channels >= 2 {
			angle := (pan + 1) * 0.25 * math.Pi
			panL = float32(math.Cos(float64(angle)))
			panR = float32(math.Sin(float64(angle)))
		}

		for i := 0; i < len(scratch); i += channels {
			if channels >= 2 {
				scratch[i] *= gain * panL
				scratch[i+1] *= gain * panR
				for c := 2; c < channels; c++ {
					scratch[i+c] *= gain
				}
			} else {
				scratch[i] *= gain
			}
		}
	}

	copy(dst, scratch)

	t.EQ.ProcessInPlace(dst, channels)
	t.Compressor.Process(dst)
	t.meterState.ProcessBlock(dst, channels, t.Meters)

	return frames
}

// applyEdgeFades applies a linear fadeEdgeMs fade at the in-edge and/or
// out-edge of a clip's contribution to this block, to eliminate clicks at
// clip boundaries (spec.md §4.4 step 3c).
func applyEdgeFades(buf []float32, channels, sampleRate int, t0, t1, clipStart, clipEnd time.Duration) {
	if len(buf) == 0 {
		return
	}
	frames := len(buf) / channels
	fadeFrames := sampleRate * fadeEdgeMs / 1000
	if fadeFrames > frames {
		fadeFrames = frames
	}
	if fadeFrames == 0 {
		return
	}

	edgeIn := t0 < clipStart && clipStart <= t1
	edgeOut := t0 < clipEnd && clipEnd <= t1

	if edgeIn {
		for f := 0; f < fadeFrames; f++ {
			ramp := float32(f) / float32(fadeFrames)
			for c := 0; c < channels; c++ {
				buf[f*channels+c] *= ramp
			}
		}
	}
	if edgeOut {
		for f := 0; f < fadeFrames; f++ {
			ramp := float32(f) / float32(fadeFrames)
			frameIdx := frames - 1 - f
			for c := 0; c < channels; c++ {
				buf[frameIdx*channels+c] *= ramp
			}
		}
	}
}
