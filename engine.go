// engine.go - the realtime audio engine: transport, tracks, master gain

package daw

import "time"

// Engine owns the full set of tracks and the mix bus. Render is the sole
// entry point called from the host audio callback; everything it touches
// must already be lock-free and allocation-free.
type Engine struct {
	Transport  Transport
	SampleRate int
	Channels   int
	MasterGain float32

	// MasterMeters reflects the mix bus after master gain and soft-clip,
	// the same instant-attack/hold/decay metering every track uses. Not
	// defined by the original source (an open question); resolved here as
	// a single engine-level instance of the per-track meter type.
	MasterMeters *TrackMeters

	tracks     []*Track
	mixer      *Mixer
	ids        idAllocator
	meterState *MeterState
}

// NewEngine constructs a stopped engine at unity master gain.
func NewEngine(sampleRate, channels int) *Engine {
	return &Engine{
		Transport:    NewTransport(),
		SampleRate:   sampleRate,
		Channels:     channels,
		MasterGain:   1.0,
		mixer:        NewMixer(channels),
		MasterMeters: NewTrackMeters(),
		meterState:   NewMeterState(float64(sampleRate)),
	}
}

// Tracks returns the live track list; callers outside the audio thread may
// read it under the session's own mutex discipline.
func (e *Engine) Tracks() []*Track { return e.tracks }

// AddEmptyTrack creates a new track with no clips.
func (e *Engine) AddEmptyTrack(name string) *Track {
	id := TrackID(e.ids.allocate())
	t := NewTrack(id, name, float64(e.SampleRate), e.Channels)
	e.tracks = append(e.tracks, t)
	return t
}

// TrackByID finds a track by id, or nil.
func (e *Engine) TrackByID(id TrackID) *Track {
	for _, t := range e.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// RemoveTrack deletes the track at index.
func (e *Engine) RemoveTrack(index int) {
	if index < 0 || index >= len(e.tracks) {
		return
	}
	e.tracks = append(e.tracks[:index], e.tracks[index+1:]...)
}

// NextClipID allocates the next ClipID from the engine's shared allocator.
func (e *Engine) NextClipID() ClipID { return ClipID(e.ids.allocate()) }

// Play starts the transport and every track.
func (e *Engine) Play() {
	e.Transport.Playing = true
	for _, t := range e.tracks {
		t.SetState(TrackPlaying)
	}
}

// Pause stops the transport and every track, leaving position intact.
func (e *Engine) Pause() {
	e.Transport.Playing = false
	for _, t := range e.tracks {
		t.SetState(TrackPaused)
	}
}

// Seek moves the playhead and forwards to every track/clip.
func (e *Engine) Seek(pos time.Duration) {
	e.Transport.Position = pos
	for _, t := range e.tracks {
		t.Seek(pos)
	}
}

// Render fills out (interleaved, e.Channels wide) with one block of mixed
// audio. Per spec.md §4.10: never locks a mutex, allocates, or performs I/O
// beyond the implicit buffer reuse already sized by BeginBlock.
func (e *Engine) Render(out []float32) {
	for i := range out {
		out[i] = 0
	}

	if !e.Transport.Playing {
		return
	}

	channels := e.Channels
	frames := len(out) / channels
	e.mixer.BeginBlock(frames)

	currentPos := e.Transport.Position
	sr := e.SampleRate

	anySolo := false
	for _, t := range e.tracks {
		if t.Solo {
			anySolo = true
			break
		}
	}

	for _, t := range e.tracks {
		if t.State() != TrackPlaying {
			continue
		}
		audible := t.IsAudible(anySolo)
		e.mixer.RenderTrack(t, frames, channels, currentPos, sr, audible)
	}

	e.mixer.MixInto(out)

	if abs32(e.MasterGain-1.0) > 1e-3 {
		for i := range out {
			out[i] *= e.MasterGain
		}
	}

	e.meterState.ProcessBlock(out, channels, e.MasterMeters)
	e.Transport.Advance(frames, sr)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
