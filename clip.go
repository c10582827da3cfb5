// clip.go - a single time-placed audio clip on a track

package daw

import "time"

// Clip references a decoded source file placed on the timeline at
// StartTime, trimmed into the source by Offset, running for Duration.
type Clip struct {
	ID        ClipID
	Path      string
	StartTime time.Duration
	Offset    time.Duration
	Duration  time.Duration

	// SourceDuration, SourceSampleRate and SourceChannels are immutable
	// source metadata captured at import (spec.md §3); unlike Duration they
	// never shrink when the clip is trimmed or split.
	SourceDuration   time.Duration
	SourceSampleRate int
	SourceChannels   int

	decoder *DecoderWorker
}

// NewClip constructs a clip and starts its background decoder worker. The
// worker begins paused; the owning Track flips it to playing when the track
// enters the Playing state, whether or not the track is audible.
func NewClip(id ClipID, path string, startTime time.Duration, outputRate, outputChannels int) (*Clip, error) {
	worker, err := NewDecoderWorker(path, outputRate, outputChannels)
	if err != nil {
		return nil, err
	}
	worker.SetPlaying(false)

	return &Clip{
		ID:               id,
		Path:             path,
		StartTime:        startTime,
		Offset:           0,
		Duration:         worker.SourceDuration(),
		SourceDuration:   worker.SourceDuration(),
		SourceSampleRate: worker.SourceSampleRate(),
		SourceChannels:   worker.SourceChannels(),
		decoder:          worker,
	}, nil
}

// End returns the clip's end time on the timeline.
func (c *Clip) End() time.Duration { return c.StartTime + c.Duration }

// SetPlaying toggles whether the decoder actively fills its ring buffer.
func (c *Clip) SetPlaying(playing bool) { c.decoder.SetPlaying(playing) }

// Seek computes the source-file position implied by a timeline seek and
// forwards it to the decoder worker. Per spec.md §4.3, the clip's own ring
// consumer is *not* drained here — the decoder-side seek handler performs
// the discard via its staging reset and fade-in ramp, avoiding a race where
// stale samples would remain queued past the seek.
//
// The guard is against SourceDuration, not Offset+Duration: after a trim or
// SplitClip, Duration shrinks to the clip's on-timeline window, but the
// underlying source file is unchanged length, so only SourceDuration is the
// correct bound (spec.md §4.2 step 5).
func (c *Clip) Seek(globalPos time.Duration) {
	var filePos time.Duration
	if globalPos >= c.StartTime {
		filePos = c.Offset + (globalPos - c.StartTime)
	} else {
		filePos = c.Offset
	}
	if filePos >= c.SourceDuration {
		return
	}
	c.decoder.Seek(filePos)
}

// MixInto pops frames*channels samples and adds them into dst, returning
// the number of frames actually mixed. Ring starvation is not an error.
func (c *Clip) MixInto(dst []float32, frames, channels int) int {
	return c.decoder.MixInto(dst, frames, channels)
}

// Consume drains frames*channels samples without mixing, for clips that are
// scheduled but currently inaudible.
func (c *Clip) Consume(frames, channels int) {
	c.decoder.Consume(frames, channels)
}

// Stop releases the clip's decoder worker goroutine.
func (c *Clip) Stop() {
	c.decoder.Stop()
}
