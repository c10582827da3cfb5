// recorder.go - input capture to disk: a large ring buffer feeding a
// background WAV-writer goroutine, and a smaller ring feeding an optional
// live monitor tap at -6dB

package daw

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	recordRingCapacity  = 1 << 18 // power of two, ~262k float32 samples
	monitorRingCapacity = 1 << 16
	writerPopChunk      = 4096
	writerIdleTimeout   = 500 * time.Millisecond
	monitorTrimDB       = -6.0
)

// Recorder captures interleaved float32 samples pushed from the audio
// thread, writing them to a 16-bit WAV file on a background goroutine while
// optionally exposing a trimmed monitor tap for live passthrough.
type Recorder struct {
	recordRing  *RingBuffer
	monitorRing *RingBuffer

	channels   int
	sampleRate int

	monitorEnabled atomic.Bool
	recordedFrames atomic.Uint64

	doneCh     chan struct{}
	finishedCh chan struct{}
}

// NewRecorder creates a recorder writing to path and starts its background
// writer goroutine immediately.
func NewRecorder(path string, sampleRate, channels int) (*Recorder, error) {
	r := &Recorder{
		recordRing:  NewRingBuffer(recordRingCapacity),
		monitorRing: NewRingBuffer(monitorRingCapacity),
		channels:    channels,
		sampleRate:  sampleRate,
		doneCh:      make(chan struct{}),
		finishedCh:  make(chan struct{}),
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording file: %w", err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)

	go r.runWriter(f, enc)
	return r, nil
}

// Push appends a block of interleaved samples from the audio thread to
// both rings. The monitor ring silently drops samples it cannot hold
// rather than blocking the audio thread; the record ring is sized to
// absorb ordinary writer latency but the same holds for it.
func (r *Recorder) Push(samples []float32) {
	for _, s := range samples {
		r.recordRing.TryPush(s)
		if r.monitorEnabled.Load() {
			r.monitorRing.TryPush(s)
		}
	}
}

// SetMonitorEnabled toggles the live monitor tap without touching the
// writer goroutine.
func (r *Recorder) SetMonitorEnabled(on bool) { r.monitorEnabled.Store(on) }
func (r *Recorder) IsMonitorEnabled() bool    { return r.monitorEnabled.Load() }

// PullMonitor fills dst with up to len(dst) trimmed monitor samples,
// zero-filling whatever the ring could not supply. Intended to be called
// from the live output backend's render callback.
func (r *Recorder) PullMonitor(dst []float32) {
	trimGain := float32(math.Pow(10, monitorTrimDB/20))
	for i := range dst {
		v, ok := r.monitorRing.TryPop()
		if !ok {
			dst[i] = 0
			continue
		}
		dst[i] = v * trimGain
	}
}

// RecordedDuration reports how much audio has been durably written so far.
func (r *Recorder) RecordedDuration() time.Duration {
	frames := r.recordedFrames.Load()
	return time.Duration(float64(frames) / float64(r.sampleRate) * float64(time.Second))
}

// Stop signals the writer goroutine to finish and finalize the file, and
// blocks until it has done so.
func (r *Recorder) Stop() {
	close(r.doneCh)
	<-r.finishedCh
}

// runWriter drains recordRing into enc, exiting either when Stop is called
// (doneCh closed, finalizing whatever was written, even nothing at all) or,
// absent an explicit Stop, once it has written at least one sample and then
// seen the ring empty for writerIdleTimeout — mirroring the teacher's "only
// exit after real silence" rule: an empty ring at startup must not be
// mistaken for end-of-recording.
func (r *Recorder) runWriter(f *os.File, enc *wav.Encoder) {
	defer close(r.finishedCh)
	defer f.Close()
	defer enc.Close()

	tmp := make([]float32, writerPopChunk)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: r.channels, SampleRate: r.sampleRate},
	}

	wroteAny := false
	var idleSince time.Time

	for {
		popped := 0
		for popped < len(tmp) {
			v, ok := r.recordRing.TryPop()
			if !ok {
				break
			}
			tmp[popped] = v
			popped++
		}

		if popped == 0 {
			select {
			case <-r.doneCh:
				return
			default:
			}
			time.Sleep(5 * time.Millisecond)
			if wroteAny {
				if idleSince.IsZero() {
					idleSince = time.Now()
				} else if time.Since(idleSince) >= writerIdleTimeout {
					return
				}
			}
			continue
		}

		idleSince = time.Time{}
		wroteAny = true

		intBuf.Data = intBuf.Data[:0]
		for _, s := range tmp[:popped] {
			intBuf.Data = append(intBuf.Data, clampToInt16(s))
		}
		if err := enc.Write(intBuf); err != nil {
			return
		}
		r.recordedFrames.Add(uint64(popped / r.channels))
	}
}

func clampToInt16(s float32) int {
	if s != s { // NaN
		return 0
	}
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(s * 32767)
}
