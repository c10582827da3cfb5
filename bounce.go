// bounce.go - deterministic offline renderer: manifest -> stereo WAV,
// independent of any live engine instance

package daw

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep/v2"
)

const (
	bounceSampleRate = 44100
	bounceBlockSize  = 1024
	bounceSafetyCap  = 600 * time.Second
)

// ExportVoice is one clip's independent decode/resample pipeline during an
// offline bounce. Unlike the live engine, a voice owns no ring buffer and
// no background goroutine: the bounce loop pulls it synchronously.
//
// A voice carries its own EQChain and CompressorNode, seeded from its
// track's saved parameters, and runs them on this clip's samples before
// gain and pan. The live Track.RenderInto applies gain and pan first and
// runs one chain per track on the summed clips, so with the compressor
// active the two renders are not identical.
type ExportVoice struct {
	startTime time.Duration
	gain      float32
	pan       float32
	muted     bool

	eq         *EQChain
	compressor *CompressorNode

	source        beep.Streamer
	closer        func() error
	framesSkipped int64
	finished      bool

	pending [][2]float64
}

// NewExportVoice opens path, resampling to the bounce sample rate if
// needed, and seeds its DSP chain from the track's saved parameters.
func NewExportVoice(path string, ts TrackState) (*ExportVoice, error) {
	streamer, format, err := decodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("open export voice %s: %w", path, err)
	}

	var source beep.Streamer = streamer
	if int(format.SampleRate) != bounceSampleRate {
		source = beep.Resample(4, format.SampleRate, beep.SampleRate(bounceSampleRate), streamer)
	}

	eq := NewEQChain(bounceSampleRate, 2)
	for i, p := range ts.EQ {
		if i < len(eq.Bands) {
			eq.Bands[i].SetParams(p)
		}
	}
	comp := NewCompressorNode(bounceSampleRate)
	if ts.Compressor != nil {
		comp.SetParams(*ts.Compressor)
	}

	return &ExportVoice{
		startTime:  time.Duration(0),
		gain:       ts.Gain,
		pan:        ts.Pan,
		muted:      ts.Muted,
		eq:         eq,
		compressor: comp,
		source:     source,
		closer:     streamer.Close,
	}, nil
}

// IsFinished reports whether the voice has no more audio to contribute. A
// muted voice contributes nothing and so counts as finished.
func (v *ExportVoice) IsFinished() bool { return v.muted || (v.finished && len(v.pending) == 0) }

func (v *ExportVoice) fill(framesNeeded int) {
	for len(v.pending) < framesNeeded && !v.finished {
		buf := make([][2]float64, bounceBlockSize)
		n, ok := v.source.Stream(buf)
		if n > 0 {
			v.pending = append(v.pending, buf[:n]...)
		}
		if !ok {
			v.finished = true
		}
	}
}

// AddToMix pulls up to frames stereo samples, applies this voice's EQ,
// compressor, gain and equal-power pan, and sums into out (interleaved,
// len(out) == frames*2). Step 1 of spec.md §4.15: frames before this
// voice's start_time are silently skipped rather than mixed.
func (v *ExportVoice) AddToMix(out []float32, frames int, startTime time.Duration) {
	if v.muted {
		return
	}

	skipFrames := int(startTime.Seconds() * bounceSampleRate)
	if int(v.framesSkipped) < skipFrames {
		toSkip := skipFrames - int(v.framesSkipped)
		if toSkip > frames {
			v.framesSkipped += int64(frames)
			return
		}
		v.framesSkipped += int64(toSkip)
		out = out[toSkip*2:]
		frames -= toSkip
		if frames <= 0 {
			return
		}
	}

	v.fill(frames)
	n := frames
	if n > len(v.pending) {
		n = len(v.pending)
	}
	if n == 0 {
		return
	}

	block := make([]float32, n*2)
	for i := 0; i < n; i++ {
		block[i*2] = float32(v.pending[i][0])
		block[i*2+1] = float32(v.pending[i][1])
	}
	v.pending = v.pending[n:]

	v.eq.ProcessInPlace(block, 2)
	v.compressor.Process(block)

	pan := v.pan
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}
	angle := (pan + 1) * 0.25 * math.Pi
	panL := float32(math.Cos(float64(angle)))
	panR := float32(math.Sin(float64(angle)))

	for i := 0; i < n; i++ {
		out[i*2] += block[i*2] * v.gain * panL
		out[i*2+1] += block[i*2+1] * v.gain * panR
	}
}

func (v *ExportVoice) Close() error {
	if v.closer != nil {
		return v.closer()
	}
	return nil
}

// BounceProject renders manifest to a 44.1kHz/16-bit stereo WAV at
// outputPath, applying the non-destructive solo rule and each track's EQ and
// compressor settings per clip (see ExportVoice).
func BounceProject(manifest ProjectManifest, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create bounce output: %w", err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, bounceSampleRate, 16, 2, 1)
	defer enc.Close()

	voices := make([]*ExportVoice, 0, len(manifest.Tracks))
	starts := make([]time.Duration, 0, len(manifest.Tracks))
	anySolo := false
	for _, t := range manifest.Tracks {
		if t.Solo {
			anySolo = true
		}
	}

	for _, ts := range manifest.Tracks {
		if len(ts.Clips) == 0 {
			continue
		}
		for _, cs := range ts.Clips {
			v, err := NewExportVoice(cs.Path, ts)
			if err != nil {
				continue
			}
			if anySolo {
				v.muted = !ts.Solo
			}
			voices = append(voices, v)
			starts = append(starts, time.Duration(cs.StartTime*float64(time.Second)))
		}
	}
	defer func() {
		for _, v := range voices {
			v.Close()
		}
	}()

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: bounceSampleRate},
		Data:   make([]int, bounceBlockSize*2),
	}

	mixBuf := make([]float32, bounceBlockSize*2)
	var totalFrames int64
	safetyCapFrames := int64(bounceSafetyCap.Seconds() * bounceSampleRate)

	for {
		allFinished := true
		for _, v := range voices {
			if !v.IsFinished() {
				allFinished = false
				break
			}
		}
		if allFinished || totalFrames >= safetyCapFrames {
			break
		}

		for i := range mixBuf {
			mixBuf[i] = 0
		}
		for i, v := range voices {
			v.AddToMix(mixBuf, bounceBlockSize, starts[i])
		}
		if abs32(manifest.MasterGain-1.0) > 1e-3 {
			for i := range mixBuf {
				mixBuf[i] *= manifest.MasterGain
			}
		}

		for i, s := range mixBuf {
			clipped := float32(math.Tanh(float64(s)))
			intBuf.Data[i] = int(clipped * 32767)
		}
		if err := enc.Write(intBuf); err != nil {
			return fmt.Errorf("write bounce block: %w", err)
		}

		totalFrames += bounceBlockSize
	}

	return nil
}
