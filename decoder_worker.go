// decoder_worker.go - off-audio-thread clip decoder: demux, decode, resample
// and push interleaved samples into a clip's ring buffer

package daw

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const postSeekFadeMs = 10

// DecoderWorker owns one background goroutine that decodes a single clip's
// source file and streams it, resampled to the engine's output rate, into a
// ring buffer the engine's audio thread consumes from. It never touches the
// audio thread directly.
type DecoderWorker struct {
	ring       *RingBuffer
	cmdCh      chan DecoderCmd
	quitCh     chan struct{}
	playing    atomic.Bool
	outputRate int
	channels   int

	sourceDuration   time.Duration
	sourceSampleRate int
	sourceChannels   int
}

// decodeFile opens path and returns a beep.StreamSeekCloser plus its format,
// selecting a decoder by file extension — the Go analogue of symphonia's
// format probing, minus the generality this engine doesn't need.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	default:
		return wav.Decode(f)
	}
}

// probeSource opens and immediately closes the file to determine its
// immutable source metadata (spec.md §3: sample rate, channels, duration)
// without holding it open for the worker's lifetime.
func probeSource(path string) (duration time.Duration, sampleRate, channels int) {
	streamer, format, err := decodeFile(path)
	if err != nil {
		return 0, 0, 0
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()), int(format.SampleRate), format.NumChannels
}

// NewDecoderWorker constructs and starts a worker for path, decoding and
// resampling into outputRate/outputChannels. The engine's output is always
// 2-channel interleaved; beep normalizes mono sources to stereo itself.
func NewDecoderWorker(path string, outputRate, outputChannels int) (*DecoderWorker, error) {
	duration, sampleRate, channels := probeSource(path)
	d := &DecoderWorker{
		ring:             NewRingBuffer(ringBufferCapacity),
		cmdCh:            make(chan DecoderCmd, 8),
		quitCh:           make(chan struct{}),
		outputRate:       outputRate,
		channels:         outputChannels,
		sourceDuration:   duration,
		sourceSampleRate: sampleRate,
		sourceChannels:   channels,
	}
	d.playing.Store(false)
	go d.run(path)
	return d, nil
}

// SetPlaying toggles decode activity. When false, the worker idles rather
// than continuing to fill the ring buffer.
func (d *DecoderWorker) SetPlaying(playing bool) { d.playing.Store(playing) }

// Seek requests the decoder resume from pos (relative to the start of the
// source file). Non-blocking: the command is queued and applied by the
// worker goroutine on its next iteration.
func (d *DecoderWorker) Seek(pos time.Duration) {
	select {
	case d.cmdCh <- SeekCmd{Position: pos}:
	default:
		// Command queue full: drop and let the next seek supersede it.
	}
}

// Stop terminates the worker goroutine.
func (d *DecoderWorker) Stop() {
	close(d.quitCh)
}

// SourceDuration reports the probed length of the underlying file.
func (d *DecoderWorker) SourceDuration() time.Duration { return d.sourceDuration }

// SourceSampleRate reports the source file's native sample rate, probed once
// at import.
func (d *DecoderWorker) SourceSampleRate() int { return d.sourceSampleRate }

// SourceChannels reports the source file's native channel count, probed once
// at import.
func (d *DecoderWorker) SourceChannels() int { return d.sourceChannels }

// MixInto pops up to frames*channels samples and adds them into dst,
// returning the number of frames actually mixed. Starvation (the ring
// running dry) is not an error — it simply yields fewer frames.
func (d *DecoderWorker) MixInto(dst []float32, frames, channels int) int {
	needed := frames * channels
	if needed > len(dst) {
		needed = len(dst)
	}
	mixed := 0
	for i := 0; i < needed; i++ {
		v, ok := d.ring.TryPop()
		if !ok {
			break
		}
		dst[i] += v
		mixed++
	}
	return mixed / channels
}

// Consume drains frames*channels samples without mixing, keeping the ring
// in sync with the timeline while the clip is inaudible.
func (d *DecoderWorker) Consume(frames, channels int) {
	d.ring.Drain(frames * channels)
}

func (d *DecoderWorker) run(path string) {
	streamer, format, err := decodeFile(path)
	if err != nil {
		log.Printf("decoder worker: open %s: %v", path, err)
		return
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if int(format.SampleRate) != d.outputRate {
		source = beep.Resample(4, format.SampleRate, beep.SampleRate(d.outputRate), streamer)
	}

	postSeekFade := 0
	buf := make([][2]float64, 1024)
	interleaved := make([]float32, len(buf)*2)

	for {
		select {
		case <-d.quitCh:
			return
		default:
		}

	drainCmds:
		for {
			select {
			case cmd := <-d.cmdCh:
				switch c := cmd.(type) {
				case SeekCmd:
					if err := streamer.Seek(format.SampleRate.N(c.Position)); err != nil {
						log.Printf("decoder worker: seek %s to %v: %v", path, c.Position, err)
					}
					postSeekFade = fadeSampleCount(d.outputRate, postSeekFadeMs, d.channels)
				}
			default:
				break drainCmds
			}
		}

		if !d.playing.Load() {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		n, ok := source.Stream(buf)
		if n == 0 {
			if !ok {
				time.Sleep(10 * time.Millisecond)
			}
			continue
		}

		for i := 0; i < n; i++ {
			interleaved[i*2] = float32(buf[i][0])
			interleaved[i*2+1] = float32(buf[i][1])
		}
		chunk := interleaved[:n*2]
		applyFadeRamp(chunk, &postSeekFade)

		for _, s := range chunk {
			for !d.ring.TryPush(s) {
				select {
				case <-d.quitCh:
					return
				default:
					time.Sleep(200 * time.Microsecond)
				}
			}
		}
	}
}
