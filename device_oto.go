//go:build !headless

// device_oto.go - oto v3 audio output device

package daw

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoDevice drives the engine's render loop from oto's pull-based Reader
// callback, converting the Engine's interleaved float32 blocks into the
// byte stream oto expects.
type OtoDevice struct {
	ctx       *oto.Context
	player    *oto.Player
	engine    *Engine
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex
}

// NewOtoDevice opens an oto context at sampleRate for stereo float32
// playback driven by engine.
func NewOtoDevice(engine *Engine, sampleRate int) (*OtoDevice, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: engine.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	d := &OtoDevice{
		ctx:       ctx,
		engine:    engine,
		sampleBuf: make([]float32, 4096),
	}
	d.player = ctx.NewPlayer(d)
	return d, nil
}

// Read implements io.Reader for oto: each call renders one block from the
// engine and copies it into p as little-endian float32 bytes.
func (d *OtoDevice) Read(p []byte) (n int, err error) {
	numSamples := len(p) / 4
	if len(d.sampleBuf) < numSamples {
		d.sampleBuf = make([]float32, numSamples)
	}
	out := d.sampleBuf[:numSamples]

	d.engine.Render(out)

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&out[0]))[:len(p)])
	return len(p), nil
}

// Start begins playback.
func (d *OtoDevice) Start() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if !d.started {
		d.player.Play()
		d.started = true
	}
}

// Stop halts playback without releasing the underlying player.
func (d *OtoDevice) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.started {
		d.player.Pause()
		d.started = false
	}
}

// Close stops and releases the player.
func (d *OtoDevice) Close() {
	d.Stop()
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.player != nil {
		d.player.Close()
		d.player = nil
	}
}

// IsStarted reports whether playback is currently active.
func (d *OtoDevice) IsStarted() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.started
}
