//go:build headless

// device_headless.go - no-op output device for headless test/CI environments

package daw

// OtoDevice is a stand-in output device that renders into a discard buffer
// without opening any real audio hardware, keeping the engine's render
// loop exercised under `-tags headless` builds that lack a sound device.
type OtoDevice struct {
	engine  *Engine
	started bool
	scratch []float32
}

// NewOtoDevice constructs a headless device bound to engine.
func NewOtoDevice(engine *Engine, sampleRate int) (*OtoDevice, error) {
	return &OtoDevice{engine: engine, scratch: make([]float32, 4096)}, nil
}

func (d *OtoDevice) Start() { d.started = true }
func (d *OtoDevice) Stop()  { d.started = false }
func (d *OtoDevice) Close() { d.started = false }

func (d *OtoDevice) IsStarted() bool { return d.started }

// Tick renders one block into the discard scratch buffer, letting tests
// drive the engine's render path without a real audio callback.
func (d *OtoDevice) Tick() {
	d.engine.Render(d.scratch)
}
