//go:build portaudio

// device_portaudio.go - PortAudio output device, an alternative to oto for
// platforms/builds that prefer PortAudio's device selection and latency
// control

package daw

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice drives the engine's render loop from a PortAudio output
// stream using a blocking Write call per block, mirroring how a push-based
// capture/playback loop is structured around portaudio.Stream.
type PortAudioDevice struct {
	mu      sync.Mutex
	engine  *Engine
	stream  *portaudio.Stream
	buf     []float32
	started bool
}

// NewPortAudioDevice opens the default (or explicitly selected) output
// device at sampleRate for stereo float32 playback driven by engine.
func NewPortAudioDevice(engine *Engine, sampleRate int, deviceIndex int) (*PortAudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}

	outputDev, err := resolvePortAudioDevice(devices, deviceIndex)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	const framesPerBuffer = 1024
	buf := make([]float32, framesPerBuffer*engine.Channels)

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDev,
			Channels: engine.Channels,
			Latency:  outputDev.DefaultLowOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio open stream: %w", err)
	}

	return &PortAudioDevice{
		engine: engine,
		stream: stream,
		buf:    buf,
	}, nil
}

func resolvePortAudioDevice(devices []*portaudio.DeviceInfo, idx int) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return portaudio.DefaultOutputDevice()
}

// Start begins playback, spawning a goroutine that renders one block per
// stream.Write call until Stop is called.
func (d *PortAudioDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("portaudio start stream: %w", err)
	}
	d.started = true
	go d.renderLoop()
	return nil
}

func (d *PortAudioDevice) renderLoop() {
	for {
		d.mu.Lock()
		if !d.started {
			d.mu.Unlock()
			return
		}
		d.engine.Render(d.buf)
		err := d.stream.Write()
		d.mu.Unlock()
		if err != nil {
			return
		}
	}
}

// Stop halts playback by stopping the underlying PortAudio stream; Close
// releases it.
func (d *PortAudioDevice) Stop() error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = false
	d.mu.Unlock()

	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio stop stream: %w", err)
	}
	return nil
}

// Close stops playback, closes the stream, and terminates PortAudio.
func (d *PortAudioDevice) Close() error {
	d.Stop()
	if err := d.stream.Close(); err != nil {
		return fmt.Errorf("portaudio close stream: %w", err)
	}
	return portaudio.Terminate()
}

// IsStarted reports whether playback is currently active.
func (d *PortAudioDevice) IsStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// PortAudioInputCapture owns an input stream that pushes captured samples
// into a Recorder, the hardware-facing half of the Recorder's "input
// capture" responsibility (the ring buffers and writer goroutine live in
// Recorder itself).
type PortAudioInputCapture struct {
	mu       sync.Mutex
	recorder *Recorder
	stream   *portaudio.Stream
	buf      []float32
	stopCh   chan struct{}
	running  bool
}

// NewPortAudioInputCapture opens the default (or explicitly selected)
// input device at sampleRate/channels and wires it to push into recorder.
func NewPortAudioInputCapture(recorder *Recorder, sampleRate, channels, deviceIndex int) (*PortAudioInputCapture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}

	inputDev, err := resolvePortAudioInputDevice(devices, deviceIndex)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	const framesPerBuffer = 1024
	buf := make([]float32, framesPerBuffer*channels)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   inputDev,
			Channels: channels,
			Latency:  inputDev.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio open input stream: %w", err)
	}

	return &PortAudioInputCapture{
		recorder: recorder,
		stream:   stream,
		buf:      buf,
		stopCh:   make(chan struct{}),
	}, nil
}

func resolvePortAudioInputDevice(devices []*portaudio.DeviceInfo, idx int) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return portaudio.DefaultInputDevice()
}

// Start begins capture, spawning a goroutine that reads one block per
// stream.Read call and pushes it into the recorder until Stop is called.
func (c *PortAudioInputCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("portaudio start input stream: %w", err)
	}
	c.running = true
	go c.captureLoop()
	return nil
}

func (c *PortAudioInputCapture) captureLoop() {
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}
		if err := c.stream.Read(); err != nil {
			return
		}
		c.recorder.Push(c.buf)
	}
}

// Stop halts capture and closes the underlying PortAudio stream.
func (c *PortAudioInputCapture) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.mu.Unlock()

	close(c.stopCh)
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio stop input stream: %w", err)
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("portaudio close input stream: %w", err)
	}
	return portaudio.Terminate()
}
