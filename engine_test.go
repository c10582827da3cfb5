package daw

import (
	"math"
	"testing"
	"time"
)

func TestEngineRenderSilentWhenStopped(t *testing.T) {
	e := NewEngine(48000, 2)
	out := make([]float32, 256)
	for i := range out {
		out[i] = 1.0
	}
	e.Render(out)
	for _, v := range out {
		if v != 0 {
			t.Fatalf("expected silence when transport is stopped, got %v", v)
		}
	}
}

func TestEngineRenderAdvancesTransport(t *testing.T) {
	e := NewEngine(48000, 2)
	e.Play()
	out := make([]float32, 48000) // 24000 frames, stereo
	before := e.Transport.Position
	e.Render(out)
	if e.Transport.Position <= before {
		t.Fatalf("expected transport position to advance while playing")
	}
}

func TestEngineTrackAndClipIDsNeverCollide(t *testing.T) {
	e := NewEngine(48000, 2)
	t1 := e.AddEmptyTrack("A")
	c1 := e.NextClipID()
	t2 := e.AddEmptyTrack("B")
	c2 := e.NextClipID()

	ids := map[uint64]bool{
		uint64(t1.ID): true,
		uint64(c1):    true,
	}
	for _, id := range []uint64{uint64(t2.ID), uint64(c2)} {
		if ids[id] {
			t.Fatalf("expected monotonic ids to never collide, got duplicate %d", id)
		}
		ids[id] = true
	}
}

func TestEngineMasterMetersTrackPostGainSignal(t *testing.T) {
	e := NewEngine(48000, 2)
	e.MasterGain = 0.5
	tr := e.AddEmptyTrack("A")
	tr.Gain = 1.0
	// Bypass EQ/compressor so the meter reading depends only on pan,
	// soft-clip and master gain.
	tr.EQ.Bands[0].SetParams(EQParams{Type: FilterHighPass, FreqHz: 75, Q: 0.707, Active: false})
	tr.Compressor.SetActive(false)

	clip, err := NewClip(e.NextClipID(), "nonexistent.wav", 0, e.SampleRate, e.Channels)
	if err != nil {
		t.Fatalf("new clip: %v", err)
	}
	clip.Duration = time.Second
	out := make([]float32, 512)
	for range out {
		clip.decoder.ring.TryPush(1.0)
	}
	tr.Clips = append(tr.Clips, clip)

	e.Play()
	e.Render(out)

	// Centre pan scales 1.0 by cos(pi/4); the mixer soft-clips with tanh and
	// master gain 0.5 is applied after that.
	want := 0.5 * math.Tanh(math.Cos(math.Pi/4))
	snap := e.MasterMeters.Read()
	if math.Abs(float64(snap.PeakL)-want) > 1e-4 || math.Abs(float64(snap.PeakR)-want) > 1e-4 {
		t.Fatalf("expected master peaks of %v after master gain, got %+v", want, snap)
	}
}

func TestEngineRemoveTrack(t *testing.T) {
	e := NewEngine(48000, 2)
	e.AddEmptyTrack("A")
	e.AddEmptyTrack("B")
	e.RemoveTrack(0)
	if len(e.Tracks()) != 1 {
		t.Fatalf("expected 1 track remaining, got %d", len(e.Tracks()))
	}
	if e.Tracks()[0].Name != "B" {
		t.Fatalf("expected track B to remain, got %s", e.Tracks()[0].Name)
	}
}
