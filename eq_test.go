package daw

import (
	"math"
	"testing"
)

func TestEQBandInactiveIsPassthrough(t *testing.T) {
	b := NewEQBand(48000, 2, EQParams{Type: FilterPeaking, FreqHz: 1000, Q: 0.707, GainDB: 6, Active: false})
	for i := 0; i < 16; i++ {
		in := float32(i) * 0.01
		if out := b.Process(in, 0); out != in {
			t.Fatalf("inactive band should pass samples through unchanged, got %v want %v", out, in)
		}
	}
}

func TestEQBandHighPassAttenuatesDC(t *testing.T) {
	b := NewEQBand(48000, 1, EQParams{Type: FilterHighPass, FreqHz: 75, Q: 0.707, Active: true})
	var last float32
	for i := 0; i < 2000; i++ {
		last = b.Process(1.0, 0)
	}
	if math.Abs(float64(last)) > 0.01 {
		t.Fatalf("expected a 75Hz highpass to settle near zero on a DC input, got %v", last)
	}
}

func TestEQBandTypeChangeResetsState(t *testing.T) {
	b := NewEQBand(48000, 1, EQParams{Type: FilterPeaking, FreqHz: 1000, Q: 0.707, GainDB: 12, Active: true})
	for i := 0; i < 100; i++ {
		b.Process(1.0, 0)
	}
	b.SetParams(EQParams{Type: FilterLowPass, FreqHz: 1000, Q: 0.707, Active: true})
	if b.state[0] != (biquadState{}) {
		t.Fatalf("expected filter-type change to reset biquad state")
	}
}

func TestEQBandFreqClampedToNyquist(t *testing.T) {
	b := NewEQBand(8000, 1, EQParams{Type: FilterLowPass, FreqHz: 100000, Q: 0.707, Active: true})
	freq, _ := b.clampedFreqAndQ()
	if freq >= 4000 {
		t.Fatalf("expected freq clamped below nyquist (4000), got %v", freq)
	}
}

func TestEQChainHasFourBandsWithSpecDefaults(t *testing.T) {
	c := NewEQChain(48000, 2)
	if len(c.Bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(c.Bands))
	}
	p0 := c.Bands[0].Params()
	if p0.Type != FilterHighPass || p0.FreqHz != 75 || !p0.Active {
		t.Fatalf("expected band 1 to be an active 75Hz highpass, got %+v", p0)
	}
	p1 := c.Bands[1].Params()
	if p1.Type != FilterPeaking || p1.FreqHz != 200 || p1.Active {
		t.Fatalf("expected band 2 to be an inactive 200Hz peaking filter, got %+v", p1)
	}
	p3 := c.Bands[3].Params()
	if p3.Type != FilterHighShelf || p3.FreqHz != 10000 || p3.Active {
		t.Fatalf("expected band 4 to be an inactive 10kHz high shelf, got %+v", p3)
	}
}

func TestEQChainProcessInPlaceIsPerChannel(t *testing.T) {
	c := NewEQChain(48000, 2)
	c.Bands[0].SetParams(EQParams{Type: FilterHighPass, FreqHz: 75, Q: 0.707, Active: true})
	buf := make([]float32, 8*2)
	for i := range buf {
		buf[i] = 1.0
	}
	c.ProcessInPlace(buf, 2)
	for _, v := range buf {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("expected finite output, got %v", v)
		}
	}
	// Each channel keeps its own filter state, so identical L/R input gives
	// identical L/R output.
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("expected independent per-channel state to give L == R at frame %d, got %v vs %v", i/2, buf[i], buf[i+1])
		}
	}
}
