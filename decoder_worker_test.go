package daw

import "testing"

func TestFadeSampleCountScalesByChannels(t *testing.T) {
	if got := fadeSampleCount(48000, 10, 2); got != 960 {
		t.Fatalf("expected 960 scalar samples for 10ms at 48kHz stereo, got %d", got)
	}
}

func TestApplyFadeRampZeroesFirstSample(t *testing.T) {
	data := []float32{1, 1, 1, 1}
	remaining := 4
	applyFadeRamp(data, &remaining)
	if data[0] != 0 {
		t.Fatalf("expected ramp to start at 0, got %v", data[0])
	}
	if remaining != 0 {
		t.Fatalf("expected fade budget exhausted, got %d remaining", remaining)
	}
}

func TestApplyFadeRampPartialAcrossCalls(t *testing.T) {
	remaining := 8
	first := []float32{1, 1, 1, 1}
	applyFadeRamp(first, &remaining)
	if remaining != 4 {
		t.Fatalf("expected 4 remaining after first call, got %d", remaining)
	}
	second := []float32{1, 1, 1, 1}
	applyFadeRamp(second, &remaining)
	if remaining != 0 {
		t.Fatalf("expected fade budget fully consumed, got %d", remaining)
	}
	if second[len(second)-1] != 1 {
		t.Fatalf("expected ramp to reach unity by the end of its budget")
	}
}

func TestApplyFadeRampNoOpWhenExhausted(t *testing.T) {
	data := []float32{5, 5, 5}
	remaining := 0
	applyFadeRamp(data, &remaining)
	for _, v := range data {
		if v != 5 {
			t.Fatalf("expected no modification once fade budget is exhausted, got %v", v)
		}
	}
}
