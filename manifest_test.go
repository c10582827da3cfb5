package daw

import (
	"encoding/json"
	"testing"
)

func TestBuildManifestCapturesTrackSettings(t *testing.T) {
	e := NewEngine(48000, 2)
	tr := e.AddEmptyTrack("Vocals")
	tr.Color = "bg-brand-blue"
	tr.Gain = 0.75
	tr.Pan = -0.25
	tr.Muted = true

	m := buildManifest(e)
	if len(m.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(m.Tracks))
	}
	ts := m.Tracks[0]
	if ts.Name != "Vocals" || ts.Color != "bg-brand-blue" || ts.Gain != 0.75 || ts.Pan != -0.25 || !ts.Muted {
		t.Fatalf("unexpected track state: %+v", ts)
	}
	if len(ts.EQ) != 4 {
		t.Fatalf("expected 4 serialized EQ bands, got %d", len(ts.EQ))
	}
}

func TestManifestRoundTripsThroughJSON(t *testing.T) {
	e := NewEngine(48000, 2)
	e.MasterGain = 1.25
	e.AddEmptyTrack("Guitar")

	m := buildManifest(e)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ProjectManifest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.MasterGain != 1.25 {
		t.Fatalf("expected master_gain to round trip, got %v", decoded.MasterGain)
	}
	if len(decoded.Tracks) != 1 || decoded.Tracks[0].Name != "Guitar" {
		t.Fatalf("expected track Guitar to round trip, got %+v", decoded.Tracks)
	}
}

func TestManifestVersionDefaultsToOne(t *testing.T) {
	e := NewEngine(48000, 2)
	m := buildManifest(e)
	if m.Version != 1 {
		t.Fatalf("expected manifest version 1, got %d", m.Version)
	}
}
