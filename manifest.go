// manifest.go - versioned JSON project manifest: the serialization
// boundary for save/load and for feeding the offline bounce

package daw

import (
	"encoding/json"
	"fmt"
	"os"
)

const manifestVersion = 1

// ClipState is one clip's serialized placement. Source sample rate,
// channel count, and duration are re-probed on load rather than stored.
type ClipState struct {
	Path      string  `json:"path"`
	StartTime float64 `json:"start_time"`
	Offset    float64 `json:"offset"`
	Duration  float64 `json:"duration"`
}

// TrackState is one track's serialized settings and clip list.
type TrackState struct {
	Name       string            `json:"name"`
	Color      string            `json:"color"`
	Gain       float32           `json:"gain"`
	Pan        float32           `json:"pan"`
	Muted      bool              `json:"muted"`
	Solo       bool              `json:"solo"`
	Clips      []ClipState       `json:"clips"`
	Compressor *CompressorParams `json:"compressor,omitempty"`
	EQ         []EQParams        `json:"eq,omitempty"`
}

// ProjectManifest is the full serialized project: versioned so future
// format changes can be migrated explicitly.
type ProjectManifest struct {
	Version    uint32       `json:"version"`
	MasterGain float32      `json:"master_gain"`
	BPM        float32      `json:"bpm"`
	Tracks     []TrackState `json:"tracks"`
}

// buildManifest captures the engine's current state into a manifest.
func buildManifest(e *Engine) ProjectManifest {
	tracks := make([]TrackState, 0, len(e.Tracks()))
	for _, t := range e.Tracks() {
		clips := make([]ClipState, 0, len(t.Clips))
		for _, c := range t.Clips {
			clips = append(clips, ClipState{
				Path:      c.Path,
				StartTime: c.StartTime.Seconds(),
				Offset:    c.Offset.Seconds(),
				Duration:  c.Duration.Seconds(),
			})
		}

		eqParams := make([]EQParams, len(t.EQ.Bands))
		for i, b := range t.EQ.Bands {
			eqParams[i] = b.Params()
		}
		compParams := t.Compressor.Params()

		tracks = append(tracks, TrackState{
			Name:       t.Name,
			Color:      t.Color,
			Gain:       t.Gain,
			Pan:        t.Pan,
			Muted:      t.Muted,
			Solo:       t.Solo,
			Clips:      clips,
			Compressor: &compParams,
			EQ:         eqParams,
		})
	}

	return ProjectManifest{
		Version:    manifestVersion,
		MasterGain: e.MasterGain,
		BPM:        float32(e.Transport.Tempo.BPM),
		Tracks:     tracks,
	}
}

// SaveToDisk writes the manifest as pretty-printed JSON.
func (m ProjectManifest) SaveToDisk(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project manifest: %w", err)
	}
	return nil
}

// LoadManifestFromDisk reads and decodes a manifest.
func LoadManifestFromDisk(path string) (ProjectManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProjectManifest{}, fmt.Errorf("read project manifest: %w", err)
	}
	var m ProjectManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return ProjectManifest{}, fmt.Errorf("unmarshal project manifest: %w", err)
	}
	return m, nil
}
