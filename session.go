// session.go - the facade that serialises command application under the
// engine lock and owns load/save of project manifests

package daw

import (
	"fmt"
	"sync"
	"time"
)

// Session owns the command history and a handle to the engine it edits.
// All public edits go through Apply, which locks the engine for the
// duration of one command.
type Session struct {
	mu             sync.Mutex
	engine         *Engine
	commandManager *CommandManager
}

// NewSession constructs a session with the default 100-entry history cap.
func NewSession(engine *Engine) *Session {
	return &Session{
		engine:         engine,
		commandManager: NewCommandManager(defaultMaxHistory),
	}
}

// Apply locks the engine, runs cmd, and pushes it onto the undo stack.
func (s *Session) Apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commandManager.Push(cmd, s.engine)
}

// Undo reverses the most recent command.
func (s *Session) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commandManager.Undo(s.engine)
}

// Redo re-applies the most recently undone command.
func (s *Session) Redo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commandManager.Redo(s.engine)
}

// CanUndo/CanRedo report whether their namesake would do anything.
func (s *Session) CanUndo() bool { return s.commandManager.CanUndo() }
func (s *Session) CanRedo() bool { return s.commandManager.CanRedo() }

// SaveProject gathers the engine's current state into a manifest and
// writes it to path.
func (s *Session) SaveProject(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	manifest := buildManifest(s.engine)
	return manifest.SaveToDisk(path)
}

// LoadProject reads a manifest from path, clears the engine and command
// history, and rebuilds tracks/clips from it. Command history is cleared
// on load, since prior commands may reference now-absent clips.
func (s *Session) LoadProject(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	manifest, err := LoadManifestFromDisk(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	for _, t := range s.engine.Tracks() {
		for _, c := range t.Clips {
			c.Stop()
		}
	}
	s.engine.tracks = nil
	s.commandManager = NewCommandManager(defaultMaxHistory)

	s.engine.MasterGain = manifest.MasterGain
	s.engine.Transport.Tempo.BPM = float64(manifest.BPM)

	for _, ts := range manifest.Tracks {
		track := s.engine.AddEmptyTrack(ts.Name)
		track.Color = ts.Color
		track.Gain = ts.Gain
		track.Pan = ts.Pan
		track.Muted = ts.Muted
		track.Solo = ts.Solo

		if ts.Compressor != nil {
			track.Compressor.SetParams(*ts.Compressor)
		}
		for i, bandParams := range ts.EQ {
			if i < len(track.EQ.Bands) {
				track.EQ.Bands[i].SetParams(bandParams)
			}
		}

		for _, cs := range ts.Clips {
			clip, err := NewClip(s.engine.NextClipID(), cs.Path,
				time.Duration(cs.StartTime*float64(time.Second)),
				s.engine.SampleRate, s.engine.Channels)
			if err != nil {
				return fmt.Errorf("load clip %s: %w", cs.Path, err)
			}
			clip.Offset = time.Duration(cs.Offset * float64(time.Second))
			clip.Duration = time.Duration(cs.Duration * float64(time.Second))
			track.Clips = append(track.Clips, clip)
		}
	}
	return nil
}
