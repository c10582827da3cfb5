// commands_concrete.go - the concrete editing commands of spec.md §4.12

package daw

import (
	"fmt"
	"time"
)

const mergeToleranceMs = 1 * time.Millisecond

func findTrack(e *Engine, id TrackID) (*Track, error) {
	t := e.TrackByID(id)
	if t == nil {
		return nil, fmt.Errorf("track %d not found", id)
	}
	return t, nil
}

// SetTrackGainCommand writes a new gain, capturing the prior value as its
// own inverse.
type SetTrackGainCommand struct {
	TrackID TrackID
	NewGain float32
	oldGain float32
}

func (c *SetTrackGainCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	c.oldGain = t.Gain
	t.Gain = c.NewGain
	return nil
}

func (c *SetTrackGainCommand) Undo(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	t.Gain = c.oldGain
	return nil
}

func (c *SetTrackGainCommand) Name() string { return "Set Track Gain" }

// SetTrackPanCommand writes a new pan, capturing the prior value.
type SetTrackPanCommand struct {
	TrackID TrackID
	NewPan  float32
	oldPan  float32
}

func (c *SetTrackPanCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	c.oldPan = t.Pan
	t.Pan = c.NewPan
	return nil
}

func (c *SetTrackPanCommand) Undo(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	t.Pan = c.oldPan
	return nil
}

func (c *SetTrackPanCommand) Name() string { return "Set Track Pan" }

// SetTrackMuteCommand writes a new mute state; its own inverse is simply
// the negation, so no prior value needs capturing.
type SetTrackMuteCommand struct {
	TrackID  TrackID
	NewMuted bool
}

func (c *SetTrackMuteCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	t.Muted = c.NewMuted
	return nil
}

func (c *SetTrackMuteCommand) Undo(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	t.Muted = !c.NewMuted
	return nil
}

func (c *SetTrackMuteCommand) Name() string { return "Set Track Mute" }

// ToggleSoloCommand flips solo; self-inverse.
type ToggleSoloCommand struct {
	TrackID TrackID
}

func (c *ToggleSoloCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	t.Solo = !t.Solo
	return nil
}

func (c *ToggleSoloCommand) Undo(e *Engine) error { return c.Execute(e) }

func (c *ToggleSoloCommand) Name() string { return "Toggle Solo" }

// MoveClipCommand repositions a clip on the timeline.
type MoveClipCommand struct {
	TrackID   TrackID
	ClipIndex int
	NewStart  time.Duration
	oldStart  time.Duration
}

func (c *MoveClipCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	if c.ClipIndex < 0 || c.ClipIndex >= len(t.Clips) {
		return fmt.Errorf("clip index %d out of bounds", c.ClipIndex)
	}
	clip := t.Clips[c.ClipIndex]
	c.oldStart = clip.StartTime
	clip.StartTime = c.NewStart
	return nil
}

func (c *MoveClipCommand) Undo(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	if c.ClipIndex < 0 || c.ClipIndex >= len(t.Clips) {
		return fmt.Errorf("clip index %d out of bounds", c.ClipIndex)
	}
	t.Clips[c.ClipIndex].StartTime = c.oldStart
	return nil
}

func (c *MoveClipCommand) Name() string { return "Move Clip" }

// DeleteClipCommand removes a clip, capturing enough metadata to respawn an
// equivalent clip (with a fresh decoder worker) on undo.
type DeleteClipCommand struct {
	TrackID   TrackID
	ClipIndex int

	outputRate     int
	outputChannels int

	removedID               ClipID
	removedPath             string
	removedStart            time.Duration
	removedOffset           time.Duration
	removedDuration         time.Duration
	removedSourceDuration   time.Duration
	removedSourceSampleRate int
	removedSourceChannels   int
	removed                 *Clip
}

func NewDeleteClipCommand(trackID TrackID, clipIndex, outputRate, outputChannels int) *DeleteClipCommand {
	return &DeleteClipCommand{
		TrackID:        trackID,
		ClipIndex:      clipIndex,
		outputRate:     outputRate,
		outputChannels: outputChannels,
	}
}

func (c *DeleteClipCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	if c.ClipIndex < 0 || c.ClipIndex >= len(t.Clips) {
		return fmt.Errorf("clip index %d out of bounds", c.ClipIndex)
	}
	clip := t.Clips[c.ClipIndex]
	c.removedID = clip.ID
	c.removedPath = clip.Path
	c.removedStart = clip.StartTime
	c.removedOffset = clip.Offset
	c.removedDuration = clip.Duration
	c.removedSourceDuration = clip.SourceDuration
	c.removedSourceSampleRate = clip.SourceSampleRate
	c.removedSourceChannels = clip.SourceChannels
	c.removed = clip

	clip.Stop()
	t.Clips = append(t.Clips[:c.ClipIndex], t.Clips[c.ClipIndex+1:]...)
	return nil
}

func (c *DeleteClipCommand) Undo(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	clip, err := NewClip(c.removedID, c.removedPath, c.removedStart, c.outputRate, c.outputChannels)
	if err != nil {
		return fmt.Errorf("respawn deleted clip: %w", err)
	}
	clip.Offset = c.removedOffset
	clip.Duration = c.removedDuration
	clip.SourceDuration = c.removedSourceDuration
	clip.SourceSampleRate = c.removedSourceSampleRate
	clip.SourceChannels = c.removedSourceChannels

	idx := c.ClipIndex
	if idx > len(t.Clips) {
		idx = len(t.Clips)
	}
	t.Clips = append(t.Clips, nil)
	copy(t.Clips[idx+1:], t.Clips[idx:])
	t.Clips[idx] = clip
	return nil
}

func (c *DeleteClipCommand) Name() string { return "Delete Clip" }

// SplitClipCommand splits the unique clip satisfying start < t < end at
// time t. A no-op if no clip qualifies, per the split tie-break rule.
type SplitClipCommand struct {
	TrackID TrackID
	At      time.Duration

	outputRate     int
	outputChannels int

	splitIndex    int
	didSplit      bool
	rightClipID   ClipID
	leftOldDur    time.Duration
}

func NewSplitClipCommand(trackID TrackID, at time.Duration, outputRate, outputChannels int) *SplitClipCommand {
	return &SplitClipCommand{TrackID: trackID, At: at, outputRate: outputRate, outputChannels: outputChannels}
}

func (c *SplitClipCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	for i, clip := range t.Clips {
		start := clip.StartTime
		end := clip.End()
		if start < c.At && c.At < end {
			c.splitIndex = i
			c.leftOldDur = clip.Duration
			c.didSplit = true

			newOffset := clip.Offset + (c.At - start)
			newDuration := end - c.At

			right, rerr := NewClip(e.NextClipID(), clip.Path, c.At, c.outputRate, c.outputChannels)
			if rerr != nil {
				return fmt.Errorf("split clip: %w", rerr)
			}
			right.Offset = newOffset
			right.Duration = newDuration
			c.rightClipID = right.ID

			clip.Duration = c.At - start

			t.Clips = append(t.Clips, nil)
			copy(t.Clips[i+2:], t.Clips[i+1:])
			t.Clips[i+1] = right
			return nil
		}
	}
	c.didSplit = false
	return nil
}

func (c *SplitClipCommand) Undo(e *Engine) error {
	if !c.didSplit {
		return nil
	}
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	return mergeClipsAt(t, c.splitIndex)
}

func (c *SplitClipCommand) Name() string { return "Split Clip" }

// mergeClipsAt merges the clip at leftIndex with its right neighbour,
// per the adjacency preconditions of spec.md §4.12.
func mergeClipsAt(t *Track, leftIndex int) error {
	if leftIndex < 0 || leftIndex+1 >= len(t.Clips) {
		return fmt.Errorf("no right neighbour to merge at index %d", leftIndex)
	}
	left := t.Clips[leftIndex]
	right := t.Clips[leftIndex+1]

	if left.Path != right.Path {
		return fmt.Errorf("merge preconditions not met: different sources")
	}
	gapStart := right.StartTime - (left.StartTime + left.Duration)
	if gapStart < 0 {
		gapStart = -gapStart
	}
	if gapStart > mergeToleranceMs {
		return fmt.Errorf("merge preconditions not met: non-contiguous placement")
	}
	gapSource := right.Offset - (left.Offset + left.Duration)
	if gapSource < 0 {
		gapSource = -gapSource
	}
	if gapSource > mergeToleranceMs {
		return fmt.Errorf("merge preconditions not met: non-contiguous source")
	}

	left.Duration += right.Duration
	right.Stop()
	t.Clips = append(t.Clips[:leftIndex+1], t.Clips[leftIndex+2:]...)
	return nil
}

// UpdateEqCommand publishes new parameters to a single EQ band.
type UpdateEqCommand struct {
	TrackID   TrackID
	BandIndex int
	NewParams EQParams
	oldParams EQParams
}

func (c *UpdateEqCommand) Execute(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	if c.BandIndex < 0 || c.BandIndex >= len(t.EQ.Bands) {
		return fmt.Errorf("eq band index %d out of bounds", c.BandIndex)
	}
	c.oldParams = t.EQ.Bands[c.BandIndex].Params()
	t.EQ.Bands[c.BandIndex].SetParams(c.NewParams)
	return nil
}

func (c *UpdateEqCommand) Undo(e *Engine) error {
	t, err := findTrack(e, c.TrackID)
	if err != nil {
		return err
	}
	t.EQ.Bands[c.BandIndex].SetParams(c.oldParams)
	return nil
}

func (c *UpdateEqCommand) Name() string { return "Update EQ" }
