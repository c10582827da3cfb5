package daw

import "testing"

func TestSetTrackGainUndoRestoresOldValue(t *testing.T) {
	e := NewEngine(48000, 2)
	tr := e.AddEmptyTrack("A")
	tr.Gain = 0.8

	mgr := NewCommandManager(10)
	cmd := &SetTrackGainCommand{TrackID: tr.ID, NewGain: 1.5}
	if err := mgr.Push(cmd, e); err != nil {
		t.Fatalf("push: %v", err)
	}
	if tr.Gain != 1.5 {
		t.Fatalf("expected gain 1.5 after execute, got %v", tr.Gain)
	}
	if ok, err := mgr.Undo(e); err != nil || !ok {
		t.Fatalf("undo failed: ok=%v err=%v", ok, err)
	}
	if tr.Gain != 0.8 {
		t.Fatalf("expected gain restored to 0.8, got %v", tr.Gain)
	}
}

func TestToggleSoloIsSelfInverse(t *testing.T) {
	e := NewEngine(48000, 2)
	tr := e.AddEmptyTrack("A")

	mgr := NewCommandManager(10)
	cmd := &ToggleSoloCommand{TrackID: tr.ID}
	mgr.Push(cmd, e)
	if !tr.Solo {
		t.Fatalf("expected solo on after execute")
	}
	mgr.Undo(e)
	if tr.Solo {
		t.Fatalf("expected solo off after undo")
	}
}

func TestCommandManagerRedoReappliesCommand(t *testing.T) {
	e := NewEngine(48000, 2)
	tr := e.AddEmptyTrack("A")
	mgr := NewCommandManager(10)

	mgr.Push(&SetTrackPanCommand{TrackID: tr.ID, NewPan: 0.5}, e)
	mgr.Undo(e)
	if tr.Pan != 0 {
		t.Fatalf("expected pan restored to 0, got %v", tr.Pan)
	}
	ok, err := mgr.Redo(e)
	if err != nil || !ok {
		t.Fatalf("redo failed: ok=%v err=%v", ok, err)
	}
	if tr.Pan != 0.5 {
		t.Fatalf("expected pan 0.5 after redo, got %v", tr.Pan)
	}
}

func TestCommandManagerNewCommandClearsRedoStack(t *testing.T) {
	e := NewEngine(48000, 2)
	tr := e.AddEmptyTrack("A")
	mgr := NewCommandManager(10)

	mgr.Push(&SetTrackGainCommand{TrackID: tr.ID, NewGain: 1.2}, e)
	mgr.Undo(e)
	if !mgr.CanRedo() {
		t.Fatalf("expected a pending redo after undo")
	}
	mgr.Push(&SetTrackGainCommand{TrackID: tr.ID, NewGain: 1.8}, e)
	if mgr.CanRedo() {
		t.Fatalf("expected redo stack cleared after a fresh command")
	}
}

func TestCommandManagerBoundedHistoryDropsOldest(t *testing.T) {
	e := NewEngine(48000, 2)
	tr := e.AddEmptyTrack("A")
	mgr := NewCommandManager(2)

	mgr.Push(&SetTrackGainCommand{TrackID: tr.ID, NewGain: 1.1}, e)
	mgr.Push(&SetTrackGainCommand{TrackID: tr.ID, NewGain: 1.2}, e)
	mgr.Push(&SetTrackGainCommand{TrackID: tr.ID, NewGain: 1.3}, e)

	if len(mgr.undoStack) != 2 {
		t.Fatalf("expected bounded history of 2, got %d", len(mgr.undoStack))
	}
	if oldest := mgr.undoStack[0].(*SetTrackGainCommand); oldest.NewGain != 1.2 {
		t.Fatalf("expected the 1.1 command dropped and 1.2 oldest, got %v", oldest.NewGain)
	}
}

func TestSplitThenMergeRestoresOriginalClipList(t *testing.T) {
	e := NewEngine(48000, 2)
	tr := e.AddEmptyTrack("A")
	clip, err := NewClip(e.NextClipID(), "a.wav", 0, 48000, 2)
	if err != nil {
		t.Fatalf("new clip: %v", err)
	}
	clip.Duration = 3_000_000_000
	tr.Clips = append(tr.Clips, clip)

	split := NewSplitClipCommand(tr.ID, 1_000_000_000, 48000, 2)
	if err := split.Execute(e); err != nil {
		t.Fatalf("split execute: %v", err)
	}
	if len(tr.Clips) != 2 {
		t.Fatalf("expected 2 clips after split, got %d", len(tr.Clips))
	}

	if err := split.Undo(e); err != nil {
		t.Fatalf("split undo (merge): %v", err)
	}
	if len(tr.Clips) != 1 {
		t.Fatalf("expected 1 clip after undo, got %d", len(tr.Clips))
	}
	if tr.Clips[0].Duration != 3_000_000_000 {
		t.Fatalf("expected merged clip duration restored to original, got %v", tr.Clips[0].Duration)
	}
}
