// tempo.go - transport playhead and tempo/time-signature conversion

package daw

import (
	"math"
	"time"
)

// TimeSignature is a musical meter, e.g. 4/4.
type TimeSignature struct {
	Num uint32
	Den uint32
}

// DefaultTimeSignature is 4/4.
func DefaultTimeSignature() TimeSignature {
	return TimeSignature{Num: 4, Den: 4}
}

// TempoMap relates timeline seconds to bars/beats under a fixed BPM and
// time signature. See spec.md §3, §4.9.
type TempoMap struct {
	BPM       float64
	Signature TimeSignature
}

// DefaultTempoMap is 120 BPM, 4/4.
func DefaultTempoMap() TempoMap {
	return TempoMap{BPM: 120, Signature: DefaultTimeSignature()}
}

// SecondsPerBeat returns seconds_per_beat = (60/bpm) * (4/den).
func (t TempoMap) SecondsPerBeat() float64 {
	quarterNoteSPB := 60.0 / t.BPM
	return quarterNoteSPB * (4.0 / float64(t.Signature.Den))
}

// SecondsPerBar returns seconds_per_bar = seconds_per_beat * num.
func (t TempoMap) SecondsPerBar() float64 {
	return t.SecondsPerBeat() * float64(t.Signature.Num)
}

// TimestampToMusical converts a timeline position to (bar, beat, fraction),
// both 1-indexed for humans; fraction is the position within the beat in
// [0, 1).
func (t TempoMap) TimestampToMusical(position time.Duration) (bar, beat uint32, fraction float64) {
	totalSeconds := position.Seconds()
	spb := t.SecondsPerBeat()
	totalBeats := totalSeconds / spb
	beatsPerBar := float64(t.Signature.Num)

	barIndex := math.Floor(totalBeats / beatsPerBar)
	beatInBar := math.Mod(totalBeats, beatsPerBar)
	if beatInBar < 0 {
		beatInBar += beatsPerBar
	}

	_, frac := math.Modf(beatInBar)
	return uint32(barIndex) + 1, uint32(math.Floor(beatInBar)) + 1, frac
}

// GridLine is one vertical timeline gridline.
type GridLine struct {
	TimeSeconds float64
	IsBarStart  bool
	BarNumber   uint32
}

// GridLines returns grid lines covering [start, end] at the given
// resolution (1 = one line per bar, 4 = quarter notes, 8 = eighths, 16 =
// sixteenths). Uses an integer step index to avoid float accumulation
// drift, per spec.md §4.9.
func (t TempoMap) GridLines(start, end time.Duration, resolution uint32) []GridLine {
	spb := t.SecondsPerBeat()
	beatsPerBar := float64(t.Signature.Num)

	var beatsPerStep float64
	if resolution == 1 {
		beatsPerStep = beatsPerBar
	} else {
		beatsPerStep = 4.0 / float64(resolution)
	}

	secondsPerStep := spb * beatsPerStep
	startSec := start.Seconds()
	endSec := end.Seconds()

	stepIndex := uint64(math.Ceil(startSec / secondsPerStep))

	stepsPerBar := uint64(math.Round(beatsPerBar / beatsPerStep))

	var lines []GridLine
	for {
		tSec := float64(stepIndex) * secondsPerStep
		if tSec > endSec+0.001 {
			break
		}

		var isBarStart bool
		var barNumber uint32
		if stepsPerBar == 0 {
			isBarStart = true
			barNumber = uint32(stepIndex) + 1
		} else {
			isBarStart = stepIndex%stepsPerBar == 0
			barNumber = uint32(stepIndex/stepsPerBar) + 1
		}

		lines = append(lines, GridLine{
			TimeSeconds: tSec,
			IsBarStart:  isBarStart,
			BarNumber:   barNumber,
		})
		stepIndex++
	}
	return lines
}

// Transport is the global playhead and play/pause state.
type Transport struct {
	Position time.Duration
	Playing  bool
	Tempo    TempoMap
}

// NewTransport constructs a stopped transport at position zero.
func NewTransport() Transport {
	return Transport{Position: 0, Playing: false, Tempo: DefaultTempoMap()}
}

// Advance moves the playhead forward by frames/sampleRate seconds. No-op
// when not playing.
func (tr *Transport) Advance(frames int, sampleRate int) {
	if !tr.Playing {
		return
	}
	secs := float64(frames) / float64(sampleRate)
	tr.Position += time.Duration(secs * float64(time.Second))
}
