// decoder_control.go - control-plane messages sent to a decoder worker

package daw

import "time"

// DecoderCmd is a message the control thread can send to a running
// DecoderWorker. Extend with new variants as needed; the worker drains all
// pending commands once per decode iteration.
type DecoderCmd interface {
	isDecoderCmd()
}

// SeekCmd asks the worker to seek its underlying stream to pos (measured
// from the start of the source file) and resume decoding from there.
type SeekCmd struct {
	Position time.Duration
}

func (SeekCmd) isDecoderCmd() {}
