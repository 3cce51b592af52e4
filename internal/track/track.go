// Package track implements the multi-channel sample store that renderers
// write into and that mixdown combines.
//
// A Buffer holds interleaved float32 frames at tempo.SampleRate, a fractional
// cursor measured in frames, and volume/pan scalars. Renderers hand it Blocks
// which are blended in at the cursor.
package track

import (
	"errors"
	"fmt"
	"math"

	"github.com/cbegin/scoredraft-go/internal/tempo"
)

var (
	ErrChannelMismatch = errors.New("track: channel count mismatch")
	ErrChannels        = errors.New("track: channel count must be positive")
)

// cursorSlack absorbs float error when converting a cursor to a frame count.
const cursorSlack = 1e-6

type Buffer struct {
	channels int
	samples  []float32
	cursor   float64
	volume   float64
	pan      float64
}

func New(channels int) (*Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrChannels, channels)
	}
	return &Buffer{channels: channels, volume: 1}, nil
}

func (b *Buffer) SampleRate() int { return tempo.SampleRate }
func (b *Buffer) Channels() int   { return b.channels }

// Len returns the number of frames stored.
func (b *Buffer) Len() int { return len(b.samples) / b.channels }

func (b *Buffer) Volume() float64          { return b.volume }
func (b *Buffer) SetVolume(volume float64) { b.volume = volume }
func (b *Buffer) Pan() float64             { return b.pan }

// SetPan stores pan clamped to [-1, 1]. Only stereo buffers apply it.
func (b *Buffer) SetPan(pan float64) {
	b.pan = math.Max(-1, math.Min(1, pan))
}

func (b *Buffer) Cursor() float64 { return b.cursor }

// SetCursor moves the cursor to an absolute frame position clamped to
// [0, Len]. Only writes and Silence grow the buffer. A non-finite position
// leaves the cursor where it is.
func (b *Buffer) SetCursor(pos float64) {
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return
	}
	b.cursor = math.Max(0, math.Min(pos, float64(b.Len())))
}

// MoveCursor shifts the cursor by delta frames with the same clamping as
// SetCursor.
func (b *Buffer) MoveCursor(delta float64) {
	b.SetCursor(b.cursor + delta)
}

// advance moves the cursor forward by span frames, growing the buffer with
// silence when it passes the end.
func (b *Buffer) advance(span float64) {
	if span < 0 {
		b.MoveCursor(span)
		return
	}
	b.cursor += span
	b.extend(framesAt(b.cursor))
}

// Silence advances the cursor by duration tempo units without writing,
// extending the buffer with zeros past the end.
func (b *Buffer) Silence(duration int, bpm int) {
	b.advance(tempo.Samples(bpm, duration))
}

// Backspace rewinds the cursor by duration tempo units, stopping at 0.
// Stored frames are kept so later writes overdub them.
func (b *Buffer) Backspace(duration int, bpm int) {
	b.MoveCursor(-tempo.Samples(bpm, duration))
}

// Sample returns one stored sample, or 0 outside the stored range.
func (b *Buffer) Sample(frame, channel int) float32 {
	i := frame*b.channels + channel
	if frame < 0 || channel < 0 || channel >= b.channels || i >= len(b.samples) {
		return 0
	}
	return b.samples[i]
}

// Samples exposes the interleaved storage. Callers must not retain it across
// writes.
func (b *Buffer) Samples() []float32 { return b.samples }

// Gains returns the per-channel factor derived from volume and pan.
func (b *Buffer) Gains() []float32 {
	g := make([]float32, b.channels)
	for ch := range g {
		g[ch] = float32(b.volume)
	}
	if b.channels == 2 {
		g[0] = float32(b.volume * math.Min(1, 1-b.pan))
		g[1] = float32(b.volume * math.Min(1, 1+b.pan))
	}
	return g
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	var peak float32
	for _, s := range b.samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Scale multiplies every stored sample by k.
func (b *Buffer) Scale(k float32) {
	for i := range b.samples {
		b.samples[i] *= k
	}
}

// EachFrame calls fn with every stored frame in order; fn may modify it.
func (b *Buffer) EachFrame(fn func(frame []float32)) {
	for i := 0; i+b.channels <= len(b.samples); i += b.channels {
		fn(b.samples[i : i+b.channels])
	}
}

func (b *Buffer) extend(frames int) {
	need := frames * b.channels
	if need <= len(b.samples) {
		return
	}
	if need <= cap(b.samples) {
		tail := b.samples[len(b.samples):need]
		for i := range tail {
			tail[i] = 0
		}
		b.samples = b.samples[:need]
		return
	}
	grown := make([]float32, need, need+need/2)
	copy(grown, b.samples)
	b.samples = grown
}

func framesAt(pos float64) int {
	return int(math.Ceil(pos - cursorSlack))
}
