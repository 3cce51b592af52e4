// Package fx applies effect chains to whole track buffers.
//
// Effects work on stereo frames. Stereo buffers go through one chain; other
// buffers are processed in channel pairs, each pair with its own chain, and
// an unpaired last channel is fed to both inputs of its chain.
package fx

import (
	"github.com/cbegin/scoredraft-go/internal/track"
)

// Effect processes one stereo frame at a time.
type Effect interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain runs effects in order.
type Chain []Effect

func (c Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c Chain) Reset() {
	for _, e := range c {
		e.Reset()
	}
}

// Apply runs a fresh chain built from spec over every stored frame of b, in
// place. The cursor and length of b are unchanged.
func Apply(b *track.Buffer, spec Spec) {
	if len(spec) == 0 || b.Len() == 0 {
		return
	}
	n := b.Channels()
	chains := make([]Chain, (n+1)/2)
	for i := range chains {
		chains[i] = spec.Build(b.SampleRate())
	}
	b.EachFrame(func(frame []float32) {
		for i, c := range chains {
			ch := 2 * i
			if ch+1 < n {
				frame[ch], frame[ch+1] = c.Process(frame[ch], frame[ch+1])
				continue
			}
			l, r := c.Process(frame[ch], frame[ch])
			frame[ch] = (l + r) / 2
		}
	})
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mix crossfades dry and wet by amount wet.
func mix(dry, wet, amount float32) float32 {
	return dry*(1-amount) + wet*amount
}
