package track

import "math"

// Block is rendered audio ready to be blended into a Buffer. Span is how far
// the cursor advances after the write; frames past Span (a release tail)
// overlap whatever is written next.
type Block struct {
	Channels int
	Samples  []float32
	Span     float64
}

// Mono wraps single-channel samples.
func Mono(samples []float32, span float64) Block {
	return Block{Channels: 1, Samples: samples, Span: span}
}

func (k Block) Frames() int {
	if k.Channels <= 0 {
		return 0
	}
	return len(k.Samples) / k.Channels
}

// WriteBlend adds the block at the cursor unscaled, then advances the cursor
// by the block's span. The buffer's own volume and pan apply later, when it
// is combined or written out. A block whose channel count differs from the
// buffer is folded to mono and spread across every channel.
func (b *Buffer) WriteBlend(k Block) {
	offset := int(math.Floor(b.cursor + 0.5))
	frames := k.Frames()
	b.extend(offset + frames)
	dst := b.samples[offset*b.channels:]
	if k.Channels == b.channels {
		for i := 0; i < frames*b.channels; i++ {
			dst[i] += k.Samples[i]
		}
	} else {
		inv := 1 / float32(k.Channels)
		for f := 0; f < frames; f++ {
			var mono float32
			for _, s := range k.Samples[f*k.Channels : (f+1)*k.Channels] {
				mono += s
			}
			mono *= inv
			for ch := 0; ch < b.channels; ch++ {
				dst[f*b.channels+ch] += mono
			}
		}
	}
	b.advance(k.Span)
}

// Panned returns samples as a block for a buffer with the given channel
// count. Stereo targets get a two-channel block with the pan law applied;
// anything else gets the mono block unchanged.
func Panned(samples []float32, span float64, channels int, pan float64) Block {
	if channels != 2 || pan == 0 {
		return Mono(samples, span)
	}
	pan = math.Max(-1, math.Min(1, pan))
	l := float32(math.Min(1, 1-pan))
	r := float32(math.Min(1, 1+pan))
	out := make([]float32, 2*len(samples))
	for i, s := range samples {
		out[2*i] = s * l
		out[2*i+1] = s * r
	}
	return Block{Channels: 2, Samples: out, Span: span}
}
