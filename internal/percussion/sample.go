package percussion

import (
	"math"

	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

// Sample plays a recorded mono hit at the tempo sample rate. Each beat is the
// recording truncated or zero-padded to the beat span. A positive decay
// fades the hit out exponentially.
type Sample struct {
	data   []float32
	params Params
}

func NewSample(data []float32) *Sample {
	return &Sample{data: data, params: Params{Volume: 1}}
}

func (s *Sample) Params() Params { return s.params }

func (s *Sample) PlayBeat(b *track.Buffer, duration int, bpm int) {
	span := tempo.Samples(bpm, duration)
	if span < 0 {
		return
	}
	out := make([]float32, int(math.Ceil(span)))
	n := copy(out, s.data)
	gain := float32(s.params.Volume)
	for i := range out[:n] {
		g := gain
		if s.params.DecaySec > 0 {
			g *= float32(math.Exp(-float64(i) / (s.params.DecaySec * tempo.SampleRate)))
		}
		out[i] *= g
	}
	b.WriteBlend(track.Panned(out, span, b.Channels(), s.params.Pan))
}

func (s *Sample) Tune(cmd string) {
	tune(&s.params, cmd)
}
