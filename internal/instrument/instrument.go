// Package instrument holds the built-in oscillator instruments.
package instrument

import (
	"math"

	"github.com/cbegin/scoredraft-go/internal/lfo"
	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

type Params struct {
	Volume       float64
	Pan          float64
	AttackSec    float64
	ReleaseSec   float64
	VibratoDepth float64 // semitones
	VibratoRate  float64 // Hz
}

func DefaultParams(w Wave) Params {
	p := Params{
		Volume:     1,
		AttackSec:  0.005,
		ReleaseSec: 0.05,
	}
	switch w {
	case NaivePiano:
		p.AttackSec = 0.002
		p.ReleaseSec = 0.3
	case BottleBlow:
		p.AttackSec = 0.04
		p.ReleaseSec = 0.08
		p.VibratoDepth = 0.15
		p.VibratoRate = 5
	}
	return p
}

// Synth renders each note as one enveloped block. The release tail rings
// past the note's span and overlaps the next note.
type Synth struct {
	wave    Wave
	params  Params
	vibrato lfo.LFO
}

func New(w Wave, p Params) *Synth {
	s := &Synth{wave: w, params: p}
	s.vibrato.Set(p.VibratoDepth, p.VibratoRate, lfo.Sine)
	return s
}

func (s *Synth) Wave() Wave     { return s.wave }
func (s *Synth) Params() Params { return s.params }

// PlayNote writes one note at the buffer cursor. Rests follow
// score.PlayRest; notes with no positive span write nothing.
func (s *Synth) PlayNote(b *track.Buffer, n score.Note, bpm int, refFreq float64) {
	if score.PlayRest(b, n, bpm) {
		return
	}
	span := tempo.Samples(bpm, n.Duration)
	if span <= 0 {
		return
	}
	out := s.render(refFreq*n.FreqRel, span)
	b.WriteBlend(track.Panned(out, span, b.Channels(), s.params.Pan))
}

func (s *Synth) render(freq, span float64) []float32 {
	const sr = float64(tempo.SampleRate)
	body := int(math.Ceil(span))
	attack := int(math.Round(s.params.AttackSec * sr))
	release := int(math.Round(s.params.ReleaseSec * sr))
	out := make([]float32, body+release)

	s.vibrato.Reset()
	o := newOsc(freq)
	gain := s.params.Volume * s.wave.gain()
	for i := range out {
		dt := freq * s.vibrato.Ratio(sr) / sr
		v := s.wave.next(o, dt, float64(i)/span)
		out[i] = float32(v * envelope(i, body, attack, release) * gain)
	}
	return out
}

// envelope is a linear attack to full level, held until the end of the body,
// then a linear release to zero.
func envelope(i, body, attack, release int) float64 {
	level := 1.0
	if attack > 0 && i < attack {
		level = float64(i) / float64(attack)
	}
	if i >= body {
		if release <= 0 {
			return 0
		}
		level *= 1 - float64(i-body)/float64(release)
	}
	return math.Max(0, level)
}

// Tune accepts "volume v", "pan p", "attack sec", "release sec" and
// "vibrato depth rate". Anything else is ignored.
func (s *Synth) Tune(cmd string) {
	name, args, ok := score.TuneArgs(cmd)
	if !ok || len(args) == 0 {
		return
	}
	switch name {
	case "volume":
		s.params.Volume = math.Max(0, args[0])
	case "pan":
		s.params.Pan = math.Max(-1, math.Min(1, args[0]))
	case "attack":
		s.params.AttackSec = math.Max(0, args[0])
	case "release":
		s.params.ReleaseSec = math.Max(0, args[0])
	case "vibrato":
		if len(args) < 2 {
			return
		}
		s.params.VibratoDepth, s.params.VibratoRate = args[0], args[1]
		s.vibrato.Set(args[0], args[1], lfo.Sine)
	}
}

// Classes returns one registry class per built-in wave.
func Classes() []registry.InstrumentClass {
	classes := make([]registry.InstrumentClass, 0, len(Waves))
	for _, w := range Waves {
		classes = append(classes, registry.InstrumentClass{
			Name:    w.String(),
			Comment: w.comment(),
			New:     func() score.Instrument { return New(w, DefaultParams(w)) },
		})
	}
	return classes
}
