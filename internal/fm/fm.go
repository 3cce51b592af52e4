// Package fm implements a one-to-four operator FM instrument. Operator 0 is
// always a carrier; the algorithm decides how the others feed it.
package fm

import (
	"math"

	"github.com/cbegin/scoredraft-go/internal/lfo"
	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

const (
	twoPi      = math.Pi * 2
	outputGain = 0.45
	maxOps     = 4
)

type Operator struct {
	Mul        float64 // frequency ratio to the note
	Level      float64 // 0-1
	AttackSec  float64
	DecaySec   float64
	Sustain    float64 // 0-1
	ReleaseSec float64
}

type Params struct {
	Operators    int
	Algorithm    int
	Feedback     float64 // 0-1, on the top modulator
	ModIndex     float64
	Waveform     Waveform // carrier waveform
	Ops          [maxOps]Operator
	Volume       float64
	Pan          float64
	VibratoDepth float64 // semitones
	VibratoRate  float64 // Hz
}

// FM renders each note as one enveloped block. Operators are keyed off at
// the end of the note's span and their release rings into the next note.
type FM struct {
	name    string
	params  Params
	vibrato lfo.LFO
	noise   uint32
}

func New(name string, p Params) *FM {
	f := &FM{name: name, params: p, noise: 0x7FFF}
	f.params.Operators = clampInt(p.Operators, 1, maxOps)
	f.vibrato.Set(p.VibratoDepth, p.VibratoRate, lfo.Sine)
	return f
}

func (f *FM) Name() string   { return f.name }
func (f *FM) Params() Params { return f.params }

func (f *FM) PlayNote(b *track.Buffer, n score.Note, bpm int, refFreq float64) {
	if score.PlayRest(b, n, bpm) {
		return
	}
	span := tempo.Samples(bpm, n.Duration)
	if span <= 0 {
		return
	}
	out := f.render(refFreq*n.FreqRel, span)
	b.WriteBlend(track.Panned(out, span, b.Channels(), f.params.Pan))
}

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

type operator struct {
	Operator
	phase   float64
	env     float64
	state   envState
	relStep float64
	prevOut float64
}

type voice struct {
	ops [maxOps]operator
	n   int
}

func (f *FM) render(freq, span float64) []float32 {
	const sr = float64(tempo.SampleRate)
	p := &f.params
	v := voice{n: p.Operators}
	tail := 0.0
	for i := 0; i < v.n; i++ {
		v.ops[i] = operator{Operator: p.Ops[i]}
		tail = math.Max(tail, p.Ops[i].ReleaseSec)
	}
	body := int(math.Ceil(span))
	out := make([]float32, body+int(math.Ceil(tail*sr)))

	f.vibrato.Reset()
	gain := p.Volume * outputGain
	for i := range out {
		if i == body {
			v.keyOff(sr)
		}
		if !v.advance(sr) {
			return out[:i]
		}
		out[i] = float32(clamp(f.sample(&v)*gain, -1, 1))

		step := twoPi * freq * f.vibrato.Ratio(sr) / sr
		for oi := 0; oi < v.n; oi++ {
			op := &v.ops[oi]
			op.phase += step * op.Mul
			if op.phase > twoPi {
				op.phase -= twoPi
			}
		}
	}
	return out
}

func (v *voice) keyOff(sr float64) {
	for i := 0; i < v.n; i++ {
		op := &v.ops[i]
		if op.state == envOff {
			continue
		}
		op.state = envRelease
		op.relStep = 1
		if op.ReleaseSec > 0 {
			op.relStep = op.env / (op.ReleaseSec * sr)
		}
	}
}

// advance steps every envelope and reports whether any operator still sounds.
func (v *voice) advance(sr float64) bool {
	live := false
	for i := 0; i < v.n; i++ {
		advanceOpEnv(&v.ops[i], sr)
		if v.ops[i].state != envOff {
			live = true
		}
	}
	return live
}

func advanceOpEnv(op *operator, sr float64) {
	switch op.state {
	case envAttack:
		step := 1.0
		if op.AttackSec > 0 {
			step = 1 / (op.AttackSec * sr)
		}
		op.env += step
		if op.env >= 1 {
			op.env = 1
			op.state = envDecay
		}
	case envDecay:
		step := 1.0
		if op.DecaySec > 0 {
			step = (1 - op.Sustain) / (op.DecaySec * sr)
		}
		op.env -= step
		if op.env <= op.Sustain {
			op.env = op.Sustain
			op.state = envSustain
		}
	case envRelease:
		op.env -= op.relStep
		if op.env <= 0.0001 {
			op.env = 0
			op.state = envOff
		}
	case envOff:
		op.env = 0
	}
}

// sample computes one output value of v for the current algorithm. With n
// operators the valid algorithms are 0-1 (n=2), 0-3 (n=3) and 0-5 (n=4);
// anything else falls back to 0, the full cascade.
func (f *FM) sample(v *voice) float64 {
	ops := &v.ops
	idx := f.params.ModIndex
	w := f.params.Waveform
	var lvl [maxOps]float64
	for i := 0; i < v.n; i++ {
		lvl[i] = ops[i].env * ops[i].Level
	}
	carrier := func(i int, mod float64) float64 {
		return f.wave(w, ops[i].phase+mod) * lvl[i]
	}
	mod := func(i int, in float64) float64 {
		return math.Sin(ops[i].phase+in) * lvl[i] * idx
	}
	// feedback runs the top operator through its own previous output.
	feedback := func(i int) float64 {
		s := math.Sin(ops[i].phase + ops[i].prevOut*f.params.Feedback*math.Pi)
		ops[i].prevOut = s * lvl[i]
		return s * lvl[i] * idx
	}

	switch v.n {
	case 1:
		fb := ops[0].prevOut * f.params.Feedback * math.Pi
		s := carrier(0, fb)
		ops[0].prevOut = s
		return s
	case 2:
		if f.params.Algorithm == 1 {
			return (carrier(0, 0) + carrier(1, 0)) / math.Sqrt2
		}
		return carrier(0, feedback(1))
	case 3:
		switch f.params.Algorithm {
		case 1:
			return carrier(0, mod(1, feedback(2)))
		case 2:
			return carrier(0, mod(1, 0)+mod(2, 0))
		case 3:
			return (carrier(0, 0) + carrier(1, 0) + carrier(2, 0)) / math.Sqrt(3)
		}
		return carrier(0, mod(1, mod(2, 0)))
	}
	switch f.params.Algorithm {
	case 1:
		return carrier(0, mod(1, mod(2, mod(3, 0))))
	case 2:
		return carrier(0, mod(1, mod(2, 0)+mod(3, 0)))
	case 3:
		return (carrier(0, mod(3, 0)) + carrier(1, mod(2, 0))) / math.Sqrt2
	case 4:
		s1 := math.Sin(ops[1].phase+mod(2, mod(3, 0))) * lvl[1]
		return (carrier(0, 0) + s1) / math.Sqrt2
	case 5:
		s := 0.0
		for i := 0; i < maxOps; i++ {
			s += carrier(i, 0)
		}
		return s / 2
	}
	return carrier(0, mod(1, mod(2, feedback(3))))
}

// Tune accepts:
//
//	volume v, pan p, vibrato depth rate
//	alg n, ops n, fb x, index x, wave n
//	mul op x, level op x
//	adsr a d s r (every operator)
//	opm alg fb followed by 4x11 OPM operator registers
//
// Anything else is ignored.
func (f *FM) Tune(cmd string) {
	name, args, ok := score.TuneArgs(cmd)
	if !ok || len(args) == 0 {
		return
	}
	p := &f.params
	switch name {
	case "volume":
		p.Volume = math.Max(0, args[0])
	case "pan":
		p.Pan = clamp(args[0], -1, 1)
	case "vibrato":
		if len(args) < 2 {
			return
		}
		p.VibratoDepth, p.VibratoRate = args[0], args[1]
		f.vibrato.Set(args[0], args[1], lfo.Sine)
	case "alg":
		p.Algorithm = clampInt(int(args[0]), 0, 5)
	case "ops":
		p.Operators = clampInt(int(args[0]), 1, maxOps)
	case "fb":
		p.Feedback = clamp(args[0], 0, 1)
	case "index":
		p.ModIndex = math.Max(0, args[0])
	case "wave":
		p.Waveform = Waveform(clampInt(int(args[0]), 0, int(Noise)))
	case "mul", "level":
		if len(args) < 2 || args[0] < 0 || int(args[0]) >= maxOps {
			return
		}
		o := &p.Ops[int(args[0])]
		if name == "mul" {
			o.Mul = math.Max(0, args[1])
		} else {
			o.Level = clamp(args[1], 0, 1)
		}
	case "adsr":
		if len(args) < 4 {
			return
		}
		for i := range p.Ops {
			o := &p.Ops[i]
			o.AttackSec = math.Max(0, args[0])
			o.DecaySec = math.Max(0, args[1])
			o.Sustain = clamp(args[2], 0, 1)
			o.ReleaseSec = math.Max(0, args[3])
		}
	case "opm":
		data := make([]int, len(args))
		for i, a := range args {
			data[i] = int(a)
		}
		if patch, ok := ParseOPM(data); ok {
			patch.Volume, patch.Pan = p.Volume, p.Pan
			patch.VibratoDepth, patch.VibratoRate = p.VibratoDepth, p.VibratoRate
			*p = patch
		}
	}
}

// Classes returns one registry class per preset.
func Classes() []registry.InstrumentClass {
	classes := make([]registry.InstrumentClass, 0, len(presets))
	for _, pr := range presets {
		classes = append(classes, registry.InstrumentClass{
			Name:    pr.name,
			Comment: pr.comment,
			New:     func() score.Instrument { return New(pr.name, pr.params()) },
		})
	}
	return classes
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
