package fm

import "math"

// Waveform selects the carrier oscillator. Modulators are always sine.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Triangle
	Square
	Pulse25
	Pulse12
	HalfSine
	Noise
)

func (f *FM) wave(w Waveform, phase float64) float64 {
	switch w {
	case Saw:
		return 1 - 2*math.Mod(phase, twoPi)/twoPi
	case Triangle:
		return 2*math.Abs(2*math.Mod(phase, twoPi)/twoPi-1) - 1
	case Square:
		return pulse(phase, math.Pi)
	case Pulse25:
		return pulse(phase, math.Pi/2)
	case Pulse12:
		return pulse(phase, math.Pi/4)
	case HalfSine:
		return math.Max(0, math.Sin(phase))
	case Noise:
		f.noise = (f.noise >> 1) ^ (-(f.noise & 1) & 0xB400)
		return float64(f.noise)/0x7FFF*2 - 1
	}
	return math.Sin(phase)
}

func pulse(phase, width float64) float64 {
	if math.Mod(phase, twoPi) < width {
		return 1
	}
	return -1
}

type preset struct {
	name    string
	comment string
	params  func() Params
}

var presets = []preset{
	{"FMPiano", "Four-operator cascade with a fast decay.", pianoParams},
	{"FMBell", "Two operators at an inharmonic ratio, long release.", bellParams},
	{"FMBass", "Two-operator bass with feedback.", bassParams},
	{"FMOrgan", "Four parallel carriers on harmonic ratios.", organParams},
}

func op(mul, level, a, d, s, r float64) Operator {
	return Operator{Mul: mul, Level: level, AttackSec: a, DecaySec: d, Sustain: s, ReleaseSec: r}
}

func pianoParams() Params {
	return Params{
		Operators: 4,
		ModIndex:  1.6,
		Volume:    1,
		Ops: [maxOps]Operator{
			op(1, 1, 0.002, 0.8, 0.2, 0.25),
			op(1, 0.6, 0.002, 0.4, 0.1, 0.2),
			op(2, 0.3, 0.002, 0.3, 0, 0.1),
			op(4, 0.2, 0.002, 0.2, 0, 0.1),
		},
	}
}

func bellParams() Params {
	return Params{
		Operators: 2,
		ModIndex:  2.4,
		Volume:    1,
		Ops: [maxOps]Operator{
			op(1, 1, 0.001, 1.5, 0, 1.2),
			op(3.5, 0.8, 0.001, 1.0, 0, 1.0),
		},
	}
}

func bassParams() Params {
	return Params{
		Operators: 2,
		Feedback:  0.3,
		ModIndex:  1.2,
		Volume:    1,
		Ops: [maxOps]Operator{
			op(1, 1, 0.004, 0.15, 0.7, 0.06),
			op(1, 0.7, 0.002, 0.1, 0.3, 0.05),
		},
	}
}

func organParams() Params {
	return Params{
		Operators:    4,
		Algorithm:    5,
		Volume:       1,
		VibratoDepth: 0.1,
		VibratoRate:  6,
		Ops: [maxOps]Operator{
			op(1, 1, 0.01, 0.05, 0.9, 0.05),
			op(2, 0.5, 0.01, 0.05, 0.9, 0.05),
			op(3, 0.3, 0.01, 0.05, 0.9, 0.05),
			op(4, 0.2, 0.01, 0.05, 0.9, 0.05),
		},
	}
}

// opmLen is alg and fb followed by AR, D1R, D2R, RR, D1L, TL, KS, MUL, DT1,
// DT2 and AMS for each of the four operators.
const opmLen = 2 + maxOps*11

// ParseOPM converts OPM register values into Params. D2R, KS and the detune
// and AMS registers have no counterpart and are ignored.
func ParseOPM(data []int) (Params, bool) {
	if len(data) < opmLen {
		return Params{}, false
	}
	p := Params{
		Operators: maxOps,
		Algorithm: opmAlgorithm(clampInt(data[0], 0, 7)),
		Feedback:  float64(clampInt(data[1], 0, 7)) / 7,
		ModIndex:  1.6,
		Volume:    1,
	}
	for i := 0; i < maxOps; i++ {
		r := data[2+i*11:]
		ar, d1r, rr, d1l, tl, mul := r[0], r[1], r[3], r[4], r[5], r[7]
		o := &p.Ops[i]
		o.AttackSec = 0.001 + float64(31-clampInt(ar, 0, 31))/31*0.3
		o.DecaySec = 0.01 + float64(31-clampInt(d1r, 0, 31))/31*0.2
		o.ReleaseSec = 0.01 + float64(15-clampInt(rr, 0, 15))/15*0.3
		o.Sustain = 1 - float64(clampInt(d1l, 0, 15))/15
		o.Level = float64(127-clampInt(tl, 0, 127)) / 127
		o.Mul = float64(clampInt(mul, 0, 15))
		if o.Mul == 0 {
			o.Mul = 0.5
		}
	}
	return p, true
}

// opmAlgorithm maps the eight OPM connections onto the six four-operator
// algorithms of sample.
func opmAlgorithm(alg int) int {
	switch alg {
	case 0, 1:
		return alg
	case 2, 3:
		return 2
	case 4:
		return 3
	case 5, 6:
		return 4
	}
	return 5
}
