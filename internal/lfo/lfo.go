// Package lfo provides the low-frequency oscillator behind vibrato.
package lfo

import "math"

type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Saw
)

// ParseShape maps a shape name to a Shape, defaulting to Sine.
func ParseShape(name string) Shape {
	switch name {
	case "triangle", "tri":
		return Triangle
	case "square", "sq":
		return Square
	case "saw":
		return Saw
	}
	return Sine
}

// LFO produces one modulation value per sample in [-depth, +depth]. Depth is
// in whatever unit the caller modulates; vibrato uses semitones.
type LFO struct {
	depth  float64
	rateHz float64
	shape  Shape
	phase  float64 // [0, 1)
}

func (l *LFO) Set(depth, rateHz float64, shape Shape) {
	l.depth = depth
	l.rateHz = rateHz
	if shape < Sine || shape > Saw {
		shape = Sine
	}
	l.shape = shape
}

func (l *LFO) Depth() float64 { return l.depth }
func (l *LFO) Rate() float64  { return l.rateHz }

// Active reports whether Next can return anything but zero.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

// Next returns the value at the current phase and advances by one sample.
func (l *LFO) Next(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	var v float64
	switch l.shape {
	case Triangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case Square:
		v = -1
		if l.phase < 0.5 {
			v = 1
		}
	case Saw:
		v = 1 - 2*l.phase
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.rateHz / sampleRate
	l.phase -= math.Floor(l.phase)
	return v * l.depth
}

// Ratio is Next read as semitones and returned as a frequency multiplier.
func (l *LFO) Ratio(sampleRate float64) float64 {
	if !l.Active() {
		return 1
	}
	return math.Exp2(l.Next(sampleRate) / 12)
}

// Reset rewinds to phase zero.
func (l *LFO) Reset() {
	l.phase = 0
}
