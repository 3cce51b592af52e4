package instrument

import (
	"math"

	"github.com/cbegin/scoredraft-go/internal/tempo"
)

const twoPi = math.Pi * 2

// Wave selects the oscillator of a Synth.
type Wave int

const (
	PureSin Wave = iota
	Square
	Triangle
	Sawtooth
	NaivePiano
	BottleBlow
)

// Waves lists every built-in wave in class registration order.
var Waves = []Wave{PureSin, Square, Triangle, Sawtooth, NaivePiano, BottleBlow}

func (w Wave) String() string {
	switch w {
	case PureSin:
		return "PureSin"
	case Square:
		return "Square"
	case Triangle:
		return "Triangle"
	case Sawtooth:
		return "Sawtooth"
	case NaivePiano:
		return "NaivePiano"
	case BottleBlow:
		return "BottleBlow"
	}
	return "Unknown"
}

func (w Wave) comment() string {
	switch w {
	case PureSin:
		return "A sine tone."
	case Square:
		return "Band-limited square wave."
	case Triangle:
		return "Triangle wave."
	case Sawtooth:
		return "Band-limited sawtooth wave."
	case NaivePiano:
		return "Decaying harmonic series with slight string stiffness."
	case BottleBlow:
		return "Breathy tone: resonant noise over a sine."
	}
	return ""
}

// gain keeps the built-ins at a similar loudness.
func (w Wave) gain() float64 {
	switch w {
	case Square:
		return 0.25
	case Sawtooth:
		return 0.3
	case NaivePiano:
		return 0.6
	}
	return 0.5
}

type piano struct {
	ratio, amplitude, decay float64
}

var pianoHarmonics = []piano{
	{1, 1, 1},
	{2, 0.7, 1.2},
	{3, 0.45, 1.5},
	{4, 0.3, 1.8},
	{5, 0.2, 2.2},
	{6, 0.12, 2.6},
	{7, 0.08, 3},
	{8, 0.05, 3.5},
	{9, 0.03, 4},
	{10, 0.02, 4.5},
}

// osc is the per-note oscillator state.
type osc struct {
	freq   float64
	phase  float64 // [0, 1)
	cycles float64 // unwrapped phase
	lfsr   uint16
	low    float64
	band   float64
}

func newOsc(freq float64) *osc {
	return &osc{freq: freq, lfsr: 0xACE1}
}

// next advances the oscillator by dt cycles and returns one sample.
// progress is the position within the note's nominal span, 1 at its end.
func (w Wave) next(o *osc, dt, progress float64) float64 {
	o.phase += dt
	o.phase -= math.Floor(o.phase)
	o.cycles += dt

	switch w {
	case Square:
		out := -1.0
		if o.phase < 0.5 {
			out = 1
		}
		out += polyBLEP(o.phase, dt)
		out -= polyBLEP(math.Mod(o.phase+0.5, 1), dt)
		return out
	case Triangle:
		return 2*math.Abs(2*o.phase-1) - 1
	case Sawtooth:
		return 2*o.phase - 1 - polyBLEP(o.phase, dt)
	case NaivePiano:
		return o.piano(dt, progress)
	case BottleBlow:
		return o.bottle()
	}
	return math.Sin(twoPi * o.phase)
}

func (o *osc) piano(dt, progress float64) float64 {
	stiffness := 0.0001 * (o.freq / 440) * (o.freq / 440)
	var sum float64
	for _, h := range pianoHarmonics {
		ratio := h.ratio * math.Sqrt(1+stiffness*h.ratio*h.ratio)
		if dt*ratio >= 0.5 {
			break
		}
		sum += h.amplitude * math.Exp(-progress*h.decay*3) * math.Sin(twoPi*o.cycles*ratio)
	}
	return sum / 2.5
}

// bottle runs LFSR noise through a resonant state-variable bandpass tuned to
// the note and mixes it over the fundamental.
func (o *osc) bottle() float64 {
	bit := (o.lfsr ^ (o.lfsr >> 1)) & 1
	o.lfsr = (o.lfsr >> 1) | (bit << 15)
	noise := -1.0
	if o.lfsr&1 == 1 {
		noise = 1
	}

	f := math.Min(1, 2*math.Sin(math.Pi*math.Min(o.freq, tempo.SampleRate/6)/tempo.SampleRate))
	const damping = 0.15
	high := noise - o.low - damping*o.band
	o.band += f * high
	o.low += f * o.band
	return 0.7*math.Sin(twoPi*o.phase) + 0.3*o.band*damping
}

// polyBLEP smooths the discontinuity of a naive wave at phase t, with dt
// the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
