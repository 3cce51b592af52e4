// Package percussion holds the built-in drums and the WAV sample player.
package percussion

import (
	"math"
	"math/rand"

	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

const twoPi = math.Pi * 2

type Kind int

const (
	BassDrum Kind = iota
	Snare
	ClosedHat
)

var Kinds = []Kind{BassDrum, Snare, ClosedHat}

func (k Kind) String() string {
	switch k {
	case BassDrum:
		return "BassDrum"
	case Snare:
		return "Snare"
	case ClosedHat:
		return "ClosedHat"
	}
	return "Unknown"
}

func (k Kind) comment() string {
	switch k {
	case BassDrum:
		return "Sine kick with a falling pitch."
	case Snare:
		return "Noise burst over a short body tone."
	case ClosedHat:
		return "High-passed noise tick."
	}
	return ""
}

func (k Kind) defaultDecay() float64 {
	switch k {
	case BassDrum:
		return 0.25
	case Snare:
		return 0.15
	}
	return 0.05
}

// Params are the tunable settings shared by drums and samples.
type Params struct {
	Volume   float64
	Pan      float64
	DecaySec float64
}

// Drum synthesizes one hit per beat. The hit rings for its own decay time
// regardless of the beat span; the cursor advances by the span.
type Drum struct {
	kind   Kind
	params Params
	rng    *rand.Rand
}

func NewDrum(k Kind) *Drum {
	return &Drum{
		kind:   k,
		params: Params{Volume: 1, DecaySec: k.defaultDecay()},
		rng:    rand.New(rand.NewSource(int64(0xACE1 + k))),
	}
}

func (d *Drum) Kind() Kind     { return d.kind }
func (d *Drum) Params() Params { return d.params }

func (d *Drum) PlayBeat(b *track.Buffer, duration int, bpm int) {
	span := tempo.Samples(bpm, duration)
	if span < 0 {
		return
	}
	b.WriteBlend(track.Panned(d.hit(), span, b.Channels(), d.params.Pan))
}

func (d *Drum) hit() []float32 {
	const sr = float64(tempo.SampleRate)
	decay := math.Max(d.params.DecaySec, 0.001)
	out := make([]float32, int(math.Round(decay*5*sr)))

	var (
		phase float64
		lp    float64
	)
	hpAlpha := 1 / (1 + sr/(twoPi*7000))
	for i := range out {
		t := float64(i) / sr
		env := math.Exp(-t / decay)
		var v float64
		switch d.kind {
		case BassDrum:
			freq := 50 + 100*math.Exp(-t/0.03)
			phase += freq / sr
			v = math.Sin(twoPi * phase)
		case Snare:
			phase += 180 / sr
			v = 0.6*(d.rng.Float64()*2-1) + 0.5*math.Sin(twoPi*phase)*math.Exp(-t/(decay/2))
		case ClosedHat:
			x := d.rng.Float64()*2 - 1
			lp += hpAlpha * (x - lp)
			v = x - lp
		}
		out[i] = float32(v * env * d.params.Volume * 0.8)
	}
	return out
}

func (d *Drum) Tune(cmd string) {
	tune(&d.params, cmd)
}

// tune applies "volume v", "pan p" and "decay sec".
func tune(p *Params, cmd string) {
	name, args, ok := score.TuneArgs(cmd)
	if !ok || len(args) == 0 {
		return
	}
	switch name {
	case "volume":
		p.Volume = math.Max(0, args[0])
	case "pan":
		p.Pan = math.Max(-1, math.Min(1, args[0]))
	case "decay":
		p.DecaySec = math.Max(0, args[0])
	}
}

// Classes returns one registry class per built-in drum.
func Classes() []registry.PercussionClass {
	classes := make([]registry.PercussionClass, 0, len(Kinds))
	for _, k := range Kinds {
		classes = append(classes, registry.PercussionClass{
			Name:    k.String(),
			Comment: k.comment(),
			New:     func() score.Percussion { return NewDrum(k) },
		})
	}
	return classes
}
