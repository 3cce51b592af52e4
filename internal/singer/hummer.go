// Package singer holds the built-in singer.
package singer

import (
	"math"
	"strings"

	"github.com/cbegin/scoredraft-go/internal/lfo"
	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

const twoPi = math.Pi * 2

// DefaultCharset is the lyric charset a new Hummer reports.
const DefaultCharset = "utf-8"

// vowels weight the first six harmonics of the voice.
var vowels = map[byte][6]float64{
	'a': {1, 0.8, 0.6, 0.3, 0.15, 0.1},
	'e': {1, 0.4, 0.5, 0.35, 0.2, 0.1},
	'i': {1, 0.2, 0.1, 0.3, 0.25, 0.2},
	'o': {1, 0.7, 0.25, 0.1, 0.05, 0.02},
	'u': {1, 0.3, 0.08, 0.04, 0.02, 0.01},
}

var hum = [6]float64{1, 0.5, 0.25, 0.12, 0.06, 0.03}

// formant picks the weights of the last vowel in lyric, or a closed hum.
func formant(lyric string) [6]float64 {
	lower := strings.ToLower(lyric)
	for i := len(lower) - 1; i >= 0; i-- {
		if w, ok := vowels[lower[i]]; ok {
			return w
		}
	}
	return hum
}

type Params struct {
	Volume  float64
	Pan     float64
	Charset string
	// RapFreq scales both ends of every rap glide.
	RapFreq float64
}

func DefaultParams() Params {
	return Params{Volume: 1, Charset: DefaultCharset, RapFreq: 1}
}

// Hummer sings every lyric as a vowel-colored harmonic tone. The notes of a
// phrase are rendered as one continuous block so the oscillator phase never
// jumps between them; a rest ends the phrase.
type Hummer struct {
	params  Params
	vibrato lfo.LFO
}

func New(p Params) *Hummer {
	h := &Hummer{params: p}
	h.vibrato.Set(0.2, 5.5, lfo.Sine)
	return h
}

func (h *Hummer) Params() Params       { return h.params }
func (h *Hummer) LyricCharset() string { return h.params.Charset }

// segment is one pitched stretch of a phrase, gliding from freq to freq2 Hz.
type segment struct {
	freq, freq2 float64
	span        float64
	weights     [6]float64
	vibrato     bool
}

func (h *Hummer) SingPiece(b *track.Buffer, piece score.SingingPiece, bpm int, refFreq float64) {
	h.SingConsecutivePieces(b, score.SingingSequence{piece}, bpm, refFreq)
}

func (h *Hummer) SingConsecutivePieces(b *track.Buffer, pieces score.SingingSequence, bpm int, refFreq float64) {
	var phrase []segment
	for _, p := range pieces {
		w := formant(p.Lyric)
		for _, n := range p.Notes {
			if n.FreqRel < 0 {
				h.voice(b, phrase)
				phrase = phrase[:0]
				score.PlayRest(b, n, bpm)
				continue
			}
			f := refFreq * n.FreqRel
			phrase = append(phrase, segment{freq: f, freq2: f, span: tempo.Samples(bpm, n.Duration), weights: w, vibrato: true})
		}
	}
	h.voice(b, phrase)
}

func (h *Hummer) RapAPiece(b *track.Buffer, piece score.RapPiece, bpm int, refFreq float64) {
	h.RapConsecutivePieces(b, score.RapSequence{piece}, bpm, refFreq)
}

func (h *Hummer) RapConsecutivePieces(b *track.Buffer, pieces score.RapSequence, bpm int, refFreq float64) {
	var phrase []segment
	k := refFreq * h.params.RapFreq
	for _, p := range pieces {
		if p.Freq1 < 0 {
			h.voice(b, phrase)
			phrase = phrase[:0]
			score.PlayRest(b, score.Note{FreqRel: p.Freq1, Duration: p.Duration}, bpm)
			continue
		}
		phrase = append(phrase, segment{freq: k * p.Freq1, freq2: k * p.Freq2, span: tempo.Samples(bpm, p.Duration), weights: formant(p.Lyric)})
	}
	h.voice(b, phrase)
}

// voice renders a phrase as one block with a short fade at both ends.
func (h *Hummer) voice(b *track.Buffer, phrase []segment) {
	const sr = float64(tempo.SampleRate)
	var total float64
	for _, s := range phrase {
		total += math.Max(0, s.span)
	}
	if total <= 0 {
		return
	}
	body := int(math.Round(total))
	fade := int(0.01 * sr)
	out := make([]float32, body+fade)

	h.vibrato.Reset()
	var (
		phase float64
		start float64
		norm  float64
		i     int
	)
	for _, s := range phrase {
		span := math.Max(0, s.span)
		end := int(math.Round(start + span))
		var wsum float64
		for _, w := range s.weights {
			wsum += w
		}
		norm = 1 / wsum
		for ; i < end; i++ {
			t := (float64(i) - start) / span
			f := s.freq + (s.freq2-s.freq)*t
			if s.vibrato {
				f *= h.vibrato.Ratio(sr)
			}
			phase += f / sr
			phase -= math.Floor(phase)
			out[i] = float32(h.sample(phase, f, s.weights) * norm)
		}
		start += span
	}
	last := phrase[len(phrase)-1]
	for ; i < len(out); i++ {
		phase += last.freq2 / sr
		phase -= math.Floor(phase)
		out[i] = float32(h.sample(phase, last.freq2, last.weights) * norm)
	}

	gain := h.params.Volume * 0.5
	for i := range out {
		env := 1.0
		if i < fade {
			env = float64(i) / float64(fade)
		}
		if i >= body {
			env = 1 - float64(i-body)/float64(fade)
		}
		out[i] *= float32(env * gain)
	}
	b.WriteBlend(track.Panned(out, total, b.Channels(), h.params.Pan))
}

func (h *Hummer) sample(phase, freq float64, weights [6]float64) float64 {
	var v float64
	for k, w := range weights {
		if freq*float64(k+1) >= tempo.SampleRate/2 {
			break
		}
		v += w * math.Sin(twoPi*phase*float64(k+1))
	}
	return v
}

// Tune accepts "volume v", "pan p", "charset name" and "rap_freq k".
func (h *Hummer) Tune(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 2 && strings.EqualFold(fields[0], "charset") {
		h.params.Charset = fields[1]
		return
	}
	name, args, ok := score.TuneArgs(cmd)
	if !ok || len(args) == 0 {
		return
	}
	switch name {
	case "volume":
		h.params.Volume = math.Max(0, args[0])
	case "pan":
		h.params.Pan = math.Max(-1, math.Min(1, args[0]))
	case "rap_freq":
		if args[0] > 0 {
			h.params.RapFreq = args[0]
		}
	}
}

func Classes() []registry.SingerClass {
	return []registry.SingerClass{{
		Name:    "Hummer",
		Comment: "Vowel-colored harmonic voice. Lyrics pick the vowel.",
		New:     func() score.Singer { return New(DefaultParams()) },
	}}
}
