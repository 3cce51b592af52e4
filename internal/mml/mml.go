// Package mml reads Music Macro Language phrases into score sequences.
//
// The dialect is the common core: notes c-b with +, # or - accidentals,
// n<midi>, rests r, lengths with dots and ^ ties, l, o, < and >, kt
// transpose, q gate (0-8), v volume (0-16), p pan (-64..64, or coarse 0-8),
// t tempo, & to tie a note into the next one of the same pitch, loops
// [body|tail]n and // or /* */ comments. Pitches are relative to o5c
// (MIDI 60), so a reference frequency of 264 Hz puts o5c at middle C.
package mml

import (
	"fmt"
	"math"
	"strconv"
	"unicode"

	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/tempo"
)

const (
	// Resolution is the length of a whole note in tempo units.
	Resolution = 4 * tempo.UnitsPerBeat
	RefNote    = 60

	minOctave = 0
	maxOctave = 9
	quantMax  = 8
)

var noteOffsets = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

type parseState struct {
	bpm        int
	tempo      int
	octave     int
	defaultLen int
	transpose  int
	gate       int
	tie        bool
	// pos is the exact position in song tempo units; emitted is how much of
	// it has been handed out as whole units.
	pos     float64
	emitted int
}

// Parse converts src into a sequence timed for bpm. Tempo commands inside
// the phrase rescale the durations that follow them, so the phrase plays at
// its own tempo inside a song running at bpm.
func Parse(src string, bpm int) (score.Sequence, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("mml: tempo must be positive, got %d", bpm)
	}
	expanded, err := expandLoops(stripComments(src))
	if err != nil {
		return nil, fmt.Errorf("mml: %w", err)
	}
	st := &parseState{
		bpm:        bpm,
		tempo:      bpm,
		octave:     5,
		defaultLen: Resolution / 4,
		gate:       quantMax,
	}
	var seq score.Sequence
	for i := 0; i < len(expanded); {
		ch := lower(expanded[i])
		if isSpace(ch) {
			i++
			continue
		}
		var (
			next int
			e    error
		)
		switch {
		case ch == 'n' && i+1 < len(expanded) && unicode.IsDigit(rune(expanded[i+1])):
			var nn int
			nn, next, e = parseNumberDefault(expanded, i+1, RefNote)
			if e == nil {
				seq, next, e = st.note(seq, expanded, next, nn)
			}
		case isNote(ch):
			var nn int
			nn, next = parsePitch(expanded, i, st.octave)
			seq, next, e = st.note(seq, expanded, next, nn)
		case ch == 'r':
			var dur int
			dur, next, e = parseLengthWithTie(expanded, i+1, st.defaultLen)
			if e == nil {
				seq = append(seq, score.N(-1, st.advance(dur)))
				st.tie = false
			}
		case ch == 'l':
			st.defaultLen, next, e = parseLengthToken(expanded, i+1, st.defaultLen)
		case ch == 'o':
			var val int
			val, next, e = parseNumberDefault(expanded, i+1, st.octave)
			if e == nil && (val < minOctave || val > maxOctave) {
				e = fmt.Errorf("octave %d out of range", val)
			}
			st.octave = val
		case ch == '<' || ch == '>':
			var val int
			val, next, e = parseNumberDefault(expanded, i+1, 1)
			if ch == '<' {
				val = -val
			}
			st.octave = clampInt(st.octave+val, minOctave, maxOctave)
		case ch == 'k' && i+1 < len(expanded) && lower(expanded[i+1]) == 't':
			st.transpose, next, e = parseSignedNumberDefault(expanded, i+2, 0)
		case ch == 'q':
			var val int
			val, next, e = parseNumberDefault(expanded, i+1, quantMax)
			st.gate = clampInt(val, 0, quantMax)
		case ch == 't':
			var val int
			val, next, e = parseNumberDefault(expanded, i+1, st.bpm)
			if e == nil && val <= 0 {
				e = fmt.Errorf("tempo %d", val)
			}
			st.tempo = val
		case ch == 'v':
			var val int
			val, next, e = parseNumberDefault(expanded, i+1, 16)
			seq = append(seq, score.Command("volume "+formatFloat(float64(clampInt(val, 0, 16))/16)))
		case ch == 'p':
			var val int
			val, next, e = parseSignedNumberDefault(expanded, i+1, 4)
			seq = append(seq, score.Command("pan "+formatFloat(float64(normalizePanValue(val))/64)))
		case ch == '&':
			st.tie = true
			next = i + 1
		default:
			return nil, fmt.Errorf("mml: unexpected %q at %d", expanded[i], i)
		}
		if e != nil {
			return nil, fmt.Errorf("mml: at %d: %w", i, e)
		}
		i = next
	}
	return seq, nil
}

// note reads the length after a pitch and appends the note, plus a rest
// for the part the gate cuts off. A pending tie to the same pitch extends
// the previous note instead.
func (st *parseState) note(seq score.Sequence, s string, at, nn int) (score.Sequence, int, error) {
	dur, next, err := parseLengthWithTie(s, at, st.defaultLen)
	if err != nil {
		return seq, at, err
	}
	units := st.advance(dur)
	freq := math.Pow(2, float64(nn+st.transpose-RefNote)/12)

	if st.tie && len(seq) > 0 {
		if prev, ok := seq[len(seq)-1].(score.PlainNote); ok && prev.FreqRel == freq {
			prev.Duration += units
			seq[len(seq)-1] = prev
			st.tie = false
			return seq, next, nil
		}
	}
	st.tie = false

	on := units * st.gate / quantMax
	if on > 0 {
		seq = append(seq, score.N(freq, on))
	}
	if off := units - on; off > 0 {
		seq = append(seq, score.N(-1, off))
	}
	return seq, next, nil
}

// advance moves the phrase position by dur units at the phrase tempo and
// returns the whole song-tempo units that step covers.
func (st *parseState) advance(dur int) int {
	st.pos += float64(dur) * float64(st.bpm) / float64(st.tempo)
	end := int(math.Round(st.pos))
	units := end - st.emitted
	st.emitted = end
	return units
}

func parsePitch(s string, at, octave int) (int, int) {
	nn := octave*12 + noteOffsets[lower(s[at])]
	i := at + 1
	for i < len(s) {
		switch s[i] {
		case '#', '+':
			nn++
		case '-':
			nn--
		default:
			return nn, i
		}
		i++
	}
	return nn, i
}

func parseLengthWithTie(s string, at int, defaultLen int) (int, int, error) {
	dur, i, err := parseLengthToken(s, at, defaultLen)
	if err != nil {
		return 0, at, err
	}
	for i < len(s) && s[i] == '^' {
		extra, next, e := parseLengthToken(s, i+1, defaultLen)
		if e != nil {
			return 0, at, e
		}
		dur += extra
		i = next
	}
	return dur, i, nil
}

func parseLengthToken(s string, at int, defaultLen int) (int, int, error) {
	val, i, err := parseNumberOptional(s, at)
	if err != nil {
		return 0, at, err
	}
	base := defaultLen
	if val == 0 {
		return 0, at, fmt.Errorf("zero length")
	}
	if val > 0 {
		base = Resolution / val
	}
	dur, term := base, base
	for i < len(s) && s[i] == '.' {
		term >>= 1
		dur += term
		i++
	}
	return dur, i, nil
}

func parseNumberDefault(s string, at int, def int) (int, int, error) {
	v, i, err := parseNumberOptional(s, at)
	if err != nil {
		return 0, at, err
	}
	if v == -1 {
		return def, i, nil
	}
	return v, i, nil
}

func parseSignedNumberDefault(s string, at int, def int) (int, int, error) {
	if at >= len(s) {
		return def, at, nil
	}
	sign, i := 1, at
	switch s[i] {
	case '+':
		i++
	case '-':
		sign = -1
		i++
	}
	v, next, err := parseNumberOptional(s, i)
	if err != nil {
		return 0, at, err
	}
	if v == -1 {
		return def, next, nil
	}
	return sign * v, next, nil
}

// parseNumberOptional returns -1 when no digits follow.
func parseNumberOptional(s string, at int) (int, int, error) {
	i := at
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if i == at {
		return -1, i, nil
	}
	n, err := strconv.Atoi(s[at:i])
	if err != nil {
		return 0, at, err
	}
	return n, i, nil
}

// normalizePanValue maps coarse p0..p8 onto -64..64 and clamps the rest.
func normalizePanValue(v int) int {
	if v >= 0 && v <= 8 {
		return (v - 4) * 16
	}
	return clampInt(v, -64, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

func isSpace(b byte) bool { return b == ' ' || b == '\n' || b == '\r' || b == '\t' }

func isNote(b byte) bool {
	_, ok := noteOffsets[b]
	return ok
}
