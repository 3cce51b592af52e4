package score

import (
	"encoding/json"
	"math"
	"strings"
)

// Parse turns loosely typed values into a Sequence. Elements that match no
// shape are left out and reported as issues; the rest keep their order.
//
// Shapes, decided by the value itself:
//
//	"text"                          Command
//	[real, int]                     PlainNote
//	[whole, int]                    Beat (sign rule, see Beat)
//	[whole, "text"]                 TuneBeat
//	["lyric", payload, ...]         VocalGroup
//
// where each vocal payload is either one or more [freq, int] notes, or three
// numbers (duration, freq1, freq2) for a rapped syllable. Reals and wholes
// are told apart by type: 1.0 is real, 1 is whole.
func Parse(raw []any) (Sequence, []Issue) {
	seq := make(Sequence, 0, len(raw))
	var issues []Issue
	for i, v := range raw {
		el, err := ParseElement(v)
		if err != nil {
			issues = append(issues, Issue{Index: i, Err: err})
			continue
		}
		seq = append(seq, el)
	}
	return seq, issues
}

// ParseElement decodes a single element.
func ParseElement(v any) (Element, error) {
	switch x := v.(type) {
	case Element:
		return x, nil
	case string:
		return Command(x), nil
	case []any:
		return parseGroup(x)
	}
	return nil, malformed("unsupported element type %T", v)
}

func parseGroup(g []any) (Element, error) {
	if len(g) == 0 {
		return nil, malformed("empty group")
	}
	if _, ok := g[0].(string); ok {
		return parseVocal(g)
	}
	switch kind, _, _ := number(g[0]); kind {
	case realNumber:
		n, err := parseNote(g)
		if err != nil {
			return nil, err
		}
		return PlainNote(n), nil
	case wholeNumber:
		return parseBeat(g)
	}
	return nil, malformed("group starts with %T", g[0])
}

func parseNote(g []any) (Note, error) {
	if len(g) < 2 {
		return Note{}, malformed("note needs (freq, duration), got %d values", len(g))
	}
	kind, freq, _ := number(g[0])
	if kind == notNumber {
		return Note{}, malformed("note frequency is %T", g[0])
	}
	kind, _, dur := number(g[1])
	if kind != wholeNumber {
		return Note{}, malformed("note duration is %T, want an integer", g[1])
	}
	return Note{FreqRel: freq, Duration: int(dur)}, nil
}

func parseBeat(g []any) (Element, error) {
	if len(g) < 2 {
		return nil, malformed("beat needs (index, duration|command), got %d values", len(g))
	}
	_, _, idx := number(g[0])
	if cmd, ok := g[1].(string); ok {
		if idx < 0 {
			return nil, malformed("tune addressed to percussion %d", idx)
		}
		return TuneBeat(int(idx), cmd), nil
	}
	kind, _, dur := number(g[1])
	if kind != wholeNumber {
		return nil, malformed("beat duration is %T, want an integer", g[1])
	}
	return Beat(int(idx), int(dur)), nil
}

func parseVocal(g []any) (Element, error) {
	var group VocalGroup
	for j := 0; j < len(g); {
		lyric, ok := g[j].(string)
		if !ok {
			return nil, malformed("expected lyric at position %d, got %T", j, g[j])
		}
		j++
		if j >= len(g) {
			return nil, malformed("lyric %q has no notes", lyric)
		}
		if _, ok := g[j].([]any); ok {
			syl := Syllable{Lyric: lyric}
			for ; j < len(g); j++ {
				t, ok := g[j].([]any)
				if !ok {
					break
				}
				n, err := parseNote(t)
				if err != nil {
					return nil, err
				}
				syl.Notes = append(syl.Notes, n)
			}
			group = append(group, syl)
			continue
		}
		if kind, _, _ := number(g[j]); kind != wholeNumber {
			return nil, malformed("lyric %q followed by %T", lyric, g[j])
		}
		if j+2 >= len(g) {
			return nil, malformed("rap %q needs (duration, freq1, freq2)", lyric)
		}
		_, _, dur := number(g[j])
		k1, f1, _ := number(g[j+1])
		k2, f2, _ := number(g[j+2])
		if k1 == notNumber || k2 == notNumber {
			return nil, malformed("rap %q frequencies are %T, %T", lyric, g[j+1], g[j+2])
		}
		group = append(group, Rapped(lyric, int(dur), f1, f2))
		j += 3
	}
	return group, nil
}

type numberKind int

const (
	notNumber numberKind = iota
	wholeNumber
	realNumber
)

// number classifies v and returns it both as float and as integer. Integer
// types of any width are whole; float types are real even when integral.
func number(v any) (numberKind, float64, int64) {
	switch x := v.(type) {
	case int:
		return wholeNumber, float64(x), int64(x)
	case int8:
		return wholeNumber, float64(x), int64(x)
	case int16:
		return wholeNumber, float64(x), int64(x)
	case int32:
		return wholeNumber, float64(x), int64(x)
	case int64:
		return wholeNumber, float64(x), x
	case uint:
		return wholeNumber, float64(x), int64(x)
	case uint8:
		return wholeNumber, float64(x), int64(x)
	case uint16:
		return wholeNumber, float64(x), int64(x)
	case uint32:
		return wholeNumber, float64(x), int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return notNumber, 0, 0
		}
		return wholeNumber, float64(x), int64(x)
	case float32:
		return realNumber, float64(x), int64(x)
	case float64:
		return realNumber, x, int64(x)
	case json.Number:
		if strings.ContainsAny(string(x), ".eE") {
			f, err := x.Float64()
			if err != nil {
				return notNumber, 0, 0
			}
			return realNumber, f, int64(f)
		}
		i, err := x.Int64()
		if err != nil {
			return notNumber, 0, 0
		}
		return wholeNumber, float64(i), i
	}
	return notNumber, 0, 0
}
