package fx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownEffect = errors.New("fx: unknown effect")

// Stage is one parsed effect with its parameters, defaults filled in.
type Stage struct {
	Name   string
	Params []float64
}

// Spec is a parsed effect chain description.
type Spec []Stage

type kind struct {
	defaults []float64
	build    func(sampleRate int, p []float32) Effect
}

var kinds = map[string]kind{
	"delay": {
		defaults: []float64{250, 0.4, 0.2, 0.3}, // ms, feedback, cross, wet
		build: func(sr int, p []float32) Effect {
			return NewDelay(sr, float64(p[0]), p[1], p[2], p[3])
		},
	},
	"reverb": {
		defaults: []float64{0.5, 0.7, 0.25}, // room, feedback, wet
		build: func(sr int, p []float32) Effect {
			return NewReverb(sr, p[0], p[1], p[2])
		},
	},
	"chorus": {
		defaults: []float64{15, 0.3, 3, 1.5, 0.4}, // ms, feedback, depth ms, rate Hz, wet
		build: func(sr int, p []float32) Effect {
			return NewChorus(sr, p[0], p[1], p[2], p[3], p[4])
		},
	},
	"distortion": {
		defaults: []float64{4, 0.5, 8000}, // pre, post, lowpass Hz
		build: func(sr int, p []float32) Effect {
			return NewDistortion(sr, p[0], p[1], p[2])
		},
	},
	"eq": {
		defaults: []float64{1, 1, 1, 300, 3000}, // low, mid, high, low Hz, high Hz
		build: func(sr int, p []float32) Effect {
			return NewEQ3(sr, p[0], p[1], p[2], p[3], p[4])
		},
	},
	"eq5": {
		defaults: []float64{1, 1, 1, 1, 1},
		build: func(sr int, p []float32) Effect {
			return NewEQ5(sr, [5]float32(p))
		},
	},
	"compressor": {
		defaults: []float64{-20, 4, 5, 100, 6}, // threshold dB, ratio, attack ms, release ms, makeup dB
		build: func(sr int, p []float32) Effect {
			return NewCompressor(sr, p[0], p[1], p[2], p[3], p[4])
		},
	},
}

var aliases = map[string]string{
	"dist": "distortion",
	"comp": "compressor",
}

// Parse reads a chain such as "reverb 0.5,0.7,0.25; delay 250,0.4". Stages
// are separated by semicolons or newlines; parameters by commas or spaces.
// Missing parameters take their defaults and extra ones are an error.
func Parse(spec string) (Spec, error) {
	var out Spec
	for _, raw := range strings.FieldsFunc(spec, func(r rune) bool { return r == ';' || r == '\n' }) {
		raw = strings.Trim(strings.TrimSpace(raw), "{}")
		fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		if a, ok := aliases[name]; ok {
			name = a
		}
		k, ok := kinds[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, fields[0])
		}
		if len(fields)-1 > len(k.defaults) {
			return nil, fmt.Errorf("fx: %s takes at most %d parameters, got %d", name, len(k.defaults), len(fields)-1)
		}
		params := append([]float64(nil), k.defaults...)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("fx: %s parameter %d: %w", name, i+1, err)
			}
			params[i] = v
		}
		out = append(out, Stage{Name: name, Params: params})
	}
	return out, nil
}

// Build instantiates a fresh chain for one stereo stream.
func (s Spec) Build(sampleRate int) Chain {
	chain := make(Chain, 0, len(s))
	for _, st := range s {
		k := kinds[st.Name]
		p := make([]float32, len(st.Params))
		for i, v := range st.Params {
			p[i] = float32(v)
		}
		chain = append(chain, k.build(sampleRate, p))
	}
	return chain
}

func (s Spec) String() string {
	parts := make([]string, len(s))
	for i, st := range s {
		nums := make([]string, len(st.Params))
		for j, v := range st.Params {
			nums[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		parts[i] = st.Name + " " + strings.Join(nums, ",")
	}
	return strings.Join(parts, "; ")
}
