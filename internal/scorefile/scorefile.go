// Package scorefile reads and writes song documents.
//
// A song lists tracks, each naming the classes that render it and carrying a
// raw score. Scores stay loosely typed here; score.Parse gives them meaning.
// YAML, JSON and MessagePack encodings are picked by file suffix.
package scorefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cbegin/scoredraft-go/internal/mml"
	"github.com/cbegin/scoredraft-go/internal/score"
)

const (
	DefaultTempo    = 120
	DefaultRefFreq  = 264.0
	DefaultChannels = 2
)

var (
	ErrFormat = errors.New("scorefile: unsupported format")
	ErrTrack  = errors.New("scorefile: invalid track")
)

type Format int

const (
	YAML Format = iota + 1
	JSON
	MsgPack
)

// FormatOf picks the encoding from a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	case ".msgpack", ".mpk":
		return MsgPack, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

type Song struct {
	Tempo    int     `yaml:"tempo,omitempty" json:"tempo,omitempty" msgpack:"tempo,omitempty"`
	RefFreq  float64 `yaml:"ref_freq,omitempty" json:"ref_freq,omitempty" msgpack:"ref_freq,omitempty"`
	Channels int     `yaml:"channels,omitempty" json:"channels,omitempty" msgpack:"channels,omitempty"`
	// Effects is applied to the mixed master.
	Effects string  `yaml:"effects,omitempty" json:"effects,omitempty" msgpack:"effects,omitempty"`
	Tracks  []Track `yaml:"tracks" json:"tracks" msgpack:"tracks"`
}

// Track names exactly one renderer: an instrument class, a list of
// percussion classes, or a singer class.
type Track struct {
	Name       string   `yaml:"name,omitempty" json:"name,omitempty" msgpack:"name,omitempty"`
	Instrument string   `yaml:"instrument,omitempty" json:"instrument,omitempty" msgpack:"instrument,omitempty"`
	Percussion []string `yaml:"percussion,omitempty" json:"percussion,omitempty" msgpack:"percussion,omitempty"`
	Singer     string   `yaml:"singer,omitempty" json:"singer,omitempty" msgpack:"singer,omitempty"`
	// Volume defaults to 1 when absent.
	Volume  *float64 `yaml:"volume,omitempty" json:"volume,omitempty" msgpack:"volume,omitempty"`
	Pan     float64  `yaml:"pan,omitempty" json:"pan,omitempty" msgpack:"pan,omitempty"`
	Effects string   `yaml:"effects,omitempty" json:"effects,omitempty" msgpack:"effects,omitempty"`
	Score   []any    `yaml:"score,omitempty" json:"score,omitempty" msgpack:"score,omitempty"`
	// MML replaces Score with a Music Macro Language phrase. Percussion
	// tracks cannot use it.
	MML string `yaml:"mml,omitempty" json:"mml,omitempty" msgpack:"mml,omitempty"`
}

type Kind int

const (
	InstrumentTrack Kind = iota + 1
	PercussionTrack
	SingerTrack
)

// Kind reports which renderer the track names, or 0 if it names none or
// more than one.
func (t *Track) Kind() Kind {
	var k Kind
	n := 0
	if t.Instrument != "" {
		k, n = InstrumentTrack, n+1
	}
	if len(t.Percussion) > 0 {
		k, n = PercussionTrack, n+1
	}
	if t.Singer != "" {
		k, n = SingerTrack, n+1
	}
	if n != 1 {
		return 0
	}
	return k
}

func (t *Track) Gain() float64 {
	if t.Volume == nil {
		return 1
	}
	return *t.Volume
}

// Sequence parses the raw score.
func (t *Track) Sequence() (score.Sequence, []score.Issue) {
	return score.Parse(t.Score)
}

// Resolve returns the track's sequence timed for bpm, from its MML phrase
// when it has one and from its raw score otherwise. A bad phrase is an
// error; malformed score elements are issues.
func (t *Track) Resolve(bpm int) (score.Sequence, []score.Issue, error) {
	if t.MML == "" {
		seq, issues := t.Sequence()
		return seq, issues, nil
	}
	seq, err := mml.Parse(t.MML, bpm)
	return seq, nil, err
}

// Label is the track name, or its position when unnamed.
func (t *Track) Label(i int) string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("track %d", i)
}

// Defaults supplies values for song fields left unset. Zero fields fall back
// to the package defaults.
type Defaults struct {
	Tempo    int
	RefFreq  float64
	Channels int
}

func (d Defaults) orBuiltin() Defaults {
	if d.Tempo <= 0 {
		d.Tempo = DefaultTempo
	}
	if d.RefFreq <= 0 {
		d.RefFreq = DefaultRefFreq
	}
	if d.Channels <= 0 {
		d.Channels = DefaultChannels
	}
	return d
}

// Normalize fills defaults and checks every track names one renderer.
func (s *Song) Normalize() error {
	return s.NormalizeWith(Defaults{})
}

func (s *Song) NormalizeWith(d Defaults) error {
	d = d.orBuiltin()
	if s.Tempo <= 0 {
		s.Tempo = d.Tempo
	}
	if s.RefFreq <= 0 {
		s.RefFreq = d.RefFreq
	}
	if s.Channels <= 0 {
		s.Channels = d.Channels
	}
	for i := range s.Tracks {
		t := &s.Tracks[i]
		switch {
		case t.Kind() == 0:
			return fmt.Errorf("%w: %s must name exactly one of instrument, percussion or singer", ErrTrack, t.Label(i))
		case t.MML != "" && len(t.Score) > 0:
			return fmt.Errorf("%w: %s has both score and mml", ErrTrack, t.Label(i))
		case t.MML != "" && t.Kind() == PercussionTrack:
			return fmt.Errorf("%w: %s: percussion tracks take a score, not mml", ErrTrack, t.Label(i))
		}
	}
	return nil
}

// Read loads and normalizes a song file.
func Read(path string) (*Song, error) {
	return ReadWith(path, Defaults{})
}

// ReadWith is Read with caller-supplied defaults.
func ReadWith(path string, d Defaults) (*Song, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWith(f, format, d)
}

func Decode(r io.Reader, format Format) (*Song, error) {
	return DecodeWith(r, format, Defaults{})
}

func DecodeWith(r io.Reader, format Format, d Defaults) (*Song, error) {
	var s Song
	switch format {
	case YAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("scorefile: yaml: %w", err)
		}
	case JSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("scorefile: json: %w", err)
		}
	case MsgPack:
		if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("scorefile: msgpack: %w", err)
		}
	default:
		return nil, ErrFormat
	}
	if err := s.NormalizeWith(d); err != nil {
		return nil, err
	}
	return &s, nil
}

// Write stores s in the format picked by the file suffix.
func Write(path string, s *Song) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func Encode(w io.Writer, format Format, s *Song) error {
	switch format {
	case YAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("scorefile: yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case JSON:
		out := *s
		out.Tracks = make([]Track, len(s.Tracks))
		for i, t := range s.Tracks {
			t.Score = keepReals(t.Score).([]any)
			out.Tracks[i] = t
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(&out)
	case MsgPack:
		return msgpack.NewEncoder(w).Encode(s)
	}
	return ErrFormat
}

// keepReals rewrites floats as JSON numbers that always carry a decimal
// point, so a note's 1.0 does not come back as the whole number 1.
func keepReals(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = keepReals(e)
		}
		return out
	case float32:
		return keepReals(float64(x))
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return json.Number(s)
	}
	return v
}
