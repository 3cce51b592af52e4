// Package manifest loads extension bundles described in YAML.
//
// A manifest derives new classes from registered ones by name, applying a
// fixed list of tuning commands to every new instance, and can define
// percussions that play a WAV sample.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/cbegin/scoredraft-go/internal/percussion"
	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/wavio"
)

// Suffix is the file suffix the loader is registered under.
const Suffix = ".yaml"

var ErrUnknownBase = errors.New("manifest: unknown base class")

type Manifest struct {
	Instruments []Entry `yaml:"instruments,omitempty"`
	Percussions []Entry `yaml:"percussions,omitempty"`
	Singers     []Entry `yaml:"singers,omitempty"`
}

// Entry is one derived class.
type Entry struct {
	Name    string `yaml:"name"`
	Comment string `yaml:"comment,omitempty"`
	// Base names a registered class, or one defined earlier in the same
	// manifest.
	Base string `yaml:"base,omitempty"`
	// Sample is a WAV path relative to the manifest. Percussions only.
	Sample string   `yaml:"sample,omitempty"`
	Tune   []string `yaml:"tune,omitempty"`
}

func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}
	return &m, nil
}

// Loader returns a registry loader resolving bases against r.
func Loader(r *registry.Registry) registry.Loader {
	return func(path string) (registry.Bundle, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return registry.Bundle{}, err
		}
		m, err := Parse(data)
		if err != nil {
			return registry.Bundle{}, err
		}
		return m.Bundle(r, filepath.Dir(path))
	}
}

// Bundle resolves every entry. Any bad entry fails the whole manifest.
func (m *Manifest) Bundle(r *registry.Registry, dir string) (registry.Bundle, error) {
	var b registry.Bundle

	instruments := classIndex(r.InstrumentClasses())
	for _, e := range m.Instruments {
		c, err := derive(e, instruments, "instrument", func(i score.Instrument, cmd string) { i.Tune(cmd) })
		if err != nil {
			return registry.Bundle{}, err
		}
		instruments[c.Name] = c
		b.Instruments = append(b.Instruments, c)
	}

	percussions := classIndex(r.PercussionClasses())
	for _, e := range m.Percussions {
		var (
			c   registry.PercussionClass
			err error
		)
		if e.Sample != "" {
			c, err = sampleClass(e, dir)
		} else {
			c, err = derive(e, percussions, "percussion", func(p score.Percussion, cmd string) { p.Tune(cmd) })
		}
		if err != nil {
			return registry.Bundle{}, err
		}
		percussions[c.Name] = c
		b.Percussions = append(b.Percussions, c)
	}

	singers := classIndex(r.SingerClasses())
	for _, e := range m.Singers {
		c, err := derive(e, singers, "singer", func(s score.Singer, cmd string) { s.Tune(cmd) })
		if err != nil {
			return registry.Bundle{}, err
		}
		singers[c.Name] = c
		b.Singers = append(b.Singers, c)
	}
	return b, nil
}

// classIndex maps names to classes; later registrations win.
func classIndex[T any](classes []registry.Class[T]) map[string]registry.Class[T] {
	idx := make(map[string]registry.Class[T], len(classes))
	for _, c := range classes {
		idx[c.Name] = c
	}
	return idx
}

func derive[T any](e Entry, known map[string]registry.Class[T], what string, tune func(T, string)) (registry.Class[T], error) {
	if e.Name == "" {
		return registry.Class[T]{}, fmt.Errorf("manifest: %s without a name", what)
	}
	base, ok := known[e.Base]
	if !ok {
		return registry.Class[T]{}, fmt.Errorf("%w: %s %s has base %q", ErrUnknownBase, what, e.Name, e.Base)
	}
	cmds := append([]string(nil), e.Tune...)
	comment := e.Comment
	if comment == "" {
		comment = base.Comment
	}
	return registry.Class[T]{
		Name:    e.Name,
		Comment: comment,
		New: func() T {
			v := base.New()
			for _, cmd := range cmds {
				tune(v, cmd)
			}
			return v
		},
	}, nil
}

func sampleClass(e Entry, dir string) (registry.PercussionClass, error) {
	if e.Name == "" {
		return registry.PercussionClass{}, errors.New("manifest: percussion without a name")
	}
	if e.Base != "" {
		return registry.PercussionClass{}, fmt.Errorf("manifest: percussion %s sets both base and sample", e.Name)
	}
	path := e.Sample
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := wavio.LoadMono(path)
	if err != nil {
		return registry.PercussionClass{}, fmt.Errorf("manifest: percussion %s: %w", e.Name, err)
	}
	cmds := append([]string(nil), e.Tune...)
	comment := e.Comment
	if comment == "" {
		comment = "Plays " + filepath.Base(e.Sample) + "."
	}
	return registry.PercussionClass{
		Name:    e.Name,
		Comment: comment,
		New: func() score.Percussion {
			s := percussion.NewSample(data)
			for _, cmd := range cmds {
				s.Tune(cmd)
			}
			return s
		},
	}, nil
}
