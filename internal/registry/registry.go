// Package registry owns renderer classes, interface extensions and the live
// objects created from them.
//
// A Registry is an explicit value; nothing here is process-global. Class ids
// are positions in registration order. Handles to live objects are never
// reused, so a released handle stays invalid for the registry's lifetime.
package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/track"
)

// ErrInvalidHandle is returned for unknown or released handles and for class
// or extension ids outside the registered range.
var ErrInvalidHandle = errors.New("registry: invalid handle")

type (
	BufferID     int
	InstrumentID int
	PercussionID int
	SingerID     int
)

// Class is one registered renderer type.
type Class[T any] struct {
	Name string
	// Comment is emitted verbatim into generated code, one tab-indented line
	// per entry, or empty.
	Comment string
	New     func() T
}

type (
	InstrumentClass = Class[score.Instrument]
	PercussionClass = Class[score.Percussion]
	SingerClass     = Class[score.Singer]
)

// Registry is not safe for concurrent use.
type Registry struct {
	logger *slog.Logger

	instrumentClasses classTable[score.Instrument]
	percussionClasses classTable[score.Percussion]
	singerClasses     classTable[score.Singer]
	extensions        []Extension

	buffers     handleTable[BufferID, *track.Buffer]
	instruments handleTable[InstrumentID, score.Instrument]
	percussions handleTable[PercussionID, score.Percussion]
	singers     handleTable[SingerID, score.Singer]

	loaders map[string]Loader
}

// New returns an empty registry. A nil logger logs through slog.Default.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger, loaders: map[string]Loader{}}
}

func (r *Registry) Logger() *slog.Logger { return r.logger }

// RegisterInstrument adds an instrument class and returns its class id.
func (r *Registry) RegisterInstrument(c InstrumentClass) int {
	return r.instrumentClasses.add(c)
}

func (r *Registry) RegisterPercussion(c PercussionClass) int {
	return r.percussionClasses.add(c)
}

func (r *Registry) RegisterSinger(c SingerClass) int {
	return r.singerClasses.add(c)
}

func (r *Registry) InstrumentClasses() []InstrumentClass { return r.instrumentClasses.list() }
func (r *Registry) PercussionClasses() []PercussionClass { return r.percussionClasses.list() }
func (r *Registry) SingerClasses() []SingerClass         { return r.singerClasses.list() }

// LookupInstrument returns the id of the most recently registered instrument
// class with that name.
func (r *Registry) LookupInstrument(name string) (int, bool) {
	return r.instrumentClasses.lookup(name)
}

func (r *Registry) LookupPercussion(name string) (int, bool) {
	return r.percussionClasses.lookup(name)
}

func (r *Registry) LookupSinger(name string) (int, bool) {
	return r.singerClasses.lookup(name)
}

// NewBuffer creates a track buffer and returns its handle.
func (r *Registry) NewBuffer(channels int) (BufferID, error) {
	b, err := track.New(channels)
	if err != nil {
		return 0, err
	}
	id := r.buffers.add(b)
	r.logger.Debug("registry: buffer created", "id", id, "channels", channels)
	return id, nil
}

func (r *Registry) Buffer(id BufferID) (*track.Buffer, error) {
	return r.buffers.get(id, "buffer")
}

// Buffers resolves a list of handles, failing on the first invalid one.
func (r *Registry) Buffers(ids []BufferID) ([]*track.Buffer, error) {
	out := make([]*track.Buffer, len(ids))
	for i, id := range ids {
		b, err := r.Buffer(id)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (r *Registry) ReleaseBuffer(id BufferID) error {
	if err := r.buffers.remove(id, "buffer"); err != nil {
		return err
	}
	r.logger.Debug("registry: buffer released", "id", id)
	return nil
}

// NewInstrument instantiates the instrument class with the given id.
func (r *Registry) NewInstrument(classID int) (InstrumentID, error) {
	c, err := r.instrumentClasses.get(classID, "instrument class")
	if err != nil {
		return 0, err
	}
	id := r.instruments.add(c.New())
	r.logger.Debug("registry: instrument created", "id", id, "class", c.Name)
	return id, nil
}

func (r *Registry) Instrument(id InstrumentID) (score.Instrument, error) {
	return r.instruments.get(id, "instrument")
}

func (r *Registry) ReleaseInstrument(id InstrumentID) error {
	if err := r.instruments.remove(id, "instrument"); err != nil {
		return err
	}
	r.logger.Debug("registry: instrument released", "id", id)
	return nil
}

func (r *Registry) NewPercussion(classID int) (PercussionID, error) {
	c, err := r.percussionClasses.get(classID, "percussion class")
	if err != nil {
		return 0, err
	}
	id := r.percussions.add(c.New())
	r.logger.Debug("registry: percussion created", "id", id, "class", c.Name)
	return id, nil
}

func (r *Registry) Percussion(id PercussionID) (score.Percussion, error) {
	return r.percussions.get(id, "percussion")
}

// Percussions resolves the percussion list of one beat render. The returned
// slice is owned by the caller.
func (r *Registry) Percussions(ids []PercussionID) ([]score.Percussion, error) {
	out := make([]score.Percussion, len(ids))
	for i, id := range ids {
		p, err := r.Percussion(id)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (r *Registry) ReleasePercussion(id PercussionID) error {
	if err := r.percussions.remove(id, "percussion"); err != nil {
		return err
	}
	r.logger.Debug("registry: percussion released", "id", id)
	return nil
}

func (r *Registry) NewSinger(classID int) (SingerID, error) {
	c, err := r.singerClasses.get(classID, "singer class")
	if err != nil {
		return 0, err
	}
	id := r.singers.add(c.New())
	r.logger.Debug("registry: singer created", "id", id, "class", c.Name)
	return id, nil
}

func (r *Registry) Singer(id SingerID) (score.Singer, error) {
	return r.singers.get(id, "singer")
}

func (r *Registry) ReleaseSinger(id SingerID) error {
	if err := r.singers.remove(id, "singer"); err != nil {
		return err
	}
	r.logger.Debug("registry: singer released", "id", id)
	return nil
}

type classTable[T any] struct {
	classes []Class[T]
}

func (t *classTable[T]) add(c Class[T]) int {
	t.classes = append(t.classes, c)
	return len(t.classes) - 1
}

func (t *classTable[T]) list() []Class[T] {
	return append([]Class[T](nil), t.classes...)
}

func (t *classTable[T]) lookup(name string) (int, bool) {
	for i := len(t.classes) - 1; i >= 0; i-- {
		if t.classes[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

func (t *classTable[T]) get(id int, what string) (Class[T], error) {
	if id < 0 || id >= len(t.classes) {
		return Class[T]{}, fmt.Errorf("%w: %s %d", ErrInvalidHandle, what, id)
	}
	return t.classes[id], nil
}

type handleTable[K ~int, V any] struct {
	next  K
	items map[K]V
}

func (t *handleTable[K, V]) add(v V) K {
	if t.items == nil {
		t.items = map[K]V{}
	}
	id := t.next
	t.next++
	t.items[id] = v
	return id
}

func (t *handleTable[K, V]) get(id K, what string) (V, error) {
	v, ok := t.items[id]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %s %d", ErrInvalidHandle, what, id)
	}
	return v, nil
}

func (t *handleTable[K, V]) remove(id K, what string) error {
	if _, ok := t.items[id]; !ok {
		return fmt.Errorf("%w: %s %d", ErrInvalidHandle, what, id)
	}
	delete(t.items, id)
	return nil
}
