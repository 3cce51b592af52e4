package scoredraft

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cbegin/scoredraft-go/internal/codegen"
	"github.com/cbegin/scoredraft-go/internal/fm"
	"github.com/cbegin/scoredraft-go/internal/instrument"
	"github.com/cbegin/scoredraft-go/internal/manifest"
	"github.com/cbegin/scoredraft-go/internal/percussion"
	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/singer"
	"github.com/cbegin/scoredraft-go/internal/track"
	"github.com/cbegin/scoredraft-go/internal/wavio"
)

type Option func(*engineConfig)

type engineConfig struct {
	logger    *slog.Logger
	loaders   map[string]registry.Loader
	builtins  bool
	normalize bool
}

func defaultEngineConfig() engineConfig {
	return engineConfig{builtins: true, normalize: true}
}

// WithLogger sets the logger used by the engine and its registry.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *engineConfig) {
		cfg.logger = l
	}
}

// WithLoader binds an extension loader to a file suffix, replacing the
// built-in one for that suffix if any.
func WithLoader(suffix string, l registry.Loader) Option {
	return func(cfg *engineConfig) {
		if cfg.loaders == nil {
			cfg.loaders = map[string]registry.Loader{}
		}
		cfg.loaders[suffix] = l
	}
}

// WithoutBuiltins starts from an empty registry: no built-in classes,
// extensions or manifest loader.
func WithoutBuiltins() Option {
	return func(cfg *engineConfig) {
		cfg.builtins = false
	}
}

// WithNormalize controls whether WAV output is peak-normalized when it would
// clip. It is on by default.
func WithNormalize(enabled bool) Option {
	return func(cfg *engineConfig) {
		cfg.normalize = enabled
	}
}

// Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	reg       *registry.Registry
	dec       score.Decoder
	logger    *slog.Logger
	normalize bool
}

func New(opts ...Option) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		reg:       registry.New(logger),
		dec:       score.Decoder{Logger: logger},
		logger:    logger,
		normalize: cfg.normalize,
	}
	if cfg.builtins {
		e.registerBuiltins()
	}
	for suffix, l := range cfg.loaders {
		e.reg.SetLoader(suffix, l)
	}
	return e
}

func (e *Engine) registerBuiltins() {
	for _, c := range instrument.Classes() {
		e.reg.RegisterInstrument(c)
	}
	for _, c := range fm.Classes() {
		e.reg.RegisterInstrument(c)
	}
	for _, c := range percussion.Classes() {
		e.reg.RegisterPercussion(c)
	}
	for _, c := range singer.Classes() {
		e.reg.RegisterSinger(c)
	}
	for _, x := range e.builtinExtensions() {
		e.reg.RegisterExtension(x)
	}
	e.reg.SetLoader(manifest.Suffix, manifest.Loader(e.reg))
}

// Track buffers.

func (e *Engine) InitTrackBuffer(channels int) (BufferID, error) {
	return e.reg.NewBuffer(channels)
}

func (e *Engine) DelTrackBuffer(id BufferID) error {
	return e.reg.ReleaseBuffer(id)
}

func (e *Engine) TrackBufferSetVolume(id BufferID, volume float64) error {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return err
	}
	b.SetVolume(volume)
	return nil
}

func (e *Engine) TrackBufferGetVolume(id BufferID) (float64, error) {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return 0, err
	}
	return b.Volume(), nil
}

// TrackBufferSetPan stores pan clamped to [-1, 1].
func (e *Engine) TrackBufferSetPan(id BufferID, pan float64) error {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return err
	}
	b.SetPan(pan)
	return nil
}

func (e *Engine) TrackBufferGetPan(id BufferID) (float64, error) {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return 0, err
	}
	return b.Pan(), nil
}

// NumberOfSamples returns the buffer length in frames.
func (e *Engine) NumberOfSamples(id BufferID) (int, error) {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return 0, err
	}
	return b.Len(), nil
}

func (e *Engine) NumberOfChannels(id BufferID) (int, error) {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return 0, err
	}
	return b.Channels(), nil
}

func (e *Engine) GetCursor(id BufferID) (float64, error) {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return 0, err
	}
	return b.Cursor(), nil
}

// SetCursor moves the cursor to pos, clamped to [0, NumberOfSamples].
func (e *Engine) SetCursor(id BufferID, pos float64) error {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return err
	}
	if err := checkPosition(pos); err != nil {
		return err
	}
	b.SetCursor(pos)
	return nil
}

func (e *Engine) MoveCursor(id BufferID, delta float64) error {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return err
	}
	if err := checkPosition(delta); err != nil {
		return err
	}
	b.MoveCursor(delta)
	return nil
}

// MixTrackBufferList sums sources into target. On a channel mismatch target
// is left as it was.
func (e *Engine) MixTrackBufferList(target BufferID, sources []BufferID) error {
	t, err := e.reg.Buffer(target)
	if err != nil {
		return err
	}
	src, err := e.reg.Buffers(sources)
	if err != nil {
		return err
	}
	return t.Combine(src...)
}

func (e *Engine) WriteTrackBufferToWav(id BufferID, path string) error {
	b, err := e.reg.Buffer(id)
	if err != nil {
		return err
	}
	return wavio.Write(path, b, e.normalize)
}

// Instruments.

func (e *Engine) InitInstrument(classID int) (InstrumentID, error) {
	return e.reg.NewInstrument(classID)
}

func (e *Engine) DelInstrument(id InstrumentID) error {
	return e.reg.ReleaseInstrument(id)
}

// InstrumentPlay renders seq with an instrument. A *PartialError means some
// elements were skipped; the rest were rendered.
func (e *Engine) InstrumentPlay(buf BufferID, inst InstrumentID, seq Sequence, bpm int, refFreq float64) error {
	b, err := e.reg.Buffer(buf)
	if err != nil {
		return err
	}
	in, err := e.reg.Instrument(inst)
	if err != nil {
		return err
	}
	if err := checkTempo(bpm); err != nil {
		return err
	}
	return e.dec.Play(b, in, seq, bpm, refFreq)
}

func (e *Engine) InstrumentTune(inst InstrumentID, cmd string) error {
	in, err := e.reg.Instrument(inst)
	if err != nil {
		return err
	}
	in.Tune(cmd)
	return nil
}

// Percussion.

func (e *Engine) InitPercussion(classID int) (PercussionID, error) {
	return e.reg.NewPercussion(classID)
}

func (e *Engine) DelPercussion(id PercussionID) error {
	return e.reg.ReleasePercussion(id)
}

// PercussionPlay renders a beat sequence. Beat indices address percs; an
// index outside it fails the call before anything is written.
func (e *Engine) PercussionPlay(buf BufferID, percs []PercussionID, seq Sequence, bpm int) error {
	b, err := e.reg.Buffer(buf)
	if err != nil {
		return err
	}
	ps, err := e.reg.Percussions(percs)
	if err != nil {
		return err
	}
	if err := checkTempo(bpm); err != nil {
		return err
	}
	return e.dec.PlayBeats(b, ps, seq, bpm)
}

func (e *Engine) PercussionTune(id PercussionID, cmd string) error {
	p, err := e.reg.Percussion(id)
	if err != nil {
		return err
	}
	p.Tune(cmd)
	return nil
}

// Singers.

func (e *Engine) InitSinger(classID int) (SingerID, error) {
	return e.reg.NewSinger(classID)
}

func (e *Engine) DelSinger(id SingerID) error {
	return e.reg.ReleaseSinger(id)
}

// Sing renders seq with a singer. Lyrics the singer's charset cannot carry
// are skipped and reported in the returned *PartialError.
func (e *Engine) Sing(buf BufferID, id SingerID, seq Sequence, bpm int, refFreq float64) error {
	b, err := e.reg.Buffer(buf)
	if err != nil {
		return err
	}
	s, err := e.reg.Singer(id)
	if err != nil {
		return err
	}
	if err := checkTempo(bpm); err != nil {
		return err
	}
	return e.dec.Sing(b, s, seq, bpm, refFreq)
}

func (e *Engine) SingerTune(id SingerID, cmd string) error {
	s, err := e.reg.Singer(id)
	if err != nil {
		return err
	}
	s.Tune(cmd)
	return nil
}

// Extensions and classes.

func (e *Engine) CallExtension(id int, args ...any) (any, error) {
	return e.reg.CallExtension(id, args...)
}

// ScanExtensions loads extension files from root/Extensions and returns how
// many loaded. Files that fail are skipped and reported in the joined error.
func (e *Engine) ScanExtensions(root string) (int, error) {
	return e.reg.Scan(root)
}

// GenerateCode returns wrapper source for every registered class and
// extension, and a numbered summary of them.
func (e *Engine) GenerateCode() (code, summary string, err error) {
	return codegen.Generate(e.reg)
}

// ClassInfo describes a registered class or extension.
type ClassInfo struct {
	ID      int
	Name    string
	Comment string
}

func (e *Engine) InstrumentClasses() []ClassInfo { return classInfos(e.reg.InstrumentClasses()) }
func (e *Engine) PercussionClasses() []ClassInfo { return classInfos(e.reg.PercussionClasses()) }
func (e *Engine) SingerClasses() []ClassInfo     { return classInfos(e.reg.SingerClasses()) }

func (e *Engine) Extensions() []ClassInfo {
	xs := e.reg.Extensions()
	out := make([]ClassInfo, len(xs))
	for i, x := range xs {
		out[i] = ClassInfo{ID: i, Name: x.Name, Comment: x.Comment}
	}
	return out
}

// Lookup functions return the id of the latest class registered under name.

func (e *Engine) LookupInstrument(name string) (int, bool) { return e.reg.LookupInstrument(name) }
func (e *Engine) LookupPercussion(name string) (int, bool) { return e.reg.LookupPercussion(name) }
func (e *Engine) LookupSinger(name string) (int, bool)     { return e.reg.LookupSinger(name) }
func (e *Engine) LookupExtension(name string) (int, bool)  { return e.reg.LookupExtension(name) }

// Buffer exposes the buffer behind a handle for read access, e.g. to inspect
// rendered samples.
func (e *Engine) Buffer(id BufferID) (*track.Buffer, error) {
	return e.reg.Buffer(id)
}

func classInfos[T any](classes []registry.Class[T]) []ClassInfo {
	out := make([]ClassInfo, len(classes))
	for i, c := range classes {
		out[i] = ClassInfo{ID: i, Name: c.Name, Comment: c.Comment}
	}
	return out
}

var (
	ErrCursor = errors.New("scoredraft: cursor position must be finite")
	errTempo  = errors.New("scoredraft: tempo must be positive")
)

func checkPosition(pos float64) error {
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return fmt.Errorf("%w: %v", ErrCursor, pos)
	}
	return nil
}

func checkTempo(bpm int) error {
	if bpm <= 0 {
		return fmt.Errorf("%w: %d", errTempo, bpm)
	}
	return nil
}
