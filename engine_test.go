package scoredraft

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cbegin/scoredraft-go/internal/instrument"
	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
)

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func mustInstrument(t *testing.T, e *Engine, name string) InstrumentID {
	t.Helper()
	class, ok := e.LookupInstrument(name)
	if !ok {
		t.Fatalf("instrument class %q not registered", name)
	}
	id, err := e.InitInstrument(class)
	if err != nil {
		t.Fatalf("init instrument: %v", err)
	}
	return id
}

func TestReleasedHandlesAreInvalid(t *testing.T) {
	e := newTestEngine()
	buf, err := e.InitTrackBuffer(2)
	if err != nil {
		t.Fatalf("init buffer: %v", err)
	}
	if err := e.DelTrackBuffer(buf); err != nil {
		t.Fatalf("del buffer: %v", err)
	}
	if _, err := e.NumberOfSamples(buf); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("NumberOfSamples on released buffer: err = %v, want ErrInvalidHandle", err)
	}
	if err := e.DelTrackBuffer(buf); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("double release: err = %v, want ErrInvalidHandle", err)
	}

	inst := mustInstrument(t, e, "PureSin")
	if err := e.DelInstrument(inst); err != nil {
		t.Fatalf("del instrument: %v", err)
	}
	if err := e.InstrumentTune(inst, "volume 0.5"); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("tune released instrument: err = %v, want ErrInvalidHandle", err)
	}
	if _, err := e.InitSinger(99); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("init singer from unknown class: err = %v, want ErrInvalidHandle", err)
	}
	if _, err := e.CallExtension(99); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("call unknown extension: err = %v, want ErrInvalidHandle", err)
	}
}

func TestBufferAccessors(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(2)

	if ch, _ := e.NumberOfChannels(buf); ch != 2 {
		t.Fatalf("channels = %d, want 2", ch)
	}
	if v, _ := e.TrackBufferGetVolume(buf); v != 1 {
		t.Fatalf("default volume = %v, want 1", v)
	}
	if err := e.TrackBufferSetVolume(buf, 0.35); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	if v, _ := e.TrackBufferGetVolume(buf); v != 0.35 {
		t.Fatalf("volume = %v, want 0.35", v)
	}
	_ = e.TrackBufferSetPan(buf, -0.5)
	if p, _ := e.TrackBufferGetPan(buf); p != -0.5 {
		t.Fatalf("pan = %v, want -0.5", p)
	}

	_ = e.SetCursor(buf, 100)
	if n, _ := e.NumberOfSamples(buf); n != 0 {
		t.Fatalf("samples = %d, want 0: moving the cursor does not grow the buffer", n)
	}
	_ = e.MoveCursor(buf, -250)
	if c, _ := e.GetCursor(buf); c != 0 {
		t.Fatalf("cursor = %v, want clamp to 0", c)
	}
}

func TestCursorRejectsNonFinitePositions(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(2)
	inst := mustInstrument(t, e, "PureSin")
	if err := e.InstrumentPlay(buf, inst, Sequence{N(1, 48)}, 120, 264); err != nil {
		t.Fatalf("play: %v", err)
	}

	for _, pos := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := e.SetCursor(buf, pos); !errors.Is(err, ErrCursor) {
			t.Fatalf("SetCursor(%v): err = %v, want ErrCursor", pos, err)
		}
		if err := e.MoveCursor(buf, pos); !errors.Is(err, ErrCursor) {
			t.Fatalf("MoveCursor(%v): err = %v, want ErrCursor", pos, err)
		}
	}
	if c, _ := e.GetCursor(buf); c != 22050 {
		t.Fatalf("cursor = %v, want 22050", c)
	}
	if err := e.InstrumentPlay(buf, inst, Sequence{N(1, 48)}, 120, 264); err != nil {
		t.Fatalf("play after rejected cursor: %v", err)
	}
}

func TestInstrumentPlayAdvancesByDuration(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(1)
	inst := mustInstrument(t, e, "Square")
	seq := Sequence{N(1, 48), Command("volume 0.5"), N(1.25, 48)}

	if err := e.InstrumentPlay(buf, inst, seq, 120, 264); err != nil {
		t.Fatalf("play: %v", err)
	}
	// 48 units at 120 bpm is half a second.
	if c, _ := e.GetCursor(buf); c != 44100 {
		t.Fatalf("cursor = %v, want 44100", c)
	}
	if n, _ := e.NumberOfSamples(buf); n < 44100 {
		t.Fatalf("samples = %d, want at least 44100", n)
	}
	if got := TellDuration(seq); got != 96 {
		t.Fatalf("TellDuration = %d, want 96", got)
	}
	if err := e.InstrumentPlay(buf, inst, seq, 0, 264); err == nil {
		t.Fatal("expected error for zero tempo")
	}
}

func TestPercussionPlay(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(2)

	if err := e.PercussionPlay(buf, nil, Sequence{Beat(-1, 48)}, 120); err != nil {
		t.Fatalf("silence: %v", err)
	}
	if n, _ := e.NumberOfSamples(buf); n != 22050 {
		t.Fatalf("samples after silence = %d, want 22050", n)
	}

	class, _ := e.LookupPercussion("Snare")
	snare, _ := e.InitPercussion(class)
	err := e.PercussionPlay(buf, []PercussionID{snare}, Sequence{Beat(0, 48), Beat(1, 48)}, 120)
	if !errors.Is(err, ErrPercussionIndex) {
		t.Fatalf("err = %v, want ErrPercussionIndex", err)
	}
	if c, _ := e.GetCursor(buf); c != 22050 {
		t.Fatalf("cursor = %v, want 22050; nothing should render on a bad index", c)
	}
	if err := e.PercussionTune(snare, "decay 0.1"); err != nil {
		t.Fatalf("tune: %v", err)
	}
}

func TestSingReportsCharsetIssues(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(1)
	class, _ := e.LookupSinger("Hummer")
	s, _ := e.InitSinger(class)
	if err := e.SingerTune(s, "charset windows-1252"); err != nil {
		t.Fatalf("tune: %v", err)
	}

	seq := Sequence{VocalGroup{Sung("la", Note{FreqRel: 1, Duration: 24}), Sung("中", Note{FreqRel: 1.2, Duration: 24})}}
	err := e.Sing(buf, s, seq, 120, 264)
	var pe *PartialError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PartialError", err)
	}
	if len(pe.Issues) != 1 || !errors.Is(pe.Issues[0], ErrCharset) {
		t.Fatalf("issues = %v, want one charset issue", pe.Issues)
	}
	if c, _ := e.GetCursor(buf); c <= 0 {
		t.Fatalf("cursor = %v, want the first syllable rendered", c)
	}
}

func TestMixTrackBufferList(t *testing.T) {
	e := newTestEngine()
	target, _ := e.InitTrackBuffer(2)
	a, _ := e.InitTrackBuffer(2)
	mono, _ := e.InitTrackBuffer(1)
	inst := mustInstrument(t, e, "PureSin")
	_ = e.InstrumentPlay(a, inst, Sequence{N(1, 24)}, 120, 264)

	if err := e.MixTrackBufferList(target, []BufferID{a, mono}); !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("err = %v, want ErrChannelMismatch", err)
	}
	if n, _ := e.NumberOfSamples(target); n != 0 {
		t.Fatalf("target grew to %d frames on a rejected mix", n)
	}
	if err := e.MixTrackBufferList(target, []BufferID{a}); err != nil {
		t.Fatalf("mix: %v", err)
	}
	na, _ := e.NumberOfSamples(a)
	if n, _ := e.NumberOfSamples(target); n != na {
		t.Fatalf("target samples = %d, want %d", n, na)
	}
}

func TestNormalizeExtension(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(1)
	inst := mustInstrument(t, e, "Sawtooth")
	_ = e.InstrumentPlay(buf, inst, Sequence{N(1, 48)}, 120, 264)

	id, ok := e.LookupExtension("TrackBufferNormalize")
	if !ok {
		t.Fatal("TrackBufferNormalize not registered")
	}
	if _, err := e.CallExtension(id, buf, 0.5); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, _ := e.Buffer(buf)
	if got := b.Peak(); math.Abs(float64(got)-0.5) > 1e-5 {
		t.Fatalf("peak = %v, want 0.5", got)
	}
	if _, err := e.CallExtension(id, "buf"); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("bad buffer argument: err = %v, want ErrInvalidHandle", err)
	}
}

func TestApplyEffectExtension(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(2)
	inst := mustInstrument(t, e, "Triangle")
	_ = e.InstrumentPlay(buf, inst, Sequence{N(1, 48)}, 120, 264)
	before, _ := e.NumberOfSamples(buf)

	id, _ := e.LookupExtension("TrackBufferApplyEffect")
	if _, err := e.CallExtension(id, buf, "reverb 0.5,0.7,0.25; delay 250,0.4,0.2,0.3"); err != nil {
		t.Fatalf("apply effect: %v", err)
	}
	if after, _ := e.NumberOfSamples(buf); after != before {
		t.Fatalf("effects changed length %d -> %d", before, after)
	}
	if _, err := e.CallExtension(id, buf, "warble 1"); err == nil {
		t.Fatal("expected error for unknown effect")
	}
}

func TestWithoutBuiltins(t *testing.T) {
	e := newTestEngine(WithoutBuiltins())
	if got := len(e.InstrumentClasses()) + len(e.PercussionClasses()) + len(e.SingerClasses()) + len(e.Extensions()); got != 0 {
		t.Fatalf("registered %d classes, want none", got)
	}
	if _, ok := e.LookupInstrument("PureSin"); ok {
		t.Fatal("PureSin should not be registered")
	}
}

func TestScanExtensionsWithLoader(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, registry.ExtensionsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "probe.ext"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var loaded []string
	probe := func(path string) (registry.Bundle, error) {
		loaded = append(loaded, filepath.Base(path))
		return registry.Bundle{Instruments: []registry.InstrumentClass{{
			Name: "Probe",
			New: func() score.Instrument {
				return instrument.New(instrument.PureSin, instrument.DefaultParams(instrument.PureSin))
			},
		}}}, nil
	}
	e := newTestEngine(WithLoader(".ext", probe))

	n, err := e.ScanExtensions(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 1 || len(loaded) != 1 || loaded[0] != "probe.ext" {
		t.Fatalf("loaded %d bundles from %v, want probe.ext", n, loaded)
	}
	if _, ok := e.LookupInstrument("Probe"); !ok {
		t.Fatal("Probe class not registered after scan")
	}
}

func TestGenerateCode(t *testing.T) {
	e := newTestEngine()
	code, summary, err := e.GenerateCode()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, want := range []string{"def PureSin():", "def FMPiano():", "def Hummer():", "def TrackBufferNormalize(buf, peak=1.0):"} {
		if !strings.Contains(code, want) {
			t.Fatalf("generated code missing %q:\n%s", want, code)
		}
	}
	if !strings.Contains(summary, "BassDrum") {
		t.Fatalf("summary missing BassDrum:\n%s", summary)
	}
}

func TestWriteTrackBufferToWav(t *testing.T) {
	e := newTestEngine()
	buf, _ := e.InitTrackBuffer(2)
	inst := mustInstrument(t, e, "NaivePiano")
	_ = e.InstrumentPlay(buf, inst, Sequence{N(1, 12)}, 120, 264)

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := e.WriteTrackBufferToWav(buf, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() <= 44 {
		t.Fatalf("wav size = %d, want data after the header", fi.Size())
	}
}
