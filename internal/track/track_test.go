package track

import (
	"errors"
	"math"
	"testing"

	"github.com/cbegin/scoredraft-go/internal/tempo"
)

func mustNew(t *testing.T, channels int) *Buffer {
	t.Helper()
	b, err := New(channels)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	return b
}

func TestNewBufferDefaults(t *testing.T) {
	b := mustNew(t, 2)
	if b.SampleRate() != 44100 || b.Channels() != 2 || b.Len() != 0 {
		t.Fatalf("unexpected buffer shape: rate=%d ch=%d len=%d", b.SampleRate(), b.Channels(), b.Len())
	}
	if b.Cursor() != 0 || b.Volume() != 1 || b.Pan() != 0 {
		t.Fatalf("unexpected defaults: cursor=%v volume=%v pan=%v", b.Cursor(), b.Volume(), b.Pan())
	}
	if _, err := New(0); !errors.Is(err, ErrChannels) {
		t.Fatalf("New(0) error = %v, want ErrChannels", err)
	}
}

func TestVolumePanRoundTrip(t *testing.T) {
	b := mustNew(t, 2)
	for _, v := range []float64{0, 0.25, 1, 1.7} {
		b.SetVolume(v)
		if got := b.Volume(); got != v {
			t.Fatalf("volume = %v, want %v", got, v)
		}
	}
	for _, p := range []float64{-1, -0.3, 0, 0.5, 1} {
		b.SetPan(p)
		if got := b.Pan(); got != p {
			t.Fatalf("pan = %v, want %v", got, p)
		}
	}
	b.SetPan(3)
	if got := b.Pan(); got != 1 {
		t.Fatalf("pan should clamp to 1, got %v", got)
	}
}

func TestSilenceExtendsEmptyBuffer(t *testing.T) {
	b := mustNew(t, 1)
	b.Silence(48, 120)
	want := tempo.Samples(120, 48)
	if got := b.Len(); float64(got) != want {
		t.Fatalf("len after silence = %d, want %v", got, want)
	}
	if b.Cursor() != want {
		t.Fatalf("cursor = %v, want %v", b.Cursor(), want)
	}
	for i := 0; i < b.Len(); i++ {
		if b.Sample(i, 0) != 0 {
			t.Fatalf("silence wrote non-zero sample at %d", i)
		}
	}
}

func TestBackspaceClampsAtZero(t *testing.T) {
	b := mustNew(t, 2)
	b.Silence(96, 120)
	n := b.Len()
	for i := 0; i < 5; i++ {
		b.Backspace(48, 120)
		if b.Cursor() < 0 {
			t.Fatalf("cursor went negative: %v", b.Cursor())
		}
		if b.Len() != n {
			t.Fatalf("backspace changed length: %d -> %d", n, b.Len())
		}
	}
	if b.Cursor() != 0 {
		t.Fatalf("cursor = %v, want 0", b.Cursor())
	}
}

func TestWriteBlendAdvancesAndOverdubs(t *testing.T) {
	b := mustNew(t, 1)
	b.WriteBlend(Mono([]float32{1, 1, 1, 1}, 2))
	if b.Cursor() != 2 || b.Len() != 4 {
		t.Fatalf("cursor=%v len=%d, want 2 and 4", b.Cursor(), b.Len())
	}
	b.WriteBlend(Mono([]float32{0.5, 0.5, 0.5, 0.5}, 4))
	want := []float32{1, 1, 1.5, 1.5, 0.5, 0.5}
	for i, w := range want {
		if got := b.Sample(i, 0); got != w {
			t.Fatalf("sample %d = %v, want %v", i, got, w)
		}
	}
	b.SetCursor(0)
	b.WriteBlend(Mono([]float32{1}, 1))
	if got := b.Sample(0, 0); got != 2 {
		t.Fatalf("overdub at 0 = %v, want 2", got)
	}
}

func TestVolumeAndPanApplyOnceAtCombine(t *testing.T) {
	src := mustNew(t, 2)
	src.SetVolume(0.5)
	src.SetPan(0.5)
	src.WriteBlend(Mono([]float32{1, 1, 1, 1}, 4))
	if l, r := src.Sample(0, 0), src.Sample(0, 1); l != 1 || r != 1 {
		t.Fatalf("stored l=%v r=%v, want unscaled 1 and 1", l, r)
	}

	dst := mustNew(t, 2)
	if err := dst.Combine(src); err != nil {
		t.Fatalf("combine: %v", err)
	}
	l, r := dst.Sample(0, 0), dst.Sample(0, 1)
	if math.Abs(float64(l)-0.25) > 1e-6 || math.Abs(float64(r)-0.5) > 1e-6 {
		t.Fatalf("mixed l=%v r=%v, want 0.25 and 0.5", l, r)
	}
}

func TestSetCursorClampsToLength(t *testing.T) {
	b := mustNew(t, 2)
	b.SetCursor(44100 * 60)
	if b.Cursor() != 0 || b.Len() != 0 {
		t.Fatalf("empty buffer: cursor=%v len=%d, want 0 and 0", b.Cursor(), b.Len())
	}

	b.Silence(48, 120)
	n := b.Len()
	b.MoveCursor(1e9)
	if b.Cursor() != float64(n) || b.Len() != n {
		t.Fatalf("cursor=%v len=%d, want %d and %d", b.Cursor(), b.Len(), n, n)
	}
	b.SetCursor(100)
	for _, pos := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		b.SetCursor(pos)
		b.MoveCursor(pos)
		if b.Cursor() != 100 {
			t.Fatalf("SetCursor(%v) moved cursor to %v", pos, b.Cursor())
		}
	}
	b.WriteBlend(Mono([]float32{1}, 1))
	if b.Sample(100, 0) != 1 || b.Cursor() != 101 {
		t.Fatalf("write after rejected positions: sample=%v cursor=%v", b.Sample(100, 0), b.Cursor())
	}
}

func TestWriteBlendGrowsToSpan(t *testing.T) {
	b := mustNew(t, 1)
	b.WriteBlend(Mono([]float32{1}, 4))
	if b.Cursor() != 4 || b.Len() != 4 {
		t.Fatalf("cursor=%v len=%d, want 4 and 4", b.Cursor(), b.Len())
	}
}

func TestWriteBlendFoldsStereoIntoMono(t *testing.T) {
	b := mustNew(t, 1)
	b.WriteBlend(Block{Channels: 2, Samples: []float32{1, 0, 0.5, 0.5}, Span: 2})
	if b.Sample(0, 0) != 0.5 || b.Sample(1, 0) != 0.5 {
		t.Fatalf("folded samples = %v, %v", b.Sample(0, 0), b.Sample(1, 0))
	}
}

func fill(t *testing.T, channels int, samples []float32) *Buffer {
	t.Helper()
	b := mustNew(t, channels)
	b.WriteBlend(Block{Channels: channels, Samples: samples, Span: float64(len(samples) / channels)})
	return b
}

func TestCombineIsAdditiveAndCommutative(t *testing.T) {
	a := fill(t, 2, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	a.SetVolume(0.8)
	a.SetPan(-0.5)
	c := fill(t, 2, []float32{1, -1})
	c.SetVolume(0.5)

	ab := mustNew(t, 2)
	if err := ab.Combine(a, c); err != nil {
		t.Fatalf("combine: %v", err)
	}
	ba := mustNew(t, 2)
	if err := ba.Combine(c, a); err != nil {
		t.Fatalf("combine: %v", err)
	}
	if ab.Len() != 3 || ba.Len() != 3 {
		t.Fatalf("len = %d/%d, want 3", ab.Len(), ba.Len())
	}
	ga, gc := a.Gains(), c.Gains()
	for f := 0; f < 3; f++ {
		for ch := 0; ch < 2; ch++ {
			want := a.Sample(f, ch)*ga[ch] + c.Sample(f, ch)*gc[ch]
			if math.Abs(float64(ab.Sample(f, ch)-want)) > 1e-6 {
				t.Fatalf("ab[%d][%d] = %v, want %v", f, ch, ab.Sample(f, ch), want)
			}
			if math.Abs(float64(ab.Sample(f, ch)-ba.Sample(f, ch))) > 1e-6 {
				t.Fatalf("combine not commutative at %d/%d", f, ch)
			}
		}
	}
	if ab.Cursor() != 0 {
		t.Fatalf("combine moved target cursor to %v", ab.Cursor())
	}
}

func TestCombinePreservesTargetContents(t *testing.T) {
	target := fill(t, 1, []float32{1, 1, 1, 1})
	src := fill(t, 1, []float32{0.5, 0.5})
	if err := target.Combine(src); err != nil {
		t.Fatalf("combine: %v", err)
	}
	want := []float32{1.5, 1.5, 1, 1}
	for i, w := range want {
		if got := target.Sample(i, 0); got != w {
			t.Fatalf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestCombineRejectsChannelMismatch(t *testing.T) {
	target := fill(t, 2, []float32{1, 1})
	good := fill(t, 2, []float32{1, 1})
	bad := fill(t, 1, []float32{1})
	err := target.Combine(good, bad)
	if !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("combine error = %v, want ErrChannelMismatch", err)
	}
	if target.Sample(0, 0) != 1 {
		t.Fatalf("target modified after rejected combine: %v", target.Sample(0, 0))
	}
}

func TestCombineWithItself(t *testing.T) {
	b := fill(t, 1, []float32{0.25, 0.5})
	if err := b.Combine(b); err != nil {
		t.Fatalf("combine: %v", err)
	}
	if b.Sample(0, 0) != 0.5 || b.Sample(1, 0) != 1 {
		t.Fatalf("self combine = %v, %v", b.Sample(0, 0), b.Sample(1, 0))
	}
}

func TestPannedBlock(t *testing.T) {
	k := Panned([]float32{1, 0.5}, 2, 2, 0.5)
	if k.Channels != 2 || k.Frames() != 2 {
		t.Fatalf("panned block shape: ch=%d frames=%d", k.Channels, k.Frames())
	}
	want := []float32{0.5, 1, 0.25, 0.5}
	for i, w := range want {
		if k.Samples[i] != w {
			t.Fatalf("sample %d = %v, want %v", i, k.Samples[i], w)
		}
	}
	if m := Panned([]float32{1}, 1, 1, 0.5); m.Channels != 1 {
		t.Fatalf("mono target should get a mono block")
	}
}
