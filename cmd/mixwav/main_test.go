package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/cbegin/scoredraft-go/internal/track"
	"github.com/cbegin/scoredraft-go/internal/wavio"
)

func writeTone(t *testing.T, channels, frames int, v float32) string {
	t.Helper()
	b, err := track.New(channels)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]float32, channels*frames)
	for i := range samples {
		samples[i] = v
	}
	b.WriteBlend(track.Block{Channels: channels, Samples: samples, Span: float64(frames)})
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := wavio.Write(path, b, false); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMixMonoIntoStereo(t *testing.T) {
	mono := writeTone(t, 1, 1000, 0.25)
	stereo := writeTone(t, 2, 500, 0.25)
	out := filepath.Join(t.TempDir(), "mix.wav")

	a := args{Inputs: []string{mono, stereo}, Output: out, Volume: []float64{1, 0.5}}
	if err := run(a, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("run: %v", err)
	}

	mix, err := wavio.Load(out)
	if err != nil {
		t.Fatalf("load mix: %v", err)
	}
	if mix.Channels() != 2 || mix.Len() != 1000 {
		t.Fatalf("mix has %d channels, %d frames; want 2, 1000", mix.Channels(), mix.Len())
	}
	if got := mix.Sample(100, 0); got < 0.37 || got > 0.38 {
		t.Fatalf("overlap sample = %v, want about 0.375", got)
	}
	if got := mix.Sample(800, 1); got < 0.24 || got > 0.26 {
		t.Fatalf("mono-only sample = %v, want about 0.25", got)
	}
}

func TestConformKeepsMatchingBuffer(t *testing.T) {
	b, _ := track.New(2)
	got, err := conform(b, 2)
	if err != nil || got != b {
		t.Fatalf("conform returned a copy for a matching channel count")
	}
}
