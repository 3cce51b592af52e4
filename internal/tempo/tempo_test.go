package tempo

import (
	"math"
	"testing"
)

func TestSamplesQuarterNoteAt120(t *testing.T) {
	// One beat at 120 BPM lasts half a second.
	if got := Samples(120, UnitsPerBeat); got != SampleRate/2 {
		t.Fatalf("Samples(120, 48) = %v, want %v", got, SampleRate/2)
	}
}

func TestSamplesTable(t *testing.T) {
	cases := []struct {
		bpm, dur int
		want     float64
	}{
		{60, 48, 44100},
		{120, 24, 11025},
		{90, 48, 29400},
		{120, 0, 0},
		{120, -48, -22050},
		{0, 48, 0},
	}
	for _, tc := range cases {
		if got := Samples(tc.bpm, tc.dur); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Samples(%d, %d) = %v, want %v", tc.bpm, tc.dur, got, tc.want)
		}
	}
}

func TestUnitsInvertsSamples(t *testing.T) {
	for _, dur := range []int{1, 7, 48, 192} {
		n := Samples(133, dur)
		if got := Units(133, n); math.Abs(got-float64(dur)) > 1e-9 {
			t.Fatalf("Units(Samples(%d)) = %v", dur, got)
		}
	}
	if got := Seconds(60, 48); got != 1 {
		t.Fatalf("Seconds(60, 48) = %v, want 1", got)
	}
}
