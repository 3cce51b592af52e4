package fm

import (
	"fmt"
	"math"
	"testing"

	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

func play(t *testing.T, f *FM, channels int) *track.Buffer {
	t.Helper()
	b, err := track.New(channels)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	f.PlayNote(b, score.Note{FreqRel: 1, Duration: 48}, 120, 440)
	return b
}

func energy(samples []float32) float64 {
	var e float64
	for _, s := range samples {
		e += math.Abs(float64(s))
	}
	return e
}

func TestPresetsProduceAudio(t *testing.T) {
	for _, c := range Classes() {
		f := c.New().(*FM)
		b := play(t, f, 1)
		if b.Cursor() != tempo.Samples(120, 48) {
			t.Fatalf("%s: cursor = %v", c.Name, b.Cursor())
		}
		if energy(b.Samples()) == 0 {
			t.Fatalf("%s: silent note", c.Name)
		}
		if p := b.Peak(); p > 1 {
			t.Fatalf("%s: peak %v", c.Name, p)
		}
	}
}

func TestReleaseTail(t *testing.T) {
	f := New("bass", bassParams())
	b := play(t, f, 1)
	body := int(tempo.Samples(120, 48))
	limit := body + int(math.Ceil(0.06*tempo.SampleRate))
	if b.Len() <= body || b.Len() > limit {
		t.Fatalf("len = %d, want in (%d, %d]", b.Len(), body, limit)
	}
}

func TestRestMovesCursorOnly(t *testing.T) {
	f := New("piano", pianoParams())
	b, _ := track.New(1)
	f.PlayNote(b, score.Note{FreqRel: -1, Duration: 48}, 120, 440)
	if b.Cursor() != 22050 || energy(b.Samples()) != 0 {
		t.Fatalf("rest: cursor=%v energy=%v", b.Cursor(), energy(b.Samples()))
	}
}

func TestAlgorithms(t *testing.T) {
	for _, tc := range []struct {
		ops, alg int
	}{
		{1, 0},
		{2, 0}, {2, 1},
		{3, 0}, {3, 1}, {3, 2}, {3, 3},
		{4, 0}, {4, 1}, {4, 2}, {4, 3}, {4, 4}, {4, 5},
	} {
		t.Run(fmt.Sprintf("%d-op alg %d", tc.ops, tc.alg), func(t *testing.T) {
			f := New("piano", pianoParams())
			f.Tune(fmt.Sprintf("ops %d", tc.ops))
			f.Tune(fmt.Sprintf("alg %d", tc.alg))
			if energy(play(t, f, 1).Samples()) < 1 {
				t.Fatal("expected output")
			}
		})
	}
}

func TestWaveforms(t *testing.T) {
	for w := Sine; w <= Noise; w++ {
		f := New("organ", organParams())
		f.Tune(fmt.Sprintf("wave %d", w))
		if f.Params().Waveform != w {
			t.Fatalf("waveform = %d, want %d", f.Params().Waveform, w)
		}
		if energy(play(t, f, 1).Samples()) < 1 {
			t.Fatalf("waveform %d produced no output", w)
		}
	}
}

func TestFeedbackChangesOutput(t *testing.T) {
	render := func(fb string) float64 {
		f := New("bass", bassParams())
		f.Tune(fb)
		return energy(play(t, f, 1).Samples())
	}
	if render("fb 0") == render("fb 0.7") {
		t.Fatal("feedback should change the output")
	}
}

func TestPanOnStereoBuffer(t *testing.T) {
	f := New("bell", bellParams())
	f.Tune("pan -1")
	b := play(t, f, 2)
	var left, right float64
	b.EachFrame(func(fr []float32) {
		left += math.Abs(float64(fr[0]))
		right += math.Abs(float64(fr[1]))
	})
	if right != 0 || left == 0 {
		t.Fatalf("hard left pan: left=%v right=%v", left, right)
	}
}

func TestTune(t *testing.T) {
	f := New("piano", pianoParams())
	f.Tune("volume 0.5")
	f.Tune("index 3")
	f.Tune("fb 2")
	f.Tune("mul 1, 7")
	f.Tune("level 2 0.25")
	f.Tune("mul 9 1")
	f.Tune("adsr 0.01 0.2 0.5 0.3")
	f.Tune("alg 12")
	f.Tune("bogus 1")

	p := f.Params()
	if p.Volume != 0.5 || p.ModIndex != 3 || p.Feedback != 1 || p.Algorithm != 5 {
		t.Fatalf("params = %+v", p)
	}
	if p.Ops[1].Mul != 7 || p.Ops[2].Level != 0.25 {
		t.Fatalf("operators = %+v", p.Ops)
	}
	for i, o := range p.Ops {
		if o.AttackSec != 0.01 || o.Sustain != 0.5 || o.ReleaseSec != 0.3 {
			t.Fatalf("op %d envelope = %+v", i, o)
		}
	}
}

func TestParseOPM(t *testing.T) {
	data := []int{4, 7}
	for i := 0; i < 4; i++ {
		//            AR  D1R D2R RR D1L TL  KS MUL DT1 DT2 AMS
		data = append(data, 31, 10, 0, 15, 0, 0, 0, i, 0, 0, 0)
	}
	p, ok := ParseOPM(data)
	if !ok {
		t.Fatal("expected a patch")
	}
	if p.Operators != 4 || p.Algorithm != 3 || p.Feedback != 1 {
		t.Fatalf("patch = %+v", p)
	}
	if p.Ops[0].Mul != 0.5 || p.Ops[3].Mul != 3 || p.Ops[0].Level != 1 || p.Ops[0].Sustain != 1 {
		t.Fatalf("operators = %+v", p.Ops)
	}
	if _, ok := ParseOPM(data[:10]); ok {
		t.Fatal("short data should be rejected")
	}

	f := New("piano", pianoParams())
	f.Tune("volume 0.7")
	args := ""
	for _, d := range data {
		args += fmt.Sprintf(" %d", d)
	}
	f.Tune("opm" + args)
	if got := f.Params(); got.Algorithm != 3 || got.Volume != 0.7 {
		t.Fatalf("tuned patch = %+v", got)
	}
}
