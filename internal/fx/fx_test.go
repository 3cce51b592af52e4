package fx

import (
	"errors"
	"math"
	"testing"

	"github.com/cbegin/scoredraft-go/internal/track"
)

func TestDelayEchoesImpulse(t *testing.T) {
	d := NewDelay(44100, 100, 0.5, 0, 0.5)
	d.Process(1, 1)
	for i := 0; i < 4409; i++ {
		d.Process(0, 0)
	}
	l, r := d.Process(0, 0)
	if l != 0.5 || r != 0.5 {
		t.Fatalf("echo after 100ms: l=%f r=%f, want 0.5", l, r)
	}
}

func TestReverbTail(t *testing.T) {
	r := NewReverb(44100, 0.5, 0.7, 0.5)
	r.Process(1, 1)
	var peak float32
	for i := 0; i < 10000; i++ {
		l, _ := r.Process(0, 0)
		peak = max(peak, float32(math.Abs(float64(l))))
	}
	if peak < 0.001 {
		t.Fatal("expected a reverb tail")
	}
	r.Reset()
	if l, _ := r.Process(0, 0); l != 0 {
		t.Fatalf("reset reverb still rings: %f", l)
	}
}

func TestChorusIsBounded(t *testing.T) {
	c := NewChorus(44100, 15, 0.3, 3, 1.5, 0.4)
	for i := 0; i < 5000; i++ {
		x := float32(math.Sin(float64(i) * 0.05))
		l, r := c.Process(x, x)
		if math.Abs(float64(l)) > 2 || math.Abs(float64(r)) > 2 {
			t.Fatalf("chorus blew up at %d: %f %f", i, l, r)
		}
	}
}

func TestDistortionBounded(t *testing.T) {
	d := NewDistortion(44100, 10, 0.5, 0)
	l, _ := d.Process(0.5, 0.5)
	if l > 0.5 || l < 0.49 {
		t.Fatalf("saturated output = %f, want just under 0.5", l)
	}
}

func TestEQUnityIsTransparent(t *testing.T) {
	for _, eq := range []*EQ{NewEQ3(44100, 1, 1, 1, 300, 3000), NewEQ5(44100, [5]float32{1, 1, 1, 1, 1})} {
		for i := 0; i < 100; i++ {
			x := float32(math.Sin(float64(i) * 0.3))
			l, r := eq.Process(x, -x)
			if math.Abs(float64(l-x)) > 1e-5 || math.Abs(float64(r+x)) > 1e-5 {
				t.Fatalf("unity EQ changed %f into %f/%f", x, l, r)
			}
		}
	}
}

func TestEQCutsLows(t *testing.T) {
	eq := NewEQ3(44100, 0, 1, 1, 300, 3000)
	var l float32
	for i := 0; i < 2000; i++ {
		l, _ = eq.Process(0.5, 0.5)
	}
	if math.Abs(float64(l)) > 0.01 {
		t.Fatalf("DC should be removed with low gain 0, got %f", l)
	}
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(44100, -10, 4, 1, 50, 0)
	var out float32
	for i := 0; i < 1000; i++ {
		out, _ = c.Process(1, 1)
	}
	if out >= 1 {
		t.Fatalf("compressor should reduce loud signals, got %f", out)
	}
}

func TestParse(t *testing.T) {
	spec, err := Parse("reverb 0.4, 0.6; {delay 100}\ncomp")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(spec) != 3 || spec[0].Name != "reverb" || spec[1].Name != "delay" || spec[2].Name != "compressor" {
		t.Fatalf("spec = %v", spec)
	}
	if spec[0].Params[0] != 0.4 || spec[0].Params[2] != 0.25 {
		t.Fatalf("reverb params = %v", spec[0].Params)
	}
	if spec[1].Params[0] != 100 || spec[1].Params[1] != 0.4 {
		t.Fatalf("delay params = %v", spec[1].Params)
	}
	if got := spec.String(); got != "reverb 0.4,0.6,0.25; delay 100,0.4,0.2,0.3; compressor -20,4,5,100,6" {
		t.Fatalf("String() = %q", got)
	}

	if _, err := Parse("flanger 1"); !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("unknown effect error = %v", err)
	}
	if _, err := Parse("reverb 1,2,3,4"); err == nil {
		t.Fatal("expected too many parameters to fail")
	}
	if _, err := Parse("delay fast"); err == nil {
		t.Fatal("expected a bad number to fail")
	}
	if spec, err := Parse("  ;  "); err != nil || len(spec) != 0 {
		t.Fatalf("blank spec = %v, %v", spec, err)
	}
}

func TestApplyKeepsShape(t *testing.T) {
	for _, channels := range []int{1, 2, 3} {
		b, err := track.New(channels)
		if err != nil {
			t.Fatalf("new buffer: %v", err)
		}
		block := make([]float32, 1000*channels)
		block[0] = 1
		b.WriteBlend(track.Block{Channels: channels, Samples: block, Span: 500})

		spec, err := Parse("delay 10,0,0,1")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		Apply(b, spec)
		if b.Len() != 1000 || b.Cursor() != 500 {
			t.Fatalf("%d channels: len=%d cursor=%v", channels, b.Len(), b.Cursor())
		}
		if got := b.Sample(441, 0); got != 1 {
			t.Fatalf("%d channels: echo at 10ms = %f", channels, got)
		}
		if got := b.Sample(0, 0); got != 0 {
			t.Fatalf("%d channels: fully wet output kept the dry impulse: %f", channels, got)
		}
	}
}
