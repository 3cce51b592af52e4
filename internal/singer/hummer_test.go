package singer

import (
	"math"
	"testing"

	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

func newBuffer(t *testing.T, channels int) *track.Buffer {
	t.Helper()
	b, err := track.New(channels)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	return b
}

func TestPhraseAdvancesBySummedSpan(t *testing.T) {
	h := New(DefaultParams())
	b := newBuffer(t, 1)
	h.SingConsecutivePieces(b, score.SingingSequence{
		{Lyric: "la", Notes: []score.Note{{FreqRel: 1, Duration: 24}, {FreqRel: 1.25, Duration: 24}}},
		{Lyric: "li", Notes: []score.Note{{FreqRel: 1.5, Duration: 12}}},
	}, 120, 264)

	want := tempo.Samples(120, 60)
	if math.Abs(b.Cursor()-want) > 1e-9 {
		t.Fatalf("cursor = %v, want %v", b.Cursor(), want)
	}
	if b.Peak() == 0 {
		t.Fatal("phrase is silent")
	}
}

func TestRestInsidePhrase(t *testing.T) {
	h := New(DefaultParams())
	b := newBuffer(t, 1)
	h.SingPiece(b, score.SingingPiece{Lyric: "a", Notes: []score.Note{
		{FreqRel: 1, Duration: 24},
		{FreqRel: -1, Duration: 24},
		{FreqRel: 1, Duration: 24},
	}}, 120, 264)
	if want := tempo.Samples(120, 72); b.Cursor() != want {
		t.Fatalf("cursor = %v, want %v", b.Cursor(), want)
	}
	// Middle of the rest is past the first fade-out.
	if s := b.Sample(int(tempo.Samples(120, 36)), 0); s != 0 {
		t.Fatalf("rest is not silent: %v", s)
	}
}

func TestRapGlideAndScale(t *testing.T) {
	h := New(DefaultParams())
	h.Tune("rap_freq 2")
	b := newBuffer(t, 1)
	h.RapConsecutivePieces(b, score.RapSequence{
		{Lyric: "yo", Duration: 24, Freq1: 1, Freq2: 0.5},
		{Lyric: "ho", Duration: 24, Freq1: 0.5, Freq2: 0.5},
	}, 120, 200)
	if want := tempo.Samples(120, 48); b.Cursor() != want {
		t.Fatalf("cursor = %v, want %v", b.Cursor(), want)
	}

	b = newBuffer(t, 1)
	h.RapAPiece(b, score.RapPiece{Lyric: "x", Duration: -24, Freq1: -1}, 120, 200)
	if b.Cursor() != 0 || b.Len() != 0 {
		t.Fatalf("backspace rap on empty buffer: cursor=%v len=%d", b.Cursor(), b.Len())
	}
}

func TestTune(t *testing.T) {
	h := New(DefaultParams())
	if h.LyricCharset() != "utf-8" {
		t.Fatalf("default charset = %q", h.LyricCharset())
	}
	h.Tune("charset gbk")
	h.Tune("volume 0.5")
	h.Tune("pan 0.3")
	h.Tune("rap_freq -1")
	p := h.Params()
	if p.Charset != "gbk" || h.LyricCharset() != "gbk" || p.Volume != 0.5 || p.Pan != 0.3 || p.RapFreq != 1 {
		t.Fatalf("params = %+v", p)
	}
}

func TestFormant(t *testing.T) {
	if formant("la") != vowels['a'] || formant("SHOW") != vowels['o'] {
		t.Fatal("unexpected vowel weights")
	}
	if formant("mm") != hum || formant("\xd6\xd0") != hum {
		t.Fatal("vowel-less lyrics should hum")
	}
}

func TestEmptyPhraseWritesNothing(t *testing.T) {
	h := New(DefaultParams())
	b := newBuffer(t, 2)
	h.SingConsecutivePieces(b, nil, 120, 264)
	if b.Len() != 0 || b.Cursor() != 0 {
		t.Fatalf("len=%d cursor=%v", b.Len(), b.Cursor())
	}
}
