package score

import "github.com/cbegin/scoredraft-go/internal/track"

// Instrument renders notes into a buffer at its cursor.
type Instrument interface {
	PlayNote(b *track.Buffer, n Note, bpm int, refFreq float64)
	Tune(cmd string)
}

// Percussion renders one beat into a buffer at its cursor. Silences and
// backspaces never reach an instance; they are buffer operations.
type Percussion interface {
	PlayBeat(b *track.Buffer, duration int, bpm int)
	Tune(cmd string)
}

// Singer renders lyrics. Lyrics arrive already encoded in LyricCharset.
type Singer interface {
	SingPiece(b *track.Buffer, piece SingingPiece, bpm int, refFreq float64)
	SingConsecutivePieces(b *track.Buffer, pieces SingingSequence, bpm int, refFreq float64)
	RapAPiece(b *track.Buffer, piece RapPiece, bpm int, refFreq float64)
	RapConsecutivePieces(b *track.Buffer, pieces RapSequence, bpm int, refFreq float64)
	Tune(cmd string)
	LyricCharset() string
}

// PlayRest handles the rest convention shared by instruments and singers: a
// note with a negative FreqRel writes nothing and moves the cursor, forward
// for a non-negative duration and backward otherwise. It reports whether n
// was a rest.
func PlayRest(b *track.Buffer, n Note, bpm int) bool {
	if n.FreqRel >= 0 {
		return false
	}
	if n.Duration >= 0 {
		b.Silence(n.Duration, bpm)
	} else {
		b.Backspace(-n.Duration, bpm)
	}
	return true
}
