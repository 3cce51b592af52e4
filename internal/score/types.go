// Package score decodes score sequences into musical events and dispatches
// them to renderers.
//
// A Sequence is an ordered list of Elements. Each Element is one of Command,
// PlainNote, VocalGroup or BeatCommand; Parse builds them from loosely typed
// values (decoded YAML, JSON or MessagePack) by looking at the shape of each
// value, and the Decoder walks them in order against an Instrument, a set of
// Percussions or a Singer.
package score

// Note is one pitched event. FreqRel multiplies the caller's reference
// frequency; Duration is in tempo units and may be negative (see PlayRest).
type Note struct {
	FreqRel  float64
	Duration int
}

// SingingPiece is one lyric sung over one or more notes.
type SingingPiece struct {
	Lyric string
	Notes []Note
}

type SingingSequence []SingingPiece

// RapPiece is a spoken syllable gliding from Freq1 to Freq2.
type RapPiece struct {
	Lyric    string
	Duration int
	Freq1    float64
	Freq2    float64
}

type RapSequence []RapPiece

type BeatKind int

const (
	BeatPlay BeatKind = iota + 1
	BeatSilence
	BeatBackspace
	BeatTune
)

func (k BeatKind) String() string {
	switch k {
	case BeatPlay:
		return "play"
	case BeatSilence:
		return "silence"
	case BeatBackspace:
		return "backspace"
	case BeatTune:
		return "tune"
	}
	return "unknown"
}

// BeatCommand is one step of a percussion timeline. Index selects a
// percussion from the list passed to the call and is only meaningful for
// BeatPlay and BeatTune. Duration is a non-negative magnitude for every
// kind; a backspace rewinds by Duration.
type BeatCommand struct {
	Kind     BeatKind
	Index    int
	Duration int
	Command  string
}

func (BeatCommand) element() {}

// Element is one entry of a score sequence.
type Element interface {
	element()
}

// Command is a tuning directive for the active renderer.
type Command string

func (Command) element() {}

// PlainNote is a lyric-less (relative frequency, duration) pair.
type PlainNote Note

func (PlainNote) element() {}

// Glide is the payload of a rapped syllable.
type Glide struct {
	Duration int
	Freq1    float64
	Freq2    float64
}

// Syllable pairs a lyric with either sung notes (more than one is a melisma)
// or a rap glide.
type Syllable struct {
	Lyric string
	Notes []Note
	Rap   *Glide
}

// VocalGroup is a run of syllables decoded as one element.
type VocalGroup []Syllable

func (VocalGroup) element() {}

type Sequence []Element

// N builds a PlainNote.
func N(freqRel float64, duration int) PlainNote {
	return PlainNote{FreqRel: freqRel, Duration: duration}
}

// Sung builds a sung syllable from (freqRel, duration) notes.
func Sung(lyric string, notes ...Note) Syllable {
	return Syllable{Lyric: lyric, Notes: notes}
}

// Rapped builds a rapped syllable.
func Rapped(lyric string, duration int, freq1, freq2 float64) Syllable {
	return Syllable{Lyric: lyric, Rap: &Glide{Duration: duration, Freq1: freq1, Freq2: freq2}}
}

// Beat builds a beat step from the compact (index, duration) encoding: a
// non-negative index plays that percussion; a negative index is a silence
// when duration >= 0 and a backspace of -duration otherwise.
func Beat(index, duration int) BeatCommand {
	switch {
	case index >= 0:
		return BeatCommand{Kind: BeatPlay, Index: index, Duration: duration}
	case duration >= 0:
		return BeatCommand{Kind: BeatSilence, Index: index, Duration: duration}
	default:
		return BeatCommand{Kind: BeatBackspace, Index: index, Duration: -duration}
	}
}

// TuneBeat builds a tuning step addressed to one percussion.
func TuneBeat(index int, cmd string) BeatCommand {
	return BeatCommand{Kind: BeatTune, Index: index, Command: cmd}
}
