package score

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cbegin/scoredraft-go/internal/track"
)

// Decoder walks a Sequence in order and drives one renderer. The zero value
// is ready to use and logs through slog.Default.
//
// Every method renders the whole sequence. Skipped elements come back as a
// *PartialError after the last element; any other error means nothing was
// written.
type Decoder struct {
	Logger *slog.Logger
}

func (d *Decoder) logger() *slog.Logger {
	if d == nil || d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Decoder) skip(issues []Issue, index int, err error) []Issue {
	d.logger().Warn("score: skipped element", "index", index, "err", err)
	return append(issues, Issue{Index: index, Err: err})
}

// Play drives an instrument. Syllables of a vocal group are played as plain
// notes with their lyrics ignored; a rap glide plays one note at Freq1 for
// its duration. Beat steps are skipped.
func (d *Decoder) Play(b *track.Buffer, inst Instrument, seq Sequence, bpm int, refFreq float64) error {
	if b == nil || inst == nil {
		return errors.New("score: play needs a buffer and an instrument")
	}
	var issues []Issue
	for i, el := range seq {
		switch e := el.(type) {
		case Command:
			inst.Tune(string(e))
		case PlainNote:
			inst.PlayNote(b, Note(e), bpm, refFreq)
		case VocalGroup:
			for _, syl := range e {
				switch {
				case len(syl.Notes) > 0:
					for _, n := range syl.Notes {
						inst.PlayNote(b, n, bpm, refFreq)
					}
				case syl.Rap != nil:
					inst.PlayNote(b, Note{FreqRel: syl.Rap.Freq1, Duration: syl.Rap.Duration}, bpm, refFreq)
				default:
					issues = d.skip(issues, i, malformed("syllable %q has no notes", syl.Lyric))
				}
			}
		case BeatCommand:
			issues = d.skip(issues, i, malformed("%s beat in an instrument sequence", e.Kind))
		default:
			issues = d.skip(issues, i, malformed("unsupported element %T", el))
		}
	}
	return partial(issues)
}

// PlayBeats drives a percussion set. Every index is checked against percs
// before the first beat is rendered. Elements other than beat steps are
// skipped.
func (d *Decoder) PlayBeats(b *track.Buffer, percs []Percussion, seq Sequence, bpm int) error {
	if b == nil {
		return errors.New("score: beats need a buffer")
	}
	for i, el := range seq {
		e, ok := el.(BeatCommand)
		if !ok || (e.Kind != BeatPlay && e.Kind != BeatTune) {
			continue
		}
		if e.Index < 0 || e.Index >= len(percs) || percs[e.Index] == nil {
			return fmt.Errorf("%w: element %d uses %d, have %d", ErrPercussionIndex, i, e.Index, len(percs))
		}
	}

	var issues []Issue
	for i, el := range seq {
		e, ok := el.(BeatCommand)
		if !ok {
			issues = d.skip(issues, i, malformed("%T in a beat sequence", el))
			continue
		}
		switch e.Kind {
		case BeatPlay:
			percs[e.Index].PlayBeat(b, e.Duration, bpm)
		case BeatSilence:
			b.Silence(e.Duration, bpm)
		case BeatBackspace:
			b.Backspace(e.Duration, bpm)
		case BeatTune:
			percs[e.Index].Tune(e.Command)
		default:
			issues = d.skip(issues, i, malformed("beat kind %d", e.Kind))
		}
	}
	return partial(issues)
}

// Sing drives a singer. Within one vocal group the sung syllables form one
// SingingSequence and the rapped ones one RapSequence; the singing is
// committed first, then the rap. A sequence of exactly one piece goes to the
// single-piece entry point, longer ones to the consecutive entry point.
// Lyrics are transcoded to the singer's charset; a lyric that cannot be
// encoded drops only its own syllable.
func (d *Decoder) Sing(b *track.Buffer, s Singer, seq Sequence, bpm int, refFreq float64) error {
	if b == nil || s == nil {
		return errors.New("score: sing needs a buffer and a singer")
	}
	var (
		issues []Issue
		enc    lyricEncoder
	)
	for i, el := range seq {
		switch e := el.(type) {
		case Command:
			s.Tune(string(e))
		case PlainNote:
			s.SingPiece(b, SingingPiece{Notes: []Note{Note(e)}}, bpm, refFreq)
		case VocalGroup:
			var (
				sung   SingingSequence
				rapped RapSequence
			)
			charset := s.LyricCharset()
			for _, syl := range e {
				if len(syl.Notes) == 0 && syl.Rap == nil {
					issues = d.skip(issues, i, malformed("syllable %q has no notes", syl.Lyric))
					continue
				}
				lyric, err := enc.encode(charset, syl.Lyric)
				if err != nil {
					issues = d.skip(issues, i, err)
					continue
				}
				if len(syl.Notes) > 0 {
					sung = append(sung, SingingPiece{Lyric: lyric, Notes: syl.Notes})
				} else {
					rapped = append(rapped, RapPiece{
						Lyric:    lyric,
						Duration: syl.Rap.Duration,
						Freq1:    syl.Rap.Freq1,
						Freq2:    syl.Rap.Freq2,
					})
				}
			}
			switch len(sung) {
			case 0:
			case 1:
				s.SingPiece(b, sung[0], bpm, refFreq)
			default:
				s.SingConsecutivePieces(b, sung, bpm, refFreq)
			}
			switch len(rapped) {
			case 0:
			case 1:
				s.RapAPiece(b, rapped[0], bpm, refFreq)
			default:
				s.RapConsecutivePieces(b, rapped, bpm, refFreq)
			}
		case BeatCommand:
			issues = d.skip(issues, i, malformed("%s beat in a vocal sequence", e.Kind))
		default:
			issues = d.skip(issues, i, malformed("unsupported element %T", el))
		}
	}
	return partial(issues)
}
