// Package scoredraft renders declarative scores into track buffers.
//
// An Engine owns a registry of renderer classes (instruments, percussion,
// singers), the live objects created from them and the track buffers they
// write into. Every object is addressed by a typed handle; a released or
// unknown handle makes the call fail with ErrInvalidHandle.
//
// Scores are Sequences of Elements. Parse turns the loosely typed form found
// in song documents ([]any of strings, numbers and nested lists) into a
// Sequence.
package scoredraft

import (
	"github.com/cbegin/scoredraft-go/internal/registry"
	"github.com/cbegin/scoredraft-go/internal/score"
	"github.com/cbegin/scoredraft-go/internal/scorefile"
	"github.com/cbegin/scoredraft-go/internal/track"
)

type (
	BufferID     = registry.BufferID
	InstrumentID = registry.InstrumentID
	PercussionID = registry.PercussionID
	SingerID     = registry.SingerID

	Note         = score.Note
	Element      = score.Element
	Sequence     = score.Sequence
	Command      = score.Command
	PlainNote    = score.PlainNote
	VocalGroup   = score.VocalGroup
	Syllable     = score.Syllable
	BeatCommand  = score.BeatCommand
	Issue        = score.Issue
	PartialError = score.PartialError

	Song  = scorefile.Song
	Track = scorefile.Track
)

var (
	ErrInvalidHandle   = registry.ErrInvalidHandle
	ErrChannelMismatch = track.ErrChannelMismatch
	ErrMalformed       = score.ErrMalformed
	ErrCharset         = score.ErrCharset
	ErrPercussionIndex = score.ErrPercussionIndex
)

// Element constructors.
var (
	N        = score.N
	Sung     = score.Sung
	Rapped   = score.Rapped
	Beat     = score.Beat
	TuneBeat = score.TuneBeat
)

// Parse converts a raw score into a Sequence. Elements that match no shape
// are left out and reported through a *PartialError; the returned Sequence
// is usable either way.
func Parse(raw []any) (Sequence, error) {
	seq, issues := score.Parse(raw)
	if len(issues) > 0 {
		return seq, &score.PartialError{Issues: issues}
	}
	return seq, nil
}

// TellDuration returns the total length of seq in tempo units without
// rendering it.
func TellDuration(seq Sequence) int {
	return score.TellDuration(seq)
}

// ReadSong loads a song document; the format follows the file suffix.
func ReadSong(path string) (*Song, error) {
	return scorefile.Read(path)
}
