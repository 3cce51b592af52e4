package scoredraft

import (
	"errors"
	"fmt"

	"github.com/cbegin/scoredraft-go/internal/fx"
	"github.com/cbegin/scoredraft-go/internal/scorefile"
)

var ErrUnknownClass = errors.New("scoredraft: unknown class")

// RenderSong renders every track of s into its own buffer, mixes them into a
// new master buffer and applies the song's effects to the master. Track
// buffers are released before returning.
//
// A failure that stops a track (unknown class, bad percussion index, bad
// MML phrase or effect spec) releases the master and is returned alone. Skipped elements
// do not stop rendering: the master comes back together with an error
// joining one *PartialError per affected track.
func (e *Engine) RenderSong(s *Song) (BufferID, error) {
	if err := s.Normalize(); err != nil {
		return 0, err
	}
	master, err := e.InitTrackBuffer(s.Channels)
	if err != nil {
		return 0, err
	}
	fail := func(err error) (BufferID, error) {
		_ = e.DelTrackBuffer(master)
		return 0, err
	}

	var (
		tracks  []BufferID
		partial []error
	)
	defer func() {
		for _, id := range tracks {
			_ = e.DelTrackBuffer(id)
		}
	}()
	for i := range s.Tracks {
		t := &s.Tracks[i]
		id, errs, err := e.renderTrack(s, t)
		if err != nil {
			return fail(fmt.Errorf("scoredraft: %s: %w", t.Label(i), err))
		}
		tracks = append(tracks, id)
		for _, pe := range errs {
			partial = append(partial, fmt.Errorf("%s: %w", t.Label(i), pe))
		}
		e.logger.Debug("scoredraft: track rendered", "track", t.Label(i), "buffer", id)
	}

	if err := e.MixTrackBufferList(master, tracks); err != nil {
		return fail(err)
	}
	if s.Effects != "" {
		if _, err := e.applyEffect([]any{master, s.Effects}); err != nil {
			return fail(fmt.Errorf("scoredraft: master effects: %w", err))
		}
	}
	return master, errors.Join(partial...)
}

// renderTrack returns the track's buffer and any non-fatal errors. On a fatal
// error the buffer is already released.
func (e *Engine) renderTrack(s *Song, t *Track) (BufferID, []error, error) {
	var chain fx.Spec
	if t.Effects != "" {
		var err error
		if chain, err = fx.Parse(t.Effects); err != nil {
			return 0, nil, err
		}
	}
	id, err := e.InitTrackBuffer(s.Channels)
	if err != nil {
		return 0, nil, err
	}
	b, _ := e.reg.Buffer(id)
	b.SetVolume(t.Gain())
	b.SetPan(t.Pan)

	seq, issues, err := t.Resolve(s.Tempo)
	if err != nil {
		_ = e.DelTrackBuffer(id)
		return 0, nil, err
	}
	var partial []error
	if len(issues) > 0 {
		partial = append(partial, &PartialError{Issues: issues})
	}
	if err := e.playTrack(id, s, t, seq); err != nil {
		var pe *PartialError
		if !errors.As(err, &pe) {
			_ = e.DelTrackBuffer(id)
			return 0, nil, err
		}
		partial = append(partial, err)
	}
	fx.Apply(b, chain)
	return id, partial, nil
}

func (e *Engine) playTrack(buf BufferID, s *Song, t *Track, seq Sequence) error {
	switch t.Kind() {
	case scorefile.InstrumentTrack:
		class, ok := e.LookupInstrument(t.Instrument)
		if !ok {
			return fmt.Errorf("%w: instrument %q", ErrUnknownClass, t.Instrument)
		}
		inst, err := e.InitInstrument(class)
		if err != nil {
			return err
		}
		defer e.DelInstrument(inst)
		return e.InstrumentPlay(buf, inst, seq, s.Tempo, s.RefFreq)

	case scorefile.PercussionTrack:
		percs := make([]PercussionID, 0, len(t.Percussion))
		defer func() {
			for _, p := range percs {
				_ = e.DelPercussion(p)
			}
		}()
		for _, name := range t.Percussion {
			class, ok := e.LookupPercussion(name)
			if !ok {
				return fmt.Errorf("%w: percussion %q", ErrUnknownClass, name)
			}
			p, err := e.InitPercussion(class)
			if err != nil {
				return err
			}
			percs = append(percs, p)
		}
		return e.PercussionPlay(buf, percs, seq, s.Tempo)

	case scorefile.SingerTrack:
		class, ok := e.LookupSinger(t.Singer)
		if !ok {
			return fmt.Errorf("%w: singer %q", ErrUnknownClass, t.Singer)
		}
		sg, err := e.InitSinger(class)
		if err != nil {
			return err
		}
		defer e.DelSinger(sg)
		return e.Sing(buf, sg, seq, s.Tempo, s.RefFreq)
	}
	return scorefile.ErrTrack
}

// TrackDurations returns the TellDuration of every track of s, in tempo
// units. Malformed elements count as zero.
func TrackDurations(s *Song) ([]int, error) {
	out := make([]int, len(s.Tracks))
	for i := range s.Tracks {
		seq, _, err := s.Tracks[i].Resolve(s.Tempo)
		if err != nil {
			return nil, fmt.Errorf("scoredraft: %s: %w", s.Tracks[i].Label(i), err)
		}
		out[i] = TellDuration(seq)
	}
	return out, nil
}
