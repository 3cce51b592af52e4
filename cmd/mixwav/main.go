// Command mixwav mixes WAV files into one.
//
// Each input is resampled to 44100 Hz, given its own volume and pan, and
// summed from the start:
//
//	mixwav -o mix.wav drums.wav bass.wav --volume 0.8 --volume 1 --pan 0 --pan -0.3
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/cbegin/scoredraft-go/internal/track"
	"github.com/cbegin/scoredraft-go/internal/wavio"
)

type args struct {
	Inputs      []string  `arg:"positional,required" help:"WAV files to mix"`
	Output      string    `arg:"-o,--output" default:"mix.wav" help:"WAV file to write"`
	Volume      []float64 `arg:"--volume,separate" help:"volume per input, in input order (default 1)"`
	Pan         []float64 `arg:"--pan,separate" help:"pan per input in [-1, 1], stereo only (default 0)"`
	Channels    int       `arg:"-c,--channels" help:"output channels (default: most channels among inputs)"`
	NoNormalize bool      `arg:"--no-normalize" help:"clip instead of scaling down when the mix exceeds full scale"`
	Verbose     bool      `arg:"-v,--verbose" help:"debug logging"`
}

func (args) Description() string {
	return "mixwav sums WAV files into one, each with its own volume and pan.\n"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if len(a.Volume) > len(a.Inputs) || len(a.Pan) > len(a.Inputs) {
		p.Fail("more --volume or --pan values than inputs")
	}

	level := slog.LevelInfo
	if a.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(a, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(a args, logger *slog.Logger) error {
	inputs := make([]*track.Buffer, len(a.Inputs))
	channels := a.Channels
	for i, path := range a.Inputs {
		b, err := wavio.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("mixwav: loaded", "path", path, "channels", b.Channels(), "frames", b.Len())
		inputs[i] = b
		if a.Channels <= 0 {
			channels = max(channels, b.Channels())
		}
	}

	for i := range inputs {
		b, err := conform(inputs[i], channels)
		if err != nil {
			return err
		}
		if i < len(a.Volume) {
			b.SetVolume(a.Volume[i])
		}
		if i < len(a.Pan) {
			b.SetPan(a.Pan[i])
		}
		inputs[i] = b
	}

	mix, err := track.New(channels)
	if err != nil {
		return err
	}
	if err := mix.Combine(inputs...); err != nil {
		return err
	}
	if err := wavio.Write(a.Output, mix, !a.NoNormalize); err != nil {
		return err
	}
	logger.Info("mixwav: wrote", "path", a.Output, "inputs", len(inputs), "frames", mix.Len())
	return nil
}

// conform returns b with the given channel count. Other counts are folded to
// mono and spread over every output channel.
func conform(b *track.Buffer, channels int) (*track.Buffer, error) {
	if b.Channels() == channels {
		return b, nil
	}
	out, err := track.New(channels)
	if err != nil {
		return nil, err
	}
	out.WriteBlend(track.Block{Channels: b.Channels(), Samples: b.Samples(), Span: float64(b.Len())})
	return out, nil
}
