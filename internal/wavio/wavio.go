// Package wavio reads and writes track buffers as WAV files.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/faiface/beep"
	beepwav "github.com/faiface/beep/wav"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/scoredraft-go/internal/tempo"
	"github.com/cbegin/scoredraft-go/internal/track"
)

const bitDepth = 16

// resampleQuality is the beep resampler quality used when loading files
// recorded at another rate.
const resampleQuality = 4

// Write stores b as 16-bit PCM at the buffer's sample rate and channel count.
func Write(path string, b *track.Buffer, normalize bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, b, normalize); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes b to w. Samples are scaled by the buffer's volume and pan.
// With normalize set, output whose peak exceeds 1 is scaled down to fit;
// otherwise it is clipped.
func Encode(w io.WriteSeeker, b *track.Buffer, normalize bool) error {
	n := b.Channels()
	gains := b.Gains()
	src := b.Samples()

	scaled := make([]float64, len(src))
	var peak float64
	for i, s := range src {
		v := float64(s) * float64(gains[i%n])
		scaled[i] = v
		peak = math.Max(peak, math.Abs(v))
	}
	k := 1.0
	if normalize && peak > 1 {
		k = 1 / peak
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: n,
			SampleRate:  b.SampleRate(),
		},
		Data:           make([]int, len(scaled)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range scaled {
		v = math.Max(-1, math.Min(1, v*k))
		buf.Data[i] = int(math.Round(v * math.MaxInt16))
	}

	enc := wav.NewEncoder(w, b.SampleRate(), bitDepth, n, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	return enc.Close()
}

// Load reads a WAV file into a new buffer with the file's channel count,
// resampled to the tempo sample rate. The cursor ends after the last frame.
func Load(path string) (*track.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode is Load for an already opened stream.
func Decode(r io.Reader) (*track.Buffer, error) {
	stream, format, err := beepwav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("wavio: decode: %w", err)
	}
	defer stream.Close()

	channels := format.NumChannels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("wavio: %d channels not supported", channels)
	}

	var src beep.Streamer = stream
	if rate := beep.SampleRate(tempo.SampleRate); format.SampleRate != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, rate, stream)
	}

	var samples []float32
	chunk := make([][2]float64, 512)
	for {
		n, ok := src.Stream(chunk)
		for _, frame := range chunk[:n] {
			samples = append(samples, float32(frame[0]))
			if channels == 2 {
				samples = append(samples, float32(frame[1]))
			}
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("wavio: decode: %w", err)
	}

	b, err := track.New(channels)
	if err != nil {
		return nil, err
	}
	frames := len(samples) / channels
	b.WriteBlend(track.Block{Channels: channels, Samples: samples, Span: float64(frames)})
	return b, nil
}

// LoadMono reads a WAV file as mono samples at the tempo sample rate.
// Stereo files are averaged.
func LoadMono(path string) ([]float32, error) {
	b, err := Load(path)
	if err != nil {
		return nil, err
	}
	if b.Len() == 0 {
		return nil, errors.New("wavio: empty file")
	}
	out := make([]float32, 0, b.Len())
	b.EachFrame(func(frame []float32) {
		var sum float32
		for _, s := range frame {
			sum += s
		}
		out = append(out, sum/float32(len(frame)))
	})
	return out, nil
}
