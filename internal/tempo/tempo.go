// Package tempo converts relative durations into sample spans.
//
// Durations are counted in tempo units: one beat is UnitsPerBeat units and the
// tempo is given in beats per minute. All buffers share SampleRate.
package tempo

const (
	SampleRate   = 44100
	UnitsPerBeat = 48
)

// Samples returns the span in samples of duration units at the given tempo.
// The result keeps its fractional part; callers own rounding. A non-positive
// tempo yields 0.
func Samples(bpm int, duration int) float64 {
	if bpm <= 0 {
		return 0
	}
	return float64(duration) * 60 * SampleRate / (float64(bpm) * UnitsPerBeat)
}

// Seconds returns the same span in seconds.
func Seconds(bpm int, duration int) float64 {
	return Samples(bpm, duration) / SampleRate
}

// Units is the inverse of Samples: how many tempo units cover n samples.
func Units(bpm int, n float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return n * float64(bpm) * UnitsPerBeat / (60 * SampleRate)
}
