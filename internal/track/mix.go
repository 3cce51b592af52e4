package track

import "fmt"

// Combine sums every source into b starting at frame 0, each scaled by its
// own volume and pan. b grows to the longest source and keeps its previous
// contents. Every source is checked before anything is written, so a channel
// mismatch leaves b untouched. The cursor of b does not move.
func (b *Buffer) Combine(sources ...*Buffer) error {
	longest := b.Len()
	for i, src := range sources {
		if src == nil {
			return fmt.Errorf("track: combine source %d is nil", i)
		}
		if src.channels != b.channels {
			return fmt.Errorf("%w: source %d has %d channels, target has %d",
				ErrChannelMismatch, i, src.channels, b.channels)
		}
		longest = max(longest, src.Len())
	}

	// b may appear among its own sources; mix from a snapshot in that case.
	snap := make([][]float32, len(sources))
	for i, src := range sources {
		snap[i] = src.samples
		if src == b {
			snap[i] = append([]float32(nil), b.samples...)
		}
	}

	b.extend(longest)
	for i, src := range sources {
		gains := src.Gains()
		for j, s := range snap[i] {
			b.samples[j] += s * gains[j%b.channels]
		}
	}
	return nil
}
