package score

// TellDuration sums the relative durations of seq without rendering it. The
// total matches what a render consumes: notes and rap glides count their
// duration, silences count forward, backspaces count backward, and tuning
// steps count nothing.
func TellDuration(seq Sequence) int {
	total := 0
	for _, el := range seq {
		total += elementDuration(el)
	}
	return total
}

func elementDuration(el Element) int {
	switch e := el.(type) {
	case PlainNote:
		return e.Duration
	case VocalGroup:
		d := 0
		for _, syl := range e {
			for _, n := range syl.Notes {
				d += n.Duration
			}
			if len(syl.Notes) == 0 && syl.Rap != nil {
				d += syl.Rap.Duration
			}
		}
		return d
	case BeatCommand:
		switch e.Kind {
		case BeatPlay, BeatSilence:
			return e.Duration
		case BeatBackspace:
			return -e.Duration
		}
	}
	return 0
}
