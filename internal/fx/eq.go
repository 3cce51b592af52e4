package fx

// EQ splits the signal into bands with cascaded one-pole lowpasses and sums
// them back with a gain per band. Crossovers must be ascending; there is one
// more band than crossovers.
type EQ struct {
	gains  []float32
	alphas []float32
	lpL    []float32
	lpR    []float32
}

// NewEQ builds an EQ with len(gains) == len(crossovers)+1.
func NewEQ(sampleRate int, crossovers []float64, gains []float32) *EQ {
	eq := &EQ{
		gains:  append([]float32(nil), gains...),
		alphas: make([]float32, len(crossovers)),
		lpL:    make([]float32, len(crossovers)),
		lpR:    make([]float32, len(crossovers)),
	}
	for i, f := range crossovers {
		eq.alphas[i] = onePole(sampleRate, f)
	}
	for len(eq.gains) < len(crossovers)+1 {
		eq.gains = append(eq.gains, 1)
	}
	return eq
}

// NewEQ3 is a low/mid/high EQ.
func NewEQ3(sampleRate int, low, mid, high, lowFreq, highFreq float32) *EQ {
	return NewEQ(sampleRate, []float64{float64(lowFreq), float64(highFreq)}, []float32{low, mid, high})
}

// NewEQ5 splits at 200 Hz, 800 Hz, 2.5 kHz and 8 kHz.
func NewEQ5(sampleRate int, gains [5]float32) *EQ {
	return NewEQ(sampleRate, []float64{200, 800, 2500, 8000}, gains[:])
}

func (eq *EQ) Gain(band int) float32 {
	if band < 0 || band >= len(eq.gains) {
		return 1
	}
	return eq.gains[band]
}

func (eq *EQ) Process(l, r float32) (float32, float32) {
	var outL, outR float32
	for i, a := range eq.alphas {
		eq.lpL[i] += a * (l - eq.lpL[i])
		eq.lpR[i] += a * (r - eq.lpR[i])
		outL += eq.lpL[i] * eq.gains[i]
		outR += eq.lpR[i] * eq.gains[i]
		l -= eq.lpL[i]
		r -= eq.lpR[i]
	}
	last := eq.gains[len(eq.alphas)]
	return outL + l*last, outR + r*last
}

func (eq *EQ) Reset() {
	clear(eq.lpL)
	clear(eq.lpR)
}
