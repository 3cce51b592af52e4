package fx

// Reverb is a Schroeder reverb: four parallel combs into two allpasses, fed
// with the mono sum and returned to both channels.
type Reverb struct {
	combs    [4]line
	allpass  [2]line
	feedback float32
	wet      float32
}

var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

func NewReverb(sampleRate int, roomSize, feedback, wet float32) *Reverb {
	base := max(int(float32(sampleRate)*roomSize*0.05), 10)
	r := &Reverb{feedback: clamp(feedback, 0, 0.95), wet: clamp(wet, 0, 1)}
	for i, k := range combRatios {
		r.combs[i] = newLine(base * k / 1000)
	}
	for i, k := range allpassRatios {
		r.allpass[i] = newLine(base * k / 1000)
	}
	return r
}

func (r *Reverb) Process(l, rt float32) (float32, float32) {
	in := (l + rt) / 2
	var out float32
	for i := range r.combs {
		c := &r.combs[i]
		y := c.oldest()
		c.push(in + y*r.feedback)
		out += y
	}
	out /= 4
	for i := range r.allpass {
		a := &r.allpass[i]
		y := a.oldest()
		a.push(out + y/2)
		out = y - out
	}
	return mix(l, out, r.wet), mix(rt, out, r.wet)
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].clear()
	}
	for i := range r.allpass {
		r.allpass[i].clear()
	}
}
