package fx

import "math"

// Delay is a stereo echo whose feedback can bleed across channels.
type Delay struct {
	left, right     line
	feedback, cross float32
	wet             float32
}

func NewDelay(sampleRate int, delayMs float64, feedback, cross, wet float32) *Delay {
	n := int(delayMs * float64(sampleRate) / 1000)
	return &Delay{
		left:     newLine(n),
		right:    newLine(n),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(l, r float32) (float32, float32) {
	el, er := d.left.oldest(), d.right.oldest()
	keep := d.feedback * (1 - d.cross)
	swap := d.feedback * d.cross
	d.left.push(l + el*keep + er*swap)
	d.right.push(r + er*keep + el*swap)
	return mix(l, el, d.wet), mix(r, er, d.wet)
}

func (d *Delay) Reset() {
	d.left.clear()
	d.right.clear()
}

// Chorus reads a delay line at a sine-modulated offset.
type Chorus struct {
	left, right line
	center      float32
	depth       float32 // samples
	step        float64 // LFO phase per sample, in cycles
	phase       float64
	feedback    float32
	wet         float32
}

func NewChorus(sampleRate int, delayMs, feedback, depthMs, rateHz, wet float32) *Chorus {
	sr := float32(sampleRate)
	base := delayMs * sr / 1000
	depth := depthMs * sr / 1000
	n := max(int(base+depth)+2, 4)
	return &Chorus{
		left:     newLine(n),
		right:    newLine(n),
		center:   float32(n / 2),
		depth:    depth,
		step:     float64(rateHz) / float64(sampleRate),
		feedback: clamp(feedback, 0, 0.9),
		wet:      clamp(wet, 0, 1),
	}
}

func (c *Chorus) Process(l, r float32) (float32, float32) {
	offset := c.center + c.depth*float32(sinCycle(c.phase))
	c.phase += c.step
	c.phase -= float64(int(c.phase))

	dl := c.left.readFrac(offset)
	dr := c.right.readFrac(offset)
	c.left.push(l + dl*c.feedback)
	c.right.push(r + dr*c.feedback)
	return mix(l, dl, c.wet), mix(r, dr, c.wet)
}

func (c *Chorus) Reset() {
	c.left.clear()
	c.right.clear()
	c.phase = 0
}

func sinCycle(p float64) float64 {
	return math.Sin(2 * math.Pi * p)
}
