package fx

import "math"

// onePole returns the smoothing coefficient of a one-pole lowpass.
func onePole(sampleRate int, cutoff float64) float32 {
	if cutoff <= 0 {
		return 0
	}
	dt := 1 / float64(sampleRate)
	rc := 1 / (2 * math.Pi * cutoff)
	return float32(dt / (rc + dt))
}

// Distortion soft-clips with tanh between two gains, optionally followed by
// a lowpass.
type Distortion struct {
	pre, post float32
	alpha     float32
	lpL, lpR  float32
}

func NewDistortion(sampleRate int, preGain, postGain, cutoff float32) *Distortion {
	d := &Distortion{pre: preGain, post: postGain}
	if cutoff < float32(sampleRate)/2 {
		d.alpha = onePole(sampleRate, float64(cutoff))
	}
	return d
}

func (d *Distortion) shape(x float32) float32 {
	return float32(math.Tanh(float64(x*d.pre))) * d.post
}

func (d *Distortion) Process(l, r float32) (float32, float32) {
	l, r = d.shape(l), d.shape(r)
	if d.alpha == 0 {
		return l, r
	}
	d.lpL += d.alpha * (l - d.lpL)
	d.lpR += d.alpha * (r - d.lpR)
	return d.lpL, d.lpR
}

func (d *Distortion) Reset() { d.lpL, d.lpR = 0, 0 }

// Compressor follows each channel's envelope and pulls levels above the
// threshold down by ratio.
type Compressor struct {
	threshold  float32
	ratio      float32
	attack     float32
	release    float32
	makeup     float32
	envL, envR float32
}

func dbToGain(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

func timeCoeff(sampleRate int, ms float32) float32 {
	if ms <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1000/(float64(ms)*float64(sampleRate))))
}

func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	return &Compressor{
		threshold: dbToGain(thresholdDB),
		ratio:     max(ratio, 1),
		attack:    timeCoeff(sampleRate, attackMs),
		release:   timeCoeff(sampleRate, releaseMs),
		makeup:    dbToGain(makeupDB),
	}
}

func (c *Compressor) follow(env *float32, x float32) float32 {
	x = float32(math.Abs(float64(x)))
	k := c.release
	if x > *env {
		k = c.attack
	}
	*env += k * (x - *env)
	if *env <= c.threshold {
		return c.makeup
	}
	return float32(math.Pow(float64(*env/c.threshold), float64(1/c.ratio-1))) * c.makeup
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	return l * c.follow(&c.envL, l), r * c.follow(&c.envR, r)
}

func (c *Compressor) Reset() { c.envL, c.envR = 0, 0 }
