package fx

// line is a circular delay line. read(d) returns the sample written d calls
// to push ago, for 1 <= d <= len(buf).
type line struct {
	buf []float32
	pos int
}

func newLine(n int) line {
	if n < 1 {
		n = 1
	}
	return line{buf: make([]float32, n)}
}

// oldest returns the sample about to be overwritten.
func (d *line) oldest() float32 { return d.buf[d.pos] }

func (d *line) push(v float32) {
	d.buf[d.pos] = v
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
}

// readFrac reads delay samples back with linear interpolation.
func (d *line) readFrac(delay float32) float32 {
	n := float32(len(d.buf))
	p := float32(d.pos) - delay
	for p < 0 {
		p += n
	}
	i := int(p)
	frac := p - float32(i)
	if i >= len(d.buf) {
		i -= len(d.buf)
	}
	j := i + 1
	if j == len(d.buf) {
		j = 0
	}
	return d.buf[i]*(1-frac) + d.buf[j]*frac
}

func (d *line) clear() {
	clear(d.buf)
	d.pos = 0
}
