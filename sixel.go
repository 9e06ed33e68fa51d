package vtscreen

import "image/color"

// DecodeSixel decodes a sixel byte stream into RGBA pixels. params are the
// DCS parameters (P1;P2;P3): P2 selects background handling, 1 leaving
// uncovered pixels transparent. data is everything after the final 'q' of
// the introducer.
func DecodeSixel(params []int64, data []byte) (width, height uint32, pixels []byte) {
	d := newSixelDecoder()
	if len(params) >= 2 && params[1] == 1 {
		d.transparent = true
	}
	d.decode(data)
	return d.finish()
}

// sixelDecoder accumulates pixels into a flat RGBA buffer that grows in
// 6-row bands as the stream advances.
type sixelDecoder struct {
	palette     [256]color.RGBA
	colorIndex  int
	transparent bool

	x, y          int
	width, height int // written extent
	stride        int // allocated row width in pixels
	rows          int // allocated rows
	buf           []byte
	covered       []bool
}

func newSixelDecoder() *sixelDecoder {
	d := &sixelDecoder{}
	d.resetPalette()
	return d
}

// resetPalette loads the standard VGA 16-color palette followed by a
// grayscale ramp. Sixel orders the primaries blue, red, green.
func (d *sixelDecoder) resetPalette() {
	base := [16]color.RGBA{
		{0, 0, 0, 255},
		{0, 0, 205, 255},
		{205, 0, 0, 255},
		{205, 0, 205, 255},
		{0, 205, 0, 255},
		{0, 205, 205, 255},
		{205, 205, 0, 255},
		{205, 205, 205, 255},
		{0, 0, 0, 255},
		{0, 0, 255, 255},
		{255, 0, 0, 255},
		{255, 0, 255, 255},
		{0, 255, 0, 255},
		{0, 255, 255, 255},
		{255, 255, 0, 255},
		{255, 255, 255, 255},
	}
	copy(d.palette[:], base[:])
	for i := 16; i < 256; i++ {
		gray := uint8((i - 16) * 255 / 239)
		d.palette[i] = color.RGBA{gray, gray, gray, 255}
	}
}

func (d *sixelDecoder) decode(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		i++
		switch {
		case b == '$':
			d.x = 0
		case b == '-':
			d.x = 0
			d.y += 6
		case b == '!':
			var count int64
			count, i = scanNumber(data, i)
			if i < len(data) {
				if c := data[i]; c >= '?' && c <= '~' {
					d.emit(c, int(count))
				}
				i++
			}
		case b == '#':
			i = d.handleColor(data, i)
		case b == '"':
			i = d.handleRaster(data, i)
		case b >= '?' && b <= '~':
			d.emit(b, 1)
		}
	}
}

// handleColor parses #<index>[;<type>;<v1>;<v2>;<v3>]: a bare index selects
// a palette entry, the long form redefines it first.
func (d *sixelDecoder) handleColor(data []byte, i int) int {
	var index int64
	index, i = scanNumber(data, i)

	var vals [4]int64
	n := 0
	for n < 4 && i < len(data) && data[i] == ';' {
		vals[n], i = scanNumber(data, i+1)
		n++
	}

	if index < 0 || index > 255 {
		return i
	}
	if n == 4 {
		if vals[0] == 1 {
			d.palette[index] = sixelHLS(int(vals[1]), int(vals[2]), int(vals[3]))
		} else {
			d.palette[index] = color.RGBA{
				R: uint8(vals[1] * 255 / 100),
				G: uint8(vals[2] * 255 / 100),
				B: uint8(vals[3] * 255 / 100),
				A: 255,
			}
		}
	}
	d.colorIndex = int(index)
	return i
}

// handleRaster parses "<Pan>;<Pad>;<Ph>;<Pv> and preallocates the announced
// extent. The aspect ratio parameters are ignored.
func (d *sixelDecoder) handleRaster(data []byte, i int) int {
	var vals [4]int64
	for n := 0; n < 4; n++ {
		vals[n], i = scanNumber(data, i)
		if n < 3 && i < len(data) && data[i] == ';' {
			i++
		}
	}
	if vals[2] > 0 && vals[3] > 0 {
		d.grow(int(vals[2])-1, int(vals[3])-1)
	}
	return i
}

func scanNumber(data []byte, i int) (int64, int) {
	var n int64
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		n = n*10 + int64(data[i]-'0')
		i++
	}
	return n, i
}

// emit draws one sixel column pattern count times at the cursor. Bit 0 is
// the topmost of the six pixels.
func (d *sixelDecoder) emit(b byte, count int) {
	if count < 1 {
		count = 1
	}
	bits := b - '?'
	c := d.palette[d.colorIndex]

	d.grow(d.x+count-1, d.y+5)
	for r := 0; r < count; r++ {
		for bit := 0; bit < 6; bit++ {
			if bits&(1<<bit) == 0 {
				continue
			}
			px, py := d.x, d.y+bit
			off := (py*d.stride + px) * 4
			d.buf[off] = c.R
			d.buf[off+1] = c.G
			d.buf[off+2] = c.B
			d.buf[off+3] = c.A
			d.covered[py*d.stride+px] = true
			if px >= d.width {
				d.width = px + 1
			}
			if py >= d.height {
				d.height = py + 1
			}
		}
		d.x++
	}
}

// grow widens the buffer to cover pixel (x, y), re-striding existing rows if
// the width increases.
func (d *sixelDecoder) grow(x, y int) {
	if x < d.stride && y < d.rows {
		return
	}
	newStride := d.stride
	if x >= newStride {
		newStride = x + 1
	}
	newRows := d.rows
	if y >= newRows {
		newRows = y + 1
	}

	buf := make([]byte, newStride*newRows*4)
	covered := make([]bool, newStride*newRows)
	for row := 0; row < d.rows; row++ {
		copy(buf[row*newStride*4:], d.buf[row*d.stride*4:(row+1)*d.stride*4])
		copy(covered[row*newStride:], d.covered[row*d.stride:(row+1)*d.stride])
	}
	d.buf = buf
	d.covered = covered
	d.stride = newStride
	d.rows = newRows
}

// finish crops the buffer to the written extent and fills uncovered pixels
// with the background color unless transparency was requested.
func (d *sixelDecoder) finish() (uint32, uint32, []byte) {
	if d.width == 0 || d.height == 0 {
		return 0, 0, nil
	}

	out := make([]byte, d.width*d.height*4)
	bg := d.palette[0]
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			src := (y*d.stride + x) * 4
			dst := (y*d.width + x) * 4
			if d.covered[y*d.stride+x] {
				copy(out[dst:dst+4], d.buf[src:src+4])
			} else if !d.transparent {
				out[dst] = bg.R
				out[dst+1] = bg.G
				out[dst+2] = bg.B
				out[dst+3] = bg.A
			}
		}
	}
	return uint32(d.width), uint32(d.height), out
}

// sixelHLS converts sixel HLS to RGB. The sixel hue wheel is rotated a third
// of a turn against the standard one: blue sits at 0, red at 120, green
// at 240.
func sixelHLS(h, l, s int) color.RGBA {
	if s == 0 {
		v := uint8(l * 255 / 100)
		return color.RGBA{v, v, v, 255}
	}

	hn := float64(h)/360.0 + 2.0/3.0
	if hn >= 1 {
		hn -= 1
	}
	ln := float64(l) / 100.0
	sn := float64(s) / 100.0

	var q float64
	if ln < 0.5 {
		q = ln * (1 + sn)
	} else {
		q = ln + sn - ln*sn
	}
	p := 2*ln - q

	conv := func(t float64) uint8 {
		if t < 0 {
			t += 1
		}
		if t > 1 {
			t -= 1
		}
		var v float64
		switch {
		case t < 1.0/6.0:
			v = p + (q-p)*6*t
		case t < 1.0/2.0:
			v = q
		case t < 2.0/3.0:
			v = p + (q-p)*(2.0/3.0-t)*6
		default:
			v = p
		}
		return uint8(v * 255)
	}

	return color.RGBA{R: conv(hn + 1.0/3.0), G: conv(hn), B: conv(hn - 1.0/3.0), A: 255}
}
