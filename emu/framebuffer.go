package emu

import "image"

// Framebuffer holds the visible screen area as palette indices and the
// RGBA image converted from them band by band.
type Framebuffer struct {
	index []uint16
	img   *image.RGBA
}

// NewFramebuffer allocates a ScreenWidth x ScreenHeight framebuffer.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{
		index: make([]uint16, ScreenWidth*ScreenHeight),
		img:   image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
	}
}

// Index returns the palette index at a framebuffer pixel.
func (f *Framebuffer) Index(x, y int) uint16 {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return 0
	}
	return f.index[y*ScreenWidth+x]
}

// Image returns the RGBA image.
func (f *Framebuffer) Image() *image.RGBA {
	return f.img
}

// Pix returns the raw RGBA pixel data.
func (f *Framebuffer) Pix() []byte {
	return f.img.Pix
}

// Stride returns the bytes per RGBA row.
func (f *Framebuffer) Stride() int {
	return f.img.Stride
}

func (f *Framebuffer) row(y int) []uint16 {
	return f.index[y*ScreenWidth : (y+1)*ScreenWidth]
}

// fill sets rows [y0, y1) to one palette index.
func (f *Framebuffer) fill(y0, y1 int, idx uint16) {
	for y := y0; y < y1; y++ {
		row := f.row(y)
		for x := range row {
			row[x] = idx
		}
	}
}

// resolve converts rows [y0, y1) from palette indices to RGBA.
func (f *Framebuffer) resolve(y0, y1 int, pal *Palette) {
	pix := f.img.Pix
	stride := f.img.Stride
	for y := y0; y < y1; y++ {
		offset := y * stride
		for x, idx := range f.row(y) {
			r, g, b := pal.Color(idx)
			p := offset + x*4
			pix[p] = r
			pix[p+1] = g
			pix[p+2] = b
			pix[p+3] = 0xFF
		}
	}
}
