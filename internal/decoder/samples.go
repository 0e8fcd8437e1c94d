package decoder

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// SampleLayout describes how samples are addressed in a flat buffer.
// Strides are in samples (bytes, since every sample here is 8-bit).
type SampleLayout struct {
	Channels      uint8
	ChannelStride int
	Width         uint32
	WidthStride   int
	Height        uint32
	HeightStride  int
}

func rowMajor(channels, width, height int) SampleLayout {
	return SampleLayout{
		Channels:      uint8(channels),
		ChannelStride: 1,
		Width:         uint32(width),
		WidthStride:   channels,
		Height:        uint32(height),
		HeightStride:  channels * width,
	}
}

// FlatSamples is a contiguous sample buffer with its layout.
type FlatSamples struct {
	Samples []byte
	Layout  SampleLayout
}

// Bounds returns (channels, width, height).
func (f FlatSamples) Bounds() (uint8, uint32, uint32) {
	return f.Layout.Channels, f.Layout.Width, f.Layout.Height
}

// StridesCWH returns the channel, width and height strides.
func (f FlatSamples) StridesCWH() (int, int, int) {
	return f.Layout.ChannelStride, f.Layout.WidthStride, f.Layout.HeightStride
}

// Len is the minimum buffer length the layout addresses.
func (f FlatSamples) Len() int {
	return int(f.Layout.Height) * f.Layout.HeightStride
}

func (f FlatSamples) String() string {
	c, w, h := f.Bounds()
	return fmt.Sprintf("%dx%dx%d", w, h, c)
}

// ToRGBA8 converts to non-premultiplied RGBA, 4 bytes per pixel.
func (d *DecodedImage) ToRGBA8() FlatSamples {
	nrgba := d.toNRGBA()
	return FlatSamples{Samples: nrgba.Pix, Layout: rowMajor(4, d.Width(), d.Height())}
}

// ToRGB8 converts to RGB, 3 bytes per pixel. Alpha is dropped.
func (d *DecodedImage) ToRGB8() FlatSamples {
	nrgba := d.toNRGBA()
	w, h := d.Width(), d.Height()
	out := make([]byte, 0, w*h*3)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		out = append(out, nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2])
	}
	return FlatSamples{Samples: out, Layout: rowMajor(3, w, h)}
}

func (d *DecodedImage) toNRGBA() *image.NRGBA {
	src := d.img
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
