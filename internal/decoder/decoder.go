// Package decoder turns image files into normalized 8-bit sample buffers.
package decoder

import (
	"errors"
	"image"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyImage        = errors.New("image has no pixels")
)

// Service opens and decodes a single image file.
type Service interface {
	Open(path string) (*DecodedImage, error)
}

// ColorType is the native sample layout of a decoded file.
type ColorType int

const (
	L8 ColorType = iota
	La8
	Rgb8
	Rgba8
	L16
	La16
	Rgb16
	Rgba16
	Rgb32F
	Rgba32F
)

var colorTypeNames = [...]string{"L8", "La8", "Rgb8", "Rgba8", "L16", "La16", "Rgb16", "Rgba16", "Rgb32F", "Rgba32F"}

func (c ColorType) String() string {
	if c < 0 || int(c) >= len(colorTypeNames) {
		return "Unknown"
	}
	return colorTypeNames[c]
}

func (c ColorType) Channels() int {
	switch c {
	case L8, L16:
		return 1
	case La8, La16:
		return 2
	case Rgb8, Rgb16, Rgb32F:
		return 3
	default:
		return 4
	}
}

func (c ColorType) HasAlpha() bool {
	return c.Channels() == 2 || c.Channels() == 4
}

// DecodedImage is a decoded bitmap plus its native color type.
type DecodedImage struct {
	img    image.Image
	color  ColorType
	format string
}

// NewDecodedImage wraps an already decoded bitmap. Backends other than Native
// use it to hand their output to the shared normalization code.
func NewDecodedImage(img image.Image, color ColorType, format string) *DecodedImage {
	return &DecodedImage{img: img, color: color, format: format}
}

func (d *DecodedImage) Width() int           { return d.img.Bounds().Dx() }
func (d *DecodedImage) Height() int          { return d.img.Bounds().Dy() }
func (d *DecodedImage) ColorType() ColorType { return d.color }
func (d *DecodedImage) Format() string       { return d.format }
