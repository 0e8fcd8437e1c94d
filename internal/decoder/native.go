package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	// registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Native decodes with the Go image codecs: PNG, JPEG, GIF, BMP, TIFF and WebP.
type Native struct{}

func NewNative() *Native {
	return &Native{}
}

func (n *Native) Open(path string) (*DecodedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	// The header tells apart layouts the decoded type alone cannot, e.g. an
	// RGB PNG and an RGBA PNG both decode to a 4-channel Go image.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}

	return NewDecodedImage(img, classify(cfg.ColorModel, img), format), nil
}

func classify(model color.Model, img image.Image) ColorType {
	if p, ok := model.(color.Palette); ok {
		// transparency may only show up in the decoded frame's palette
		if pm, ok := img.(*image.Paletted); ok {
			p = pm.Palette
		}
		if paletteHasAlpha(p) {
			return Rgba8
		}
		return Rgb8
	}

	switch model {
	case color.GrayModel:
		return L8
	case color.Gray16Model:
		return L16
	case color.NRGBAModel, color.NYCbCrAModel:
		return Rgba8
	case color.NRGBA64Model:
		return Rgba16
	case color.YCbCrModel, color.CMYKModel:
		return Rgb8
	case color.RGBAModel:
		if isOpaque(img) {
			return Rgb8
		}
		return Rgba8
	case color.RGBA64Model:
		if isOpaque(img) {
			return Rgb16
		}
		return Rgba16
	}

	switch img.(type) {
	case *image.Gray:
		return L8
	case *image.Gray16:
		return L16
	case *image.RGBA64, *image.NRGBA64:
		if isOpaque(img) {
			return Rgb16
		}
		return Rgba16
	}
	if isOpaque(img) {
		return Rgb8
	}
	return Rgba8
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}
