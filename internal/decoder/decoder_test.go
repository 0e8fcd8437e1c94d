package decoder

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, name string, encode func(f *os.File) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, encode(f))
	require.NoError(t, f.Close())
	return path
}

func translucent(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 128})
		}
	}
	return img
}

func opaque(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func TestNativeOpenColorTypes(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 2))
	paletted := image.NewPaletted(image.Rect(0, 0, 6, 6), palette.Plan9)

	tests := []struct {
		name   string
		file   string
		encode func(f *os.File) error
		want   ColorType
		format string
		w, h   int
	}{
		{"png with alpha", "a.png", func(f *os.File) error { return png.Encode(f, translucent(5, 3)) }, Rgba8, "png", 5, 3},
		{"opaque png", "b.png", func(f *os.File) error { return png.Encode(f, opaque(7, 2)) }, Rgb8, "png", 7, 2},
		{"gray png", "c.png", func(f *os.File) error { return png.Encode(f, gray) }, L8, "png", 4, 2},
		{"jpeg", "d.jpg", func(f *os.File) error { return jpeg.Encode(f, opaque(8, 8), nil) }, Rgb8, "jpeg", 8, 8},
		{"gif", "e.gif", func(f *os.File) error { return gif.Encode(f, paletted, nil) }, Rgb8, "gif", 6, 6},
		{"bmp", "f.bmp", func(f *os.File) error { return bmp.Encode(f, opaque(3, 5)) }, Rgb8, "bmp", 3, 5},
	}

	svc := NewNative()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeImage(t, tt.file, tt.encode)

			img, err := svc.Open(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.ColorType())
			assert.Equal(t, tt.format, img.Format())
			assert.Equal(t, tt.w, img.Width())
			assert.Equal(t, tt.h, img.Height())
		})
	}
}

func TestNativeOpenErrors(t *testing.T) {
	svc := NewNative()

	_, err := svc.Open(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	garbage := writeImage(t, "garbage.png", func(f *os.File) error {
		_, err := f.WriteString("definitely not an image")
		return err
	})
	_, err = svc.Open(garbage)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	full := writeImage(t, "full.png", func(f *os.File) error { return png.Encode(f, opaque(32, 32)) })
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	truncated := filepath.Join(t.TempDir(), "truncated.png")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)/2], 0o644))
	_, err = svc.Open(truncated)
	assert.Error(t, err)
}

func TestToRGBA8(t *testing.T) {
	img := NewDecodedImage(translucent(5, 3), Rgba8, "png")

	flat := img.ToRGBA8()
	assert.Len(t, flat.Samples, 5*3*4)
	assert.Equal(t, flat.Len(), len(flat.Samples))

	c, w, h := flat.Bounds()
	assert.Equal(t, uint8(4), c)
	assert.Equal(t, uint32(5), w)
	assert.Equal(t, uint32(3), h)

	cs, ws, hs := flat.StridesCWH()
	assert.Equal(t, []int{1, 4, 20}, []int{cs, ws, hs})

	// pixel (2, 1) keeps its straight alpha values
	off := 1*hs + 2*ws
	assert.Equal(t, []byte{20, 10, 200, 128}, flat.Samples[off:off+4])
}

func TestToRGBA8Unpremultiplies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 100, G: 50, B: 0, A: 128})

	flat := NewDecodedImage(src, Rgba8, "tiff").ToRGBA8()
	assert.Equal(t, uint8(128), flat.Samples[3])
	assert.InDelta(t, 199, int(flat.Samples[0]), 1)
	assert.InDelta(t, 99, int(flat.Samples[1]), 1)
}

func TestToRGB8(t *testing.T) {
	img := NewDecodedImage(opaque(7, 2), Rgb8, "png")

	flat := img.ToRGB8()
	assert.Len(t, flat.Samples, 7*2*3)
	cs, ws, hs := flat.StridesCWH()
	assert.Equal(t, []int{1, 3, 21}, []int{cs, ws, hs})
	assert.Equal(t, []byte{6, 1, 7}, flat.Samples[hs+6*ws:hs+6*ws+3])
	assert.Equal(t, "7x2x3", flat.String())
}

func TestToRGB8FromSubImage(t *testing.T) {
	sub := opaque(10, 10).SubImage(image.Rect(2, 3, 6, 5))

	flat := NewDecodedImage(sub, Rgb8, "png").ToRGB8()
	assert.Len(t, flat.Samples, 4*2*3)
	assert.Equal(t, []byte{2, 3, 7}, flat.Samples[:3])
}

func TestColorTypeChannels(t *testing.T) {
	assert.Equal(t, 4, Rgba8.Channels())
	assert.Equal(t, 3, Rgb8.Channels())
	assert.Equal(t, 2, La8.Channels())
	assert.Equal(t, 1, L16.Channels())
	assert.True(t, La16.HasAlpha())
	assert.False(t, Rgb32F.HasAlpha())
	assert.Equal(t, "Rgba8", Rgba8.String())
	assert.Equal(t, "Unknown", ColorType(42).String())
}
