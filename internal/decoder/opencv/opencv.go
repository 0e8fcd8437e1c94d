// Package opencv is a decoder.Service backed by OpenCV's imgcodecs.
package opencv

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"image-viewer/internal/decoder"

	"gocv.io/x/gocv"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Open(path string) (*decoder.DecodedImage, error) {
	// IMRead reports every failure as an empty Mat, so surface missing files first.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("%s: %w", path, decoder.ErrUnsupportedFormat)
	}

	depth := mat.Type() & 7 // CV_MAT_DEPTH
	native := colorType(mat.Channels(), depth)

	if depth != gocv.MatTypeCV8U {
		scaled := gocv.NewMat()
		defer scaled.Close()
		scale := float32(1)
		switch depth {
		case gocv.MatTypeCV16U:
			scale = 1.0 / 257
		case gocv.MatTypeCV32F:
			scale = 255
		}
		mat.ConvertToWithParams(&scaled, gocv.MatTypeCV8U, scale, 0)
		scaled.CopyTo(&mat)
	}

	img, err := toImage(mat)
	if err != nil {
		return nil, err
	}
	return decoder.NewDecodedImage(img, native, formatOf(path)), nil
}

func colorType(channels int, depth gocv.MatType) decoder.ColorType {
	wide := depth == gocv.MatTypeCV16U
	float := depth == gocv.MatTypeCV32F
	switch channels {
	case 1:
		if wide {
			return decoder.L16
		}
		return decoder.L8
	case 4:
		switch {
		case wide:
			return decoder.Rgba16
		case float:
			return decoder.Rgba32F
		}
		return decoder.Rgba8
	default:
		switch {
		case wide:
			return decoder.Rgb16
		case float:
			return decoder.Rgb32F
		}
		return decoder.Rgb8
	}
}

// toImage converts an 8-bit BGR, BGRA or gray Mat to a Go image with RGB order.
func toImage(mat gocv.Mat) (image.Image, error) {
	rows, cols := mat.Rows(), mat.Cols()
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid Mat dimensions %dx%d: %w", cols, rows, decoder.ErrEmptyImage)
	}

	switch mat.Channels() {
	case 1:
		gray := image.NewGray(image.Rect(0, 0, cols, rows))
		copy(gray.Pix, mat.ToBytes())
		return gray, nil
	case 3:
		rgba := gocv.NewMat()
		defer rgba.Close()
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRToRGBA)
		return nrgbaFrom(rgba, cols, rows), nil
	case 4:
		rgba := gocv.NewMat()
		defer rgba.Close()
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRAToRGBA)
		return nrgbaFrom(rgba, cols, rows), nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d: %w", mat.Channels(), decoder.ErrUnsupportedFormat)
	}
}

func nrgbaFrom(mat gocv.Mat, cols, rows int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	copy(img.Pix, mat.ToBytes())
	return img
}

func formatOf(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	case "":
		return "unknown"
	}
	return ext
}
