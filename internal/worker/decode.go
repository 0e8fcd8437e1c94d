package worker

import (
	"fmt"

	"image-viewer/internal/decoder"
	"image-viewer/internal/models"
)

// Load opens path and normalizes it into a displayable payload. Alpha-bearing
// (4-channel) sources become straight RGBA8, everything else RGB8.
func Load(svc decoder.Service, path string) (*models.ImagePayload, error) {
	img, err := svc.Open(path)
	if err != nil {
		return nil, err
	}

	var flat decoder.FlatSamples
	if img.ColorType().Channels() == 4 {
		flat = img.ToRGBA8()
	} else {
		flat = img.ToRGB8()
	}

	payload := &models.ImagePayload{
		Width:  uint32(img.Width()),
		Height: uint32(img.Height()),
		Label:  Label(img.ColorType(), flat),
		Pixels: models.PixelBuffer{
			Channels: int(flat.Layout.Channels),
			Data:     flat.Samples,
		},
	}
	if len(payload.Pixels.Data) != payload.ExpectedLen() {
		return nil, fmt.Errorf("normalized buffer has %d bytes, want %d", len(payload.Pixels.Data), payload.ExpectedLen())
	}
	return payload, nil
}

// Label renders the diagnostic text shown above the image.
func Label(color decoder.ColorType, flat decoder.FlatSamples) string {
	c, w, h := flat.Bounds()
	cs, ws, hs := flat.StridesCWH()
	return fmt.Sprintf(
		"widthxheight=%dx%d\ncolorType: %s\nbounds: (%d, %d, %d)\nstrides_cwh: (%d, %d, %d)\nwidth_stride: %d\nheight_stride: %d",
		w, h,
		color,
		c, w, h,
		cs, ws, hs,
		flat.Layout.WidthStride,
		flat.Layout.HeightStride,
	)
}
