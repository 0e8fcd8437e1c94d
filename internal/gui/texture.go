package gui

import (
	"image"

	"image-viewer/internal/models"
)

// Texture owns the NRGBA bitmap painted by the image canvas. Updates reuse the
// bitmap when the dimensions do not change.
type Texture struct {
	name  string
	img   *image.NRGBA
	dirty bool
}

func newTexture(name string) *Texture {
	return &Texture{name: name}
}

func (t *Texture) Name() string { return t.name }

func (t *Texture) Image() *image.NRGBA { return t.img }

func (t *Texture) Update(payload *models.ImagePayload) {
	w, h := int(payload.Width), int(payload.Height)
	if t.img == nil || t.img.Rect.Dx() != w || t.img.Rect.Dy() != h {
		t.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	src := payload.Pixels.Data
	dst := t.img.Pix
	switch payload.Pixels.Channels {
	case 4:
		copy(dst, src)
	case 3:
		for i, j := 0, 0; i+2 < len(src) && j+3 < len(dst); i, j = i+3, j+4 {
			dst[j] = src[i]
			dst[j+1] = src[i+1]
			dst[j+2] = src[i+2]
			dst[j+3] = 0xff
		}
	}
	t.dirty = true
}
