package viewer

import (
	"context"

	"image-viewer/internal/models"
	"image-viewer/internal/worker"
)

// Texture is a handle into the surface's texture store. It is created once and
// then updated in place.
type Texture interface {
	Update(payload *models.ImagePayload)
}

// Surface is the rendering side the controller draws into each frame. All
// methods are called on the render goroutine.
type Surface interface {
	LoadTexture(name string, payload *models.ImagePayload) Texture
	// ForgetAllImages drops any cached image data the surface keeps, so an
	// in-place texture update is not masked by stale bytes.
	ForgetAllImages()
	DrawLabel(label string)
	// DrawImage presents the texture scaled to fit the available area,
	// keeping the aspect ratio.
	DrawImage(texture Texture, width, height uint32)
}

// Spawner starts a background decode that sends exactly one result on out.
type Spawner interface {
	Spawn(ctx context.Context, req worker.Request, out chan<- models.DecodeResult)
}
