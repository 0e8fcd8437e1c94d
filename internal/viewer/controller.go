// Package viewer holds the per-frame view controller: it dispatches decode
// requests, drains their results and draws the current image.
package viewer

import (
	"context"

	"image-viewer/internal/logger"
	"image-viewer/internal/models"
	"image-viewer/internal/worker"

	"github.com/google/uuid"
)

const (
	textureName = "viewer-image"

	initialWidth  = 300
	initialHeight = 300
)

// Source is one of the fixed images the user can load.
type Source struct {
	Label string
	Path  string
}

// State is everything the controller shows. Label is empty until the first
// successful decode.
type State struct {
	DisplayedWidth  uint32
	DisplayedHeight uint32
	Texture         Texture
	Busy            bool
	Label           string
}

type Options struct {
	DefaultPath  string
	Sources      []Source
	ResultBuffer int
}

// Controller must only be used from the render goroutine.
type Controller struct {
	ctx     context.Context
	spawner Spawner
	logger  logger.Logger

	results     chan models.DecodeResult
	defaultPath string
	sources     []Source

	state        State
	bootstrapped bool
	requested    bool
	pendingID    string
	newID        func() string
}

func NewController(ctx context.Context, spawner Spawner, opts Options, log logger.Logger) *Controller {
	buffer := opts.ResultBuffer
	if buffer < 1 {
		buffer = 1
	}
	return &Controller{
		ctx:         ctx,
		spawner:     spawner,
		logger:      log.With("viewer"),
		results:     make(chan models.DecodeResult, buffer),
		defaultPath: opts.DefaultPath,
		sources:     append([]Source(nil), opts.Sources...),
		state: State{
			DisplayedWidth:  initialWidth,
			DisplayedHeight: initialHeight,
		},
		newID: uuid.NewString,
	}
}

// Frame runs one render frame: bootstrap, drain, render.
func (c *Controller) Frame(s Surface) {
	c.Bootstrap()
	c.Drain(s)
	c.Render(s)
}

// Bootstrap loads the default image on the first call if nothing was
// requested yet. Later calls do nothing.
func (c *Controller) Bootstrap() bool {
	if c.bootstrapped {
		return false
	}
	c.bootstrapped = true
	if c.requested {
		return false
	}
	return c.dispatch(c.defaultPath)
}

// Drain applies at most one pending result without blocking.
func (c *Controller) Drain(s Surface) bool {
	var result models.DecodeResult
	select {
	case result = <-c.results:
	default:
		return false
	}

	c.state.Busy = false
	if result.ID() != c.pendingID {
		// only possible when more than one request was in flight
		c.logger.Warning("Draining result of a superseded request", map[string]interface{}{
			"request_id": result.ID(),
			"pending_id": c.pendingID,
		})
	}
	c.pendingID = ""

	switch r := result.(type) {
	case models.Success:
		c.apply(s, r.Payload)
	case models.Failure:
		c.logger.Warning("Keeping previous image after failed load", map[string]interface{}{
			"request_id": r.RequestID,
			"path":       r.Path,
		})
	}
	return true
}

func (c *Controller) apply(s Surface, payload *models.ImagePayload) {
	c.state.DisplayedWidth = payload.Width
	c.state.DisplayedHeight = payload.Height
	c.state.Label = payload.Label

	if c.state.Texture != nil {
		s.ForgetAllImages()
		c.state.Texture.Update(payload)
	} else {
		c.state.Texture = s.LoadTexture(textureName, payload)
	}

	c.logger.Info("Image displayed", map[string]interface{}{
		"width":    payload.Width,
		"height":   payload.Height,
		"channels": payload.Pixels.Channels,
	})
}

// Load requests the image in the given slot. While a decode is in flight the
// request is dropped and Load returns false.
func (c *Controller) Load(slot int) bool {
	if slot < 0 || slot >= len(c.sources) {
		c.logger.Warning("Unknown image slot", map[string]interface{}{
			"slot": slot,
		})
		return false
	}
	return c.dispatch(c.sources[slot].Path)
}

func (c *Controller) dispatch(path string) bool {
	if c.state.Busy {
		c.logger.Debug("Load ignored while busy", map[string]interface{}{
			"path":       path,
			"pending_id": c.pendingID,
		})
		return false
	}

	c.requested = true
	c.state.Busy = true
	c.pendingID = c.newID()
	c.logger.Debug("Dispatching decode", map[string]interface{}{
		"request_id": c.pendingID,
		"path":       path,
	})
	c.spawner.Spawn(c.ctx, worker.Request{ID: c.pendingID, Path: path}, c.results)
	return true
}

// Render draws the label above the current texture, if any.
func (c *Controller) Render(s Surface) {
	if c.state.Texture == nil {
		return
	}
	if c.state.Label != "" {
		s.DrawLabel(c.state.Label)
	}
	s.DrawImage(c.state.Texture, c.state.DisplayedWidth, c.state.DisplayedHeight)
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Sources() []Source {
	return append([]Source(nil), c.sources...)
}
