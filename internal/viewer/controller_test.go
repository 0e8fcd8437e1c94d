package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"image-viewer/internal/decoder"
	"image-viewer/internal/logger"
	"image-viewer/internal/models"
	"image-viewer/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	name    string
	updates []*models.ImagePayload
}

func (t *fakeTexture) Update(p *models.ImagePayload) {
	t.updates = append(t.updates, p)
}

type fakeSurface struct {
	created  []*fakeTexture
	forgets  int
	labels   []string
	draws    int
	lastSize [2]uint32
}

func (s *fakeSurface) LoadTexture(name string, p *models.ImagePayload) Texture {
	t := &fakeTexture{name: name, updates: []*models.ImagePayload{p}}
	s.created = append(s.created, t)
	return t
}

func (s *fakeSurface) ForgetAllImages() { s.forgets++ }

func (s *fakeSurface) DrawLabel(label string) { s.labels = append(s.labels, label) }

func (s *fakeSurface) DrawImage(_ Texture, w, h uint32) {
	s.draws++
	s.lastSize = [2]uint32{w, h}
}

// fakeSpawner records requests; tests play the worker by sending on out.
type fakeSpawner struct {
	requests []worker.Request
	out      chan<- models.DecodeResult
}

func (f *fakeSpawner) Spawn(_ context.Context, req worker.Request, out chan<- models.DecodeResult) {
	f.requests = append(f.requests, req)
	f.out = out
}

func (f *fakeSpawner) succeed(i int, w, h uint32) *models.ImagePayload {
	p := &models.ImagePayload{
		Width:  w,
		Height: h,
		Label:  fmt.Sprintf("widthxheight=%dx%d", w, h),
		Pixels: models.PixelBuffer{Channels: 3, Data: make([]byte, int(w*h*3))},
	}
	f.out <- models.Success{RequestID: f.requests[i].ID, Payload: p}
	return p
}

func (f *fakeSpawner) fail(i int) {
	f.out <- models.Failure{RequestID: f.requests[i].ID, Path: f.requests[i].Path}
}

var testSources = []Source{
	{Label: "Load Image", Path: "a.png"},
	{Label: "Load Other Image", Path: "b.png"},
}

func newTestController(spawner Spawner, buffer int) *Controller {
	c := NewController(context.Background(), spawner, Options{
		DefaultPath:  "default.png",
		Sources:      testSources,
		ResultBuffer: buffer,
	}, logger.Nop())
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
	return c
}

func TestInitialState(t *testing.T) {
	c := newTestController(&fakeSpawner{}, 1)

	st := c.State()
	assert.Equal(t, uint32(300), st.DisplayedWidth)
	assert.Equal(t, uint32(300), st.DisplayedHeight)
	assert.Nil(t, st.Texture)
	assert.False(t, st.Busy)
	assert.Empty(t, st.Label)
	assert.Equal(t, testSources, c.Sources())
}

func TestBootstrapOnce(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)
	s := &fakeSurface{}

	c.Frame(s)
	require.Len(t, sp.requests, 1)
	assert.Equal(t, "default.png", sp.requests[0].Path)
	assert.True(t, c.State().Busy)

	sp.succeed(0, 40, 20)
	c.Frame(s)
	assert.False(t, c.State().Busy)
	require.Len(t, s.created, 1)
	assert.Equal(t, textureName, s.created[0].name)

	assert.False(t, c.Bootstrap())
	c.Frame(s)
	assert.Len(t, sp.requests, 1)
}

func TestBootstrapSkippedAfterExplicitLoad(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)

	require.True(t, c.Load(1))
	c.Frame(&fakeSurface{})

	require.Len(t, sp.requests, 1)
	assert.Equal(t, "b.png", sp.requests[0].Path)
}

func TestDrainEmptyIsNoop(t *testing.T) {
	c := newTestController(&fakeSpawner{}, 1)
	s := &fakeSurface{}

	before := c.State()
	assert.False(t, c.Drain(s))
	assert.Equal(t, before, c.State())
	assert.Zero(t, s.draws)
}

func TestRequestWhileBusyIsDropped(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)
	s := &fakeSurface{}
	c.Frame(s)
	sp.succeed(0, 1, 1)
	c.Frame(s)

	require.True(t, c.Load(0))
	assert.False(t, c.Load(1))
	assert.False(t, c.Load(0))
	require.Len(t, sp.requests, 2)
	assert.Equal(t, "a.png", sp.requests[1].Path)

	want := sp.succeed(1, 64, 48)
	c.Frame(s)

	st := c.State()
	assert.False(t, st.Busy)
	assert.Equal(t, uint32(64), st.DisplayedWidth)
	assert.Equal(t, uint32(48), st.DisplayedHeight)
	tex := s.created[0]
	assert.Same(t, want, tex.updates[len(tex.updates)-1])
	assert.Len(t, sp.requests, 2)
}

func TestFailureLeavesDisplayUntouched(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)
	s := &fakeSurface{}
	c.Frame(s)
	sp.succeed(0, 10, 5)
	c.Frame(s)

	require.True(t, c.Load(1))
	before := c.State()
	sp.fail(1)
	assert.True(t, c.Drain(s))

	after := c.State()
	assert.False(t, after.Busy)
	assert.Equal(t, before.DisplayedWidth, after.DisplayedWidth)
	assert.Equal(t, before.DisplayedHeight, after.DisplayedHeight)
	assert.Equal(t, before.Label, after.Label)
	assert.Same(t, before.Texture, after.Texture)
	assert.Len(t, s.created[0].updates, 1)
	assert.Zero(t, s.forgets)
}

func TestFailureBeforeAnyImage(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)
	s := &fakeSurface{}
	c.Frame(s)
	sp.fail(0)
	c.Frame(s)

	st := c.State()
	assert.False(t, st.Busy)
	assert.Nil(t, st.Texture)
	assert.Empty(t, st.Label)
	assert.Zero(t, s.draws)

	assert.True(t, c.Load(0))
}

func TestTextureUpdatedInPlace(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)
	s := &fakeSurface{}
	c.Frame(s)
	sp.succeed(0, 3, 3)
	c.Frame(s)
	first := c.State().Texture

	require.True(t, c.Load(0))
	second := sp.succeed(1, 8, 2)
	c.Frame(s)

	assert.Len(t, s.created, 1)
	assert.Same(t, first, c.State().Texture)
	assert.Equal(t, 1, s.forgets)
	assert.Same(t, second, s.created[0].updates[1])
	assert.Equal(t, [2]uint32{8, 2}, s.lastSize)
	assert.Equal(t, "widthxheight=8x2", s.labels[len(s.labels)-1])
}

func TestQueuedResultsDrainFIFOOnePerFrame(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 4)
	s := &fakeSurface{}
	c.Frame(s)

	// bypass the busy guard to queue several results
	sp.succeed(0, 1, 1)
	sp.requests = append(sp.requests, worker.Request{ID: "stray-1"}, worker.Request{ID: "stray-2"})
	sp.fail(1)
	sp.succeed(2, 2, 2)

	c.Frame(s)
	assert.Equal(t, uint32(1), c.State().DisplayedWidth)
	c.Frame(s)
	assert.Equal(t, uint32(1), c.State().DisplayedWidth)
	c.Frame(s)
	assert.Equal(t, uint32(2), c.State().DisplayedWidth)
	assert.False(t, c.Drain(s))
}

func TestLoadUnknownSlot(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)

	assert.False(t, c.Load(2))
	assert.False(t, c.Load(-1))
	assert.Empty(t, sp.requests)
	assert.False(t, c.State().Busy)
}

func TestRenderLabelAboveImage(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestController(sp, 1)
	s := &fakeSurface{}
	c.Frame(s)
	assert.Zero(t, s.draws)
	assert.Empty(t, s.labels)

	sp.succeed(0, 4, 4)
	c.Frame(s)
	c.Render(s)
	assert.Equal(t, 2, s.draws)
	assert.Equal(t, []string{"widthxheight=4x4", "widthxheight=4x4"}, s.labels)
}

func TestRoundTripWithRealWorker(t *testing.T) {
	const w, h = 12, 7
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 90})
		}
	}
	path := filepath.Join(t.TempDir(), "round.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	wk := worker.New(decoder.NewNative(), logger.Nop(), 0)
	c := NewController(context.Background(), wk, Options{
		DefaultPath: path,
		Sources:     testSources,
	}, logger.Nop())
	s := &fakeSurface{}

	c.Frame(s)
	deadline := time.Now().Add(5 * time.Second)
	for c.State().Busy && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		c.Frame(s)
	}
	wk.Shutdown()

	st := c.State()
	require.False(t, st.Busy)
	assert.Equal(t, uint32(w), st.DisplayedWidth)
	assert.Equal(t, uint32(h), st.DisplayedHeight)
	assert.Contains(t, st.Label, "12x7")
	assert.Contains(t, st.Label, "colorType: Rgba8")
	require.Len(t, s.created, 1)
	assert.Len(t, s.created[0].updates[0].Pixels.Data, w*h*4)
}
