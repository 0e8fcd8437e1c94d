package gui

import (
	"image-viewer/internal/models"
	"image-viewer/internal/viewer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// View is the fyne rendering surface for the viewer controller. Its methods
// must run on the fyne main goroutine.
type View struct {
	window fyne.Window

	buttons []*widget.Button
	label   *widget.Label
	image   *canvas.Image
	content fyne.CanvasObject

	textures   []*Texture
	shown      *Texture
	shownLabel string
	forgets    int
}

// NewView builds one button per source; tapping button i calls onLoad(i).
func NewView(window fyne.Window, sources []viewer.Source, onLoad func(slot int)) *View {
	view := &View{window: window}

	view.setupComponents(sources, onLoad)
	view.setupLayout()

	return view
}

func (v *View) setupComponents(sources []viewer.Source, onLoad func(slot int)) {
	for i, src := range sources {
		slot := i
		v.buttons = append(v.buttons, widget.NewButton(src.Label, func() {
			onLoad(slot)
		}))
	}

	v.label = widget.NewLabel("")
	v.label.Wrapping = fyne.TextWrapWord
	v.label.Hide()

	v.image = canvas.NewImageFromImage(nil)
	v.image.FillMode = canvas.ImageFillContain
	v.image.ScaleMode = canvas.ImageScaleSmooth
}

func (v *View) setupLayout() {
	row := make([]fyne.CanvasObject, 0, len(v.buttons))
	for _, b := range v.buttons {
		row = append(row, b)
	}

	v.content = container.NewBorder(
		container.NewVBox(container.NewHBox(row...), v.label),
		nil, nil, nil,
		v.image,
	)
}

// LoadTexture creates a texture and shows nothing until DrawImage is called.
func (v *View) LoadTexture(name string, payload *models.ImagePayload) viewer.Texture {
	t := newTexture(name)
	t.Update(payload)
	v.textures = append(v.textures, t)
	return t
}

// ForgetAllImages marks every texture stale so the next draw re-uploads it
// instead of trusting the painter's cached copy.
func (v *View) ForgetAllImages() {
	for _, t := range v.textures {
		t.dirty = true
	}
	v.forgets++
}

func (v *View) DrawLabel(label string) {
	if label == v.shownLabel && v.label.Visible() {
		return
	}
	v.shownLabel = label
	v.label.SetText(label)
	v.label.Show()
}

// DrawImage shows the texture scaled into the image area. The canvas uses
// contain fill, which keeps the aspect ratio.
func (v *View) DrawImage(tex viewer.Texture, width, height uint32) {
	t, ok := tex.(*Texture)
	if !ok || t.img == nil {
		return
	}
	if t == v.shown && !t.dirty {
		return
	}

	v.image.Image = t.img
	v.image.Refresh()
	v.shown = t
	t.dirty = false
}

func (v *View) Content() fyne.CanvasObject {
	return v.content
}

func (v *View) Show() {
	v.window.SetContent(v.content)
	v.window.Show()
}
