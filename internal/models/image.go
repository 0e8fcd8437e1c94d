package models

// PixelBuffer is a contiguous, row-major 8-bit buffer of RGB or RGBA samples.
// It is treated as immutable once published in an ImagePayload.
type PixelBuffer struct {
	Channels int
	Data     []byte
}

// HasAlpha reports whether the buffer carries an alpha channel.
func (p PixelBuffer) HasAlpha() bool {
	return p.Channels == 4
}

// ImagePayload is the displayable output of one successful decode.
type ImagePayload struct {
	Width  uint32
	Height uint32
	Label  string
	Pixels PixelBuffer
}

// ExpectedLen is the buffer length implied by the dimensions and channel count.
func (p *ImagePayload) ExpectedLen() int {
	return int(p.Width) * int(p.Height) * p.Pixels.Channels
}

// DecodeResult is the single message sent back for each decode request.
// The only implementations are Success and Failure.
type DecodeResult interface {
	ID() string
	decodeResult()
}

type Success struct {
	RequestID string
	Payload   *ImagePayload
}

// Failure deliberately carries no error detail; the worker logs it instead.
type Failure struct {
	RequestID string
	Path      string
}

func (s Success) ID() string { return s.RequestID }
func (f Failure) ID() string { return f.RequestID }

func (Success) decodeResult() {}
func (Failure) decodeResult() {}
