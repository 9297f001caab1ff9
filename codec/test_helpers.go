package codec

import (
	"fmt"
	"image"
	"strconv"
	"sync/atomic"
)

// TestImage is a simple in-memory Image (and Container) for testing.
// Pixels are produced from Source; frames are appended with AddFrame.
type TestImage struct {
	Source image.Image
	Err    error // returned by Pixels when set

	frames []Frame
	calls  atomic.Int64
}

// NewTestImage wraps src
func NewTestImage(src image.Image) *TestImage {
	return &TestImage{Source: src}
}

// Width returns the source width
func (t *TestImage) Width() int {
	return t.Source.Bounds().Dx()
}

// Height returns the source height
func (t *TestImage) Height() int {
	return t.Source.Bounds().Dy()
}

// Pixels converts the source image to format
func (t *TestImage) Pixels(format PixelFormat) ([]byte, error) {
	t.calls.Add(1)
	if t.Err != nil {
		return nil, t.Err
	}
	return FromImage(t.Source, format)
}

// PixelCalls returns how many times Pixels was called
func (t *TestImage) PixelCalls() int {
	return int(t.calls.Load())
}

// AddFrame appends a sub-image keyed by its index
func (t *TestImage) AddFrame(img Image) {
	t.AddKeyedFrame(strconv.Itoa(len(t.frames)), img)
}

// AddKeyedFrame appends a sub-image under key
func (t *TestImage) AddKeyedFrame(key string, img Image) {
	t.frames = append(t.frames, Frame{Key: key, Image: img})
}

// Frames returns the appended sub-images
func (t *TestImage) Frames() []Frame {
	return t.frames
}

// FrameCount returns the number of sub-images
func (t *TestImage) FrameCount() int {
	return len(t.frames)
}

// TestDecoder returns a fixed image or error for any input
type TestDecoder struct {
	DecoderName string
	Exts        []string
	Image       Image
	Err         error
	Panic       any // panics with this value when set
}

// Decode returns the configured image or error
func (d *TestDecoder) Decode(data []byte) (Image, error) {
	if d.Panic != nil {
		panic(d.Panic)
	}
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Image == nil {
		return nil, fmt.Errorf("test decoder %s has no image", d.Name())
	}
	return d.Image, nil
}

// Extensions returns the configured extensions
func (d *TestDecoder) Extensions() []string {
	return d.Exts
}

// Name returns the configured name
func (d *TestDecoder) Name() string {
	if d.DecoderName == "" {
		return "test"
	}
	return d.DecoderName
}
