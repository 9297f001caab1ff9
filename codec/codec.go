// Package codec defines the contract between the golden harness and the image
// decoders it exercises.
package codec

import (
	"fmt"
	"strings"
)

// Decoder is the universal interface for all decoder adapters
type Decoder interface {
	// Decode decodes an encoded byte stream into an image
	Decode(data []byte) (Image, error)

	// Extensions returns the sample file extensions handled by this decoder (".png", ".dcm")
	Extensions() []string

	// Name returns a human-readable name
	Name() string
}

// FileDecoder is implemented by decoders that prefer to read a sample from disk
// instead of from memory.
type FileDecoder interface {
	Decoder

	// DecodeFile decodes the sample stored at path
	DecodeFile(path string) (Image, error)
}

// Image is a decoded raster that can be materialized in a requested pixel format.
type Image interface {
	// Width returns the image width in pixels
	Width() int

	// Height returns the image height in pixels
	Height() int

	// Pixels returns a freshly allocated pixel buffer in the given format.
	// The buffer length is FrameSize(Width(), Height(), format).
	Pixels(format PixelFormat) ([]byte, error)
}

// Container is an image carrying several sub-images (grid tiles, overlays,
// collection items, animation frames).
type Container interface {
	Image

	// Frames returns the sub-images in the decoder's deterministic order
	Frames() []Frame
}

// Frame is one keyed sub-image of a Container
type Frame struct {
	Key   string
	Image Image
}

// PixelFormat names a byte layout for decoded pixels.
type PixelFormat struct {
	Name          string
	BytesPerPixel int
}

// String returns the format name
func (f PixelFormat) String() string {
	return f.Name
}

// Predefined pixel formats. Channel order follows the name, one byte per channel.
var (
	ARGB32 = PixelFormat{Name: "argb32", BytesPerPixel: 4}
	RGBA32 = PixelFormat{Name: "rgba32", BytesPerPixel: 4}
	BGRA32 = PixelFormat{Name: "bgra32", BytesPerPixel: 4}
	RGB24  = PixelFormat{Name: "rgb24", BytesPerPixel: 3}
	Gray8  = PixelFormat{Name: "gray8", BytesPerPixel: 1}
)

var pixelFormats = []PixelFormat{ARGB32, RGBA32, BGRA32, RGB24, Gray8}

// ParsePixelFormat resolves a format name, case-insensitively
func ParsePixelFormat(name string) (PixelFormat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range pixelFormats {
		if f.Name == n {
			return f, nil
		}
	}
	return PixelFormat{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FrameSize returns the buffer length of a width x height raster in format
func FrameSize(width, height int, format PixelFormat) int {
	return width * height * format.BytesPerPixel
}

// FramesOf returns the frames of img, or nil if img is not a container
func FramesOf(img Image) []Frame {
	c, ok := img.(Container)
	if !ok {
		return nil
	}
	return c.Frames()
}

// ValidateFrames checks that frame keys are non-empty and unique
func ValidateFrames(frames []Frame) error {
	seen := make(map[string]bool, len(frames))
	for i, f := range frames {
		if f.Key == "" {
			return fmt.Errorf("%w: frame %d has an empty key", ErrInvalidParameter, i)
		}
		if seen[f.Key] {
			return fmt.Errorf("%w: duplicate frame key %q", ErrInvalidParameter, f.Key)
		}
		if f.Image == nil {
			return fmt.Errorf("%w: frame %q has no image", ErrInvalidParameter, f.Key)
		}
		seen[f.Key] = true
	}
	return nil
}
