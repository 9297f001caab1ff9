// Package raster adapts the image.Decode format registry (PNG, JPEG, GIF, QOI)
// to the codec.Decoder contract. Animated GIFs decode to containers whose
// frames are composited onto the logical screen.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"

	_ "github.com/xfmoulet/qoi"

	"github.com/cocosip/go-pixel-golden/codec"
)

var _ codec.Decoder = (*Decoder)(nil)

const rasterName = "raster"

// Decoder decodes any format registered with the image package
type Decoder struct{}

// NewDecoder creates a new raster decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Name returns the decoder name
func (d *Decoder) Name() string {
	return rasterName
}

// Extensions returns the sample extensions routed to this decoder
func (d *Decoder) Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".qoi"}
}

// Decode decodes data. Multi-frame GIFs return a codec.Container.
func (d *Decoder) Decode(data []byte) (codec.Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if len(g.Image) > 1 {
			return newAnimation(g)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Image{Source: img}, nil
}

// Image is a decoded still image
type Image struct {
	Source image.Image
}

// Width returns the image width
func (i *Image) Width() int {
	return i.Source.Bounds().Dx()
}

// Height returns the image height
func (i *Image) Height() int {
	return i.Source.Bounds().Dy()
}

// Pixels converts the image to format
func (i *Image) Pixels(format codec.PixelFormat) ([]byte, error) {
	return codec.FromImage(i.Source, format)
}

// Animation is a multi-frame GIF. Its primary image is the first frame.
type Animation struct {
	Image
	frames []codec.Frame
}

// Frames returns the composited frames keyed "0".."n-1"
func (a *Animation) Frames() []codec.Frame {
	return a.frames
}

func newAnimation(g *gif.GIF) (*Animation, error) {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
		for _, p := range g.Image[1:] {
			bounds = bounds.Union(p.Bounds())
		}
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]codec.Frame, 0, len(g.Image))
	for i, p := range g.Image {
		if !p.Bounds().In(bounds) {
			return nil, fmt.Errorf("gif frame %d bounds %v outside screen %v", i, p.Bounds(), bounds)
		}
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var saved *image.RGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneRGBA(canvas)
		}

		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)
		frames = append(frames, codec.Frame{
			Key:   strconv.Itoa(i),
			Image: &Image{Source: cloneRGBA(canvas)},
		})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}

	first := frames[0].Image.(*Image)
	return &Animation{Image: *first, frames: frames}, nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

func init() {
	codec.Register(NewDecoder())
}
