package codec

import (
	"fmt"
	"image"
	"image/color"
)

// FromImage materializes img as a pixel buffer in format. Colors are converted
// to straight (non-premultiplied) 8-bit channels before packing.
func FromImage(img image.Image, format PixelFormat) ([]byte, error) {
	if err := CheckFormat(format); err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]byte, FrameSize(w, h, format))

	// Fast path: NRGBA already holds straight 8-bit channels
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[off : off+w*4]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+4]
				PutPixel(buf, y*w+x, format, p[0], p[1], p[2], p[3])
			}
		}
		return buf, nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			PutPixel(buf, y*w+x, format, c.R, c.G, c.B, c.A)
		}
	}
	return buf, nil
}

// PutPixel writes one pixel at pixel index i of buf in format
func PutPixel(buf []byte, i int, format PixelFormat, r, g, b, a uint8) {
	o := i * format.BytesPerPixel
	switch format {
	case ARGB32:
		buf[o], buf[o+1], buf[o+2], buf[o+3] = a, r, g, b
	case RGBA32:
		buf[o], buf[o+1], buf[o+2], buf[o+3] = r, g, b, a
	case BGRA32:
		buf[o], buf[o+1], buf[o+2], buf[o+3] = b, g, r, a
	case RGB24:
		buf[o], buf[o+1], buf[o+2] = r, g, b
	case Gray8:
		buf[o] = luma(r, g, b)
	}
}

// luma matches the weights of image/color.GrayModel
func luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}

// CheckFormat reports whether format is one of the predefined formats
func CheckFormat(format PixelFormat) error {
	for _, f := range pixelFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format.Name)
}
