package dicom

import (
	"encoding/binary"
	"fmt"
	"image/color"

	"github.com/cocosip/go-pixel-golden/codec"
)

// Photometric interpretations understood by the pixel conversion
const (
	Monochrome1 = "MONOCHROME1"
	Monochrome2 = "MONOCHROME2"
	RGB         = "RGB"
	YBRFull     = "YBR_FULL"
)

// FrameInfo describes the native layout of one frame
type FrameInfo struct {
	Width         int
	Height        int
	Samples       int
	BitsAllocated int
	BitsStored    int
	Signed        bool
	Photometric   string
	Planar        int // 0 = interleaved, 1 = one plane per sample
}

func (fi FrameInfo) bytesPerSample() int {
	return (fi.BitsAllocated + 7) / 8
}

// FrameLength returns the native byte length of one frame
func (fi FrameInfo) FrameLength() int {
	return fi.Width * fi.Height * fi.Samples * fi.bytesPerSample()
}

func (fi FrameInfo) validate() error {
	if fi.Width <= 0 || fi.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", codec.ErrInvalidParameter, fi.Width, fi.Height)
	}
	if fi.BitsStored <= 0 || fi.BitsStored > fi.BitsAllocated {
		return fmt.Errorf("%w: bits stored %d, allocated %d", codec.ErrInvalidParameter, fi.BitsStored, fi.BitsAllocated)
	}
	switch {
	case fi.Samples == 1 && (fi.BitsAllocated == 8 || fi.BitsAllocated == 16):
		if fi.Photometric != Monochrome1 && fi.Photometric != Monochrome2 {
			return fmt.Errorf("%w: photometric %q with one sample", codec.ErrInvalidParameter, fi.Photometric)
		}
	case fi.Samples == 3 && fi.BitsAllocated == 8:
		if fi.Photometric != RGB && fi.Photometric != YBRFull {
			return fmt.Errorf("%w: photometric %q with three samples", codec.ErrInvalidParameter, fi.Photometric)
		}
	default:
		return fmt.Errorf("%w: %d samples of %d bits", codec.ErrInvalidParameter, fi.Samples, fi.BitsAllocated)
	}
	return nil
}

func toPixels(data []byte, fi FrameInfo, format codec.PixelFormat) ([]byte, error) {
	if err := codec.CheckFormat(format); err != nil {
		return nil, err
	}
	n := fi.Width * fi.Height
	buf := make([]byte, codec.FrameSize(fi.Width, fi.Height, format))

	if fi.Samples == 1 {
		for i := 0; i < n; i++ {
			g := grayLevel(data, i, fi)
			codec.PutPixel(buf, i, format, g, g, g, 0xFF)
		}
		return buf, nil
	}

	for i := 0; i < n; i++ {
		var c0, c1, c2 uint8
		if fi.Planar == 1 {
			c0, c1, c2 = data[i], data[n+i], data[2*n+i]
		} else {
			c0, c1, c2 = data[3*i], data[3*i+1], data[3*i+2]
		}
		if fi.Photometric == YBRFull {
			c0, c1, c2 = color.YCbCrToRGB(c0, c1, c2)
		}
		codec.PutPixel(buf, i, format, c0, c1, c2, 0xFF)
	}
	return buf, nil
}

// grayLevel maps sample i to 8 bits. Stored values are masked to BitsStored,
// shifted into the unsigned range when signed, then scaled to 0..255.
func grayLevel(data []byte, i int, fi FrameInfo) uint8 {
	var v uint32
	if fi.BitsAllocated == 8 {
		v = uint32(data[i])
	} else {
		v = uint32(binary.LittleEndian.Uint16(data[2*i:]))
	}

	bs := uint(fi.BitsStored)
	v &= (1 << bs) - 1
	if fi.Signed {
		v ^= 1 << (bs - 1)
	}

	var g uint8
	if bs >= 8 {
		g = uint8(v >> (bs - 8))
	} else {
		g = uint8(v * 255 / ((1 << bs) - 1))
	}
	if fi.Photometric == Monochrome1 {
		g = 255 - g
	}
	return g
}
