// Package dicom adapts DICOM files to the codec.Decoder contract. Each DICOM
// frame becomes one codec.Frame keyed by its zero-based index; the primary
// image is frame 0.
//
// Encapsulated transfer syntaxes are transcoded to Explicit VR Little Endian
// through the go-dicom codec registry, so the decoders under test must be
// registered there (typically by blank-importing their packages).
package dicom

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging"
	dcmcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-pixel-golden/codec"
)

var (
	_ codec.FileDecoder = (*Decoder)(nil)
	_ codec.Container   = (*Image)(nil)
)

const dicomName = "dicom"

const largeObjectSize = 100 * 1024 * 1024

// Decoder decodes DICOM pixel data
type Decoder struct{}

// NewDecoder creates a new DICOM decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Name returns the decoder name
func (d *Decoder) Name() string {
	return dicomName
}

// Extensions returns the sample extensions routed to this decoder
func (d *Decoder) Extensions() []string {
	return []string{".dcm", ".dicom"}
}

// Decode spools data to a temporary file and decodes it with DecodeFile
func (d *Decoder) Decode(data []byte) (codec.Image, error) {
	f, err := os.CreateTemp("", "golden-*.dcm")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return d.DecodeFile(f.Name())
}

// DecodeFile parses the DICOM file at path and extracts every frame
func (d *Decoder) DecodeFile(path string) (codec.Image, error) {
	res, err := parser.ParseFile(path,
		parser.WithReadOption(parser.ReadAll),
		parser.WithLargeObjectSize(largeObjectSize),
	)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}

	ds := res.Dataset
	if res.TransferSyntax != nil && res.TransferSyntax.IsEncapsulated() {
		tr := dcmcodec.NewTranscoder(res.TransferSyntax, transfer.ExplicitVRLittleEndian)
		newDS, err := tr.Transcode(ds)
		if err != nil {
			return nil, fmt.Errorf("transcode %s failed: %w", res.TransferSyntax.UID().UID(), err)
		}
		ds = newDS
	}

	pd, err := imaging.CreatePixelData(ds)
	if err != nil {
		return nil, fmt.Errorf("pixel data: %w", err)
	}

	return FromPixelData(pd)
}

// FromPixelData wraps the native frames held by pd, typically the destination
// of a go-dicom codec's Decode.
func FromPixelData(pd imagetypes.PixelData) (*Image, error) {
	if pd == nil {
		return nil, fmt.Errorf("%w: nil pixel data", codec.ErrInvalidParameter)
	}
	if pd.IsEncapsulated() {
		return nil, fmt.Errorf("%w: pixel data is still encapsulated", codec.ErrInvalidParameter)
	}
	fi := pd.GetFrameInfo()
	if fi == nil {
		return nil, fmt.Errorf("%w: pixel data has no frame info", codec.ErrInvalidParameter)
	}

	info := FrameInfo{
		Width:         int(fi.Width),
		Height:        int(fi.Height),
		Samples:       int(fi.SamplesPerPixel),
		BitsAllocated: int(fi.BitsAllocated),
		BitsStored:    int(fi.BitsStored),
		Signed:        fi.PixelRepresentation != 0,
		Photometric:   string(fi.PhotometricInterpretation),
		Planar:        int(fi.PlanarConfiguration),
	}

	raw := make([][]byte, 0, pd.FrameCount())
	for i := 0; i < pd.FrameCount(); i++ {
		frame, err := pd.GetFrame(i)
		if err != nil {
			return nil, fmt.Errorf("failed to get frame %d: %w", i, err)
		}
		raw = append(raw, frame)
	}
	return NewImage(info, raw)
}

// Image is a decoded (possibly multi-frame) DICOM image
type Image struct {
	info   FrameInfo
	frames []codec.Frame
}

// NewImage wraps native frames described by info
func NewImage(info FrameInfo, raw [][]byte) (*Image, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("pixel data is empty (no frames)")
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	img := &Image{info: info, frames: make([]codec.Frame, len(raw))}
	for i, data := range raw {
		if len(data) < info.FrameLength() {
			return nil, fmt.Errorf("frame %d has %d bytes, want %d", i, len(data), info.FrameLength())
		}
		img.frames[i] = codec.Frame{
			Key:   strconv.Itoa(i),
			Image: &frameImage{info: info, data: data},
		}
	}
	return img, nil
}

// Info returns the frame description
func (i *Image) Info() FrameInfo {
	return i.info
}

// Width returns the frame width
func (i *Image) Width() int {
	return i.info.Width
}

// Height returns the frame height
func (i *Image) Height() int {
	return i.info.Height
}

// Pixels converts frame 0 to format
func (i *Image) Pixels(format codec.PixelFormat) ([]byte, error) {
	return i.frames[0].Image.Pixels(format)
}

// Frames returns one frame per DICOM frame, keyed "0".."n-1"
func (i *Image) Frames() []codec.Frame {
	return i.frames
}

type frameImage struct {
	info FrameInfo
	data []byte
}

func (f *frameImage) Width() int {
	return f.info.Width
}

func (f *frameImage) Height() int {
	return f.info.Height
}

func (f *frameImage) Pixels(format codec.PixelFormat) ([]byte, error) {
	return toPixels(f.data, f.info, format)
}

func init() {
	codec.Register(NewDecoder())
}
