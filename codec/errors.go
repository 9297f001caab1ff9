package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrDecoderNotFound is returned when no decoder is registered for a name or extension
	ErrDecoderNotFound = errors.New("decoder not found")

	// ErrInvalidParameter is returned when decoding parameters are invalid
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedFormat is returned when a pixel format is not supported
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
)

// DecodeError reports a failure raised by a decoder. Err is the decoder's
// own error, left untouched so that errors.Is and errors.As see through it.
type DecodeError struct {
	Decoder string
	Sample  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Sample == "" {
		return fmt.Sprintf("%s: decode failed: %v", e.Decoder, e.Err)
	}
	return fmt.Sprintf("%s: decode %s failed: %v", e.Decoder, e.Sample, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode runs d on data and wraps any failure in a *DecodeError
func Decode(d Decoder, sample string, data []byte) (Image, error) {
	img, err := d.Decode(data)
	if err != nil {
		return nil, &DecodeError{Decoder: d.Name(), Sample: sample, Err: err}
	}
	return img, nil
}

// DecodeFile decodes the sample at path, letting d read it from disk itself
// when it implements FileDecoder. The sample handle is closed on every path.
func DecodeFile(d Decoder, sample, path string) (Image, error) {
	if fd, ok := d.(FileDecoder); ok {
		img, err := fd.DecodeFile(path)
		if err != nil {
			return nil, &DecodeError{Decoder: d.Name(), Sample: sample, Err: err}
		}
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample %s: %w", sample, err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read sample %s: %w", sample, err)
	}
	return Decode(d, sample, data)
}
