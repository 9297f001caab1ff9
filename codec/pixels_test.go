package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestFromImagePixelOrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	tests := []struct {
		format PixelFormat
		want   []byte
	}{
		{ARGB32, []byte{4, 1, 2, 3, 255, 10, 20, 30}},
		{RGBA32, []byte{1, 2, 3, 4, 10, 20, 30, 255}},
		{BGRA32, []byte{3, 2, 1, 4, 30, 20, 10, 255}},
		{RGB24, []byte{1, 2, 3, 10, 20, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.format.Name, func(t *testing.T) {
			got, err := FromImage(img, tt.format)
			if err != nil {
				t.Fatalf("FromImage: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("FromImage(%s) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestFromImageUnpremultipliesAlpha(t *testing.T) {
	// RGBA stores premultiplied values; 50% alpha red is {128,0,0,128}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 128, A: 128})

	got, err := FromImage(img, ARGB32)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	want := []byte{128, 255, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("FromImage(ARGB32) = %v, want %v", got, want)
	}
}

func TestFromImageSubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(2, 2, color.NRGBA{R: 9, G: 8, B: 7, A: 6})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	got, err := FromImage(sub, RGBA32)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if len(got) != FrameSize(2, 2, RGBA32) {
		t.Fatalf("len = %d, want %d", len(got), FrameSize(2, 2, RGBA32))
	}
	if !bytes.Equal(got[:4], []byte{9, 8, 7, 6}) {
		t.Errorf("first pixel = %v, want [9 8 7 6]", got[:4])
	}
}

func TestFromImageGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []byte{0, 128, 255}

	got, err := FromImage(img, Gray8)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if !bytes.Equal(got, img.Pix) {
		t.Errorf("FromImage(Gray8) = %v, want %v", got, img.Pix)
	}
}

func TestFromImageRejectsUnknownFormat(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	_, err := FromImage(img, PixelFormat{Name: "yuv420", BytesPerPixel: 2})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FromImage error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestParsePixelFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    PixelFormat
		wantErr bool
	}{
		{"argb32", ARGB32, false},
		{" ARGB32 ", ARGB32, false},
		{"Gray8", Gray8, false},
		{"cmyk", PixelFormat{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePixelFormat(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePixelFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePixelFormat(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidateFrames(t *testing.T) {
	img := NewTestImage(image.NewGray(image.Rect(0, 0, 1, 1)))

	tests := []struct {
		name    string
		frames  []Frame
		wantErr bool
	}{
		{"empty", nil, false},
		{"unique", []Frame{{"0", img}, {"1", img}}, false},
		{"duplicate", []Frame{{"0", img}, {"0", img}}, true},
		{"empty key", []Frame{{"", img}}, true},
		{"nil image", []Frame{{"0", nil}}, true},
	}
	for _, tt := range tests {
		err := ValidateFrames(tt.frames)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: ValidateFrames error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
