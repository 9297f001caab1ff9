package dicom

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

// TestPixelData is an in-memory imagetypes.PixelData for testing
type TestPixelData struct {
	frames       [][]byte
	frameInfo    *imagetypes.FrameInfo
	encapsulated bool
}

// NewTestPixelData creates an empty TestPixelData described by frameInfo
func NewTestPixelData(frameInfo *imagetypes.FrameInfo) *TestPixelData {
	return &TestPixelData{frameInfo: frameInfo}
}

// GetFrame returns the frame at frameIndex (0-indexed)
func (p *TestPixelData) GetFrame(frameIndex int) ([]byte, error) {
	if frameIndex < 0 || frameIndex >= len(p.frames) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", frameIndex, len(p.frames))
	}
	return p.frames[frameIndex], nil
}

// AddFrame appends a frame
func (p *TestPixelData) AddFrame(frameData []byte) error {
	p.frames = append(p.frames, frameData)
	return nil
}

// FrameCount returns the number of frames
func (p *TestPixelData) FrameCount() int {
	return len(p.frames)
}

// GetFrameInfo returns the frame metadata
func (p *TestPixelData) GetFrameInfo() *imagetypes.FrameInfo {
	return p.frameInfo
}

// IsEncapsulated reports whether the frames are still compressed
func (p *TestPixelData) IsEncapsulated() bool {
	return p.encapsulated
}

// SetEncapsulated marks the frames as compressed
func (p *TestPixelData) SetEncapsulated(v bool) {
	p.encapsulated = v
}
