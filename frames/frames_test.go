package frames

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-pixel-golden/codec"
	"github.com/cocosip/go-pixel-golden/compare"
	"github.com/cocosip/go-pixel-golden/golden"
)

const base = "nokia/random_collection_1440x960.heic"

func solid(c color.NRGBA) *codec.TestImage {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return codec.NewTestImage(img)
}

// collection builds a three-frame container keyed "0", "1", "2" and writes
// matching goldens for it.
func collection(t *testing.T) (*codec.TestImage, string) {
	t.Helper()
	root := t.TempDir()
	c := codec.NewTestImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	colors := []color.NRGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 128}}
	for i, col := range colors {
		frame := solid(col)
		c.AddFrame(frame)
		pix, err := codec.FromImage(frame.Source, codec.ARGB32)
		require.NoError(t, err)
		name := golden.Name(Identifier(base, DefaultSeparator, string(rune('0'+i))))
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, pix, 0o644))
	}
	return c, root
}

func newWalker(root string, policy Policy) *Walker {
	return &Walker{
		Store:      golden.NewStore(root),
		Comparator: compare.Comparator{BlockSize: 4},
		Format:     codec.ARGB32,
		Policy:     policy,
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "img.heic_0", Identifier("img.heic", "_", "0"))
	assert.Equal(t, "img.heic#tile-3", Identifier("img.heic", "#", "tile-3"))
}

func TestWalkAllFramesMatch(t *testing.T) {
	c, root := collection(t)

	results, err := newWalker(root, CollectAll).Walk(context.Background(), base, c.Frames())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, string(rune('0'+i)), r.Key)
		assert.Equal(t, Identifier(base, "_", r.Key), r.Identifier)
		assert.True(t, r.Passed(), "frame %s: %v", r.Key, r.Failure())
	}
	assert.NoError(t, Aggregate(results))
}

func TestWalkMissingReference(t *testing.T) {
	c, root := collection(t)
	require.NoError(t, os.Remove(filepath.Join(root, filepath.FromSlash(golden.Name(base+"_1")))))

	results, err := newWalker(root, CollectAll).Walk(context.Background(), base, c.Frames())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Passed())
	assert.ErrorIs(t, results[1].Failure(), golden.ErrReferenceNotFound)
	assert.True(t, results[2].Passed())

	agg := Aggregate(results)
	require.Error(t, agg)
	var frameErr *FrameError
	require.ErrorAs(t, agg, &frameErr)
	assert.Equal(t, "1", frameErr.Key)
	assert.ErrorIs(t, agg, golden.ErrReferenceNotFound)
}

func TestWalkFailFastSkipsRemainingFrames(t *testing.T) {
	c, root := collection(t)
	// corrupt frame 0's reference
	path := filepath.Join(root, filepath.FromSlash(golden.Name(base+"_0")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[9] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	results, err := newWalker(root, FailFast).Walk(context.Background(), base, c.Frames())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, compare.ContentMismatch, results[0].Compare.Verdict)
	assert.Equal(t, int64(8), results[0].Compare.Offset)
	assert.Equal(t, Skipped, results[1].Status)
	assert.Equal(t, Skipped, results[2].Status)
	assert.NoError(t, results[1].Failure())

	for _, f := range c.Frames()[1:] {
		assert.Zero(t, f.Image.(*codec.TestImage).PixelCalls(), "frame %s was extracted", f.Key)
	}
}

func TestWalkCollectAllReportsEveryFailure(t *testing.T) {
	c, root := collection(t)
	for _, key := range []string{"0", "2"} {
		path := filepath.Join(root, filepath.FromSlash(golden.Name(base+"_"+key)))
		require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))
	}

	results, err := newWalker(root, CollectAll).Walk(context.Background(), base, c.Frames())
	require.NoError(t, err)

	failures := Failures(results)
	require.Len(t, failures, 2)
	var lenErr *compare.LengthMismatchError
	require.ErrorAs(t, failures[0], &lenErr)
	assert.Equal(t, int64(3), lenErr.Expected)
	assert.Equal(t, int64(24), lenErr.Actual)
	assert.True(t, results[1].Passed())
	assert.ErrorIs(t, JoinFailures(results), compare.ErrMismatch)
}

func TestWalkPixelExtractionError(t *testing.T) {
	c, root := collection(t)
	boom := errors.New("unsupported chroma")
	c.Frames()[1].Image.(*codec.TestImage).Err = boom

	results, err := newWalker(root, CollectAll).Walk(context.Background(), base, c.Frames())
	require.NoError(t, err)
	assert.ErrorIs(t, results[1].Failure(), boom)
}

func TestWalkRejectsDuplicateKeys(t *testing.T) {
	img := solid(color.NRGBA{A: 255})
	frames := []codec.Frame{{Key: "0", Image: img}, {Key: "0", Image: img}}

	_, err := newWalker(t.TempDir(), CollectAll).Walk(context.Background(), base, frames)
	assert.ErrorIs(t, err, codec.ErrInvalidParameter)
}

func TestWalkHonorsCancellationBetweenFrames(t *testing.T) {
	c, root := collection(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := newWalker(root, CollectAll).Walk(ctx, base, c.Frames())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestWalkIsDeterministic(t *testing.T) {
	c, root := collection(t)
	w := newWalker(root, CollectAll)

	first, err := w.Walk(context.Background(), base, c.Frames())
	require.NoError(t, err)
	second, err := w.Walk(context.Background(), base, c.Frames())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("fail-fast")
	require.NoError(t, err)
	assert.Equal(t, FailFast, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, CollectAll, p)

	_, err = ParsePolicy("stop")
	assert.Error(t, err)
}
