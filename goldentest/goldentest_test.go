package goldentest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-pixel-golden/codec"
	_ "github.com/cocosip/go-pixel-golden/codec/raster"
	"github.com/cocosip/go-pixel-golden/golden"
	"github.com/cocosip/go-pixel-golden/scenario"
)

// recorder captures verdicts reported through testing.TB
type recorder struct {
	testing.TB
	errors  []string
	skipped bool
}

func (r *recorder) Error(args ...any) {
	r.errors = append(r.errors, fmt.Sprint(args...))
}

func (r *recorder) Skip(args ...any) {
	r.skipped = true
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// corpus writes a harness config plus one PNG sample per name with a matching golden
func corpus(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, name := range names {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
		for p := 0; p < len(img.Pix); p++ {
			img.Pix[p] = uint8(p*7 + i)
		}
		img.SetNRGBA(0, 0, color.NRGBA{A: 255})

		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		writeFile(t, filepath.Join(dir, "samples", filepath.FromSlash(name)), buf.Bytes())

		pix, err := codec.FromImage(img, codec.ARGB32)
		require.NoError(t, err)
		writeFile(t, filepath.Join(dir, "golden", filepath.FromSlash(golden.Name(name))), pix)
	}
	writeFile(t, filepath.Join(dir, "harness.yaml"),
		[]byte("samples_dir: samples\ngolden_dir: golden\nskip_missing_samples: true\nparallelism: 2\n"))
	return filepath.Join(dir, "harness.yaml")
}

func TestRunSuite(t *testing.T) {
	harness := corpus(t, "gimp/alpha_4x3.png", "iphone/photo_4x3.png")
	suite := filepath.Join(filepath.Dir(harness), "suite.yaml")
	writeFile(t, suite, []byte(`
scenarios:
  - sample: gimp/alpha_4x3.png
    category: alpha
  - sample: iphone/photo_4x3.png
  - sample: iphone/not_collected.png
`))

	RunSuite(t, NewRunner(t, harness), suite)
}

func TestCheck(t *testing.T) {
	harness := corpus(t, "gimp/alpha_4x3.png")
	r := NewRunner(t, harness)

	t.Run("pass", func(t *testing.T) {
		rec := &recorder{TB: t}
		rep := Check(rec, r, scenario.Scenario{Sample: "gimp/alpha_4x3.png"})
		assert.Equal(t, scenario.Passed, rep.Status)
		assert.Empty(t, rec.errors)
		assert.False(t, rec.skipped)
	})

	t.Run("missing sample skips", func(t *testing.T) {
		rec := &recorder{TB: t}
		rep := Check(rec, r, scenario.Scenario{Sample: "gimp/absent.png"})
		assert.Equal(t, scenario.Skipped, rep.Status)
		assert.True(t, rec.skipped)
		assert.Empty(t, rec.errors)
	})

	t.Run("mismatch fails", func(t *testing.T) {
		rec := &recorder{TB: t}
		rep := Check(rec, r, scenario.Scenario{Sample: "gimp/alpha_4x3.png", Format: "rgb24"})
		assert.Equal(t, scenario.Failed, rep.Status)
		require.Len(t, rec.errors, 1)
		assert.Contains(t, rec.errors[0], "reference length does not match")
	})
}
