package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/logoharvest/internal/imaging"
)

func solidImage(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// splitImage paints the left half one color and the right half another.
func splitImage(left, right color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	t.Parallel()

	img := solidImage(color.RGBA{R: 255, A: 255}, 16, 16)
	decoded, err := imaging.Decode(pngBytes(t, img))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestDecode_CorruptBytes(t *testing.T) {
	t.Parallel()

	_, err := imaging.Decode([]byte("<html>not an image</html>"))
	require.Error(t, err)

	_, err = imaging.Decode(nil)
	require.Error(t, err)
}

func TestHistogram_NormalizedToOne(t *testing.T) {
	t.Parallel()

	h := imaging.NewHistogram(splitImage(
		color.RGBA{R: 255, A: 255},
		color.RGBA{B: 255, A: 255},
		32, 32,
	))
	var sum float64
	for _, v := range h {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSimilarity_IdenticalIsOne(t *testing.T) {
	t.Parallel()

	img := splitImage(color.RGBA{R: 200, G: 40, A: 255}, color.RGBA{G: 180, A: 255}, 20, 20)
	h := imaging.NewHistogram(img)
	assert.InDelta(t, 1.0, h.Similarity(h), 1e-9)
}

func TestSimilarity_DisjointColorsIsZero(t *testing.T) {
	t.Parallel()

	red := imaging.NewHistogram(solidImage(color.RGBA{R: 255, A: 255}, 16, 16))
	blue := imaging.NewHistogram(solidImage(color.RGBA{B: 255, A: 255}, 16, 16))
	assert.InDelta(t, 0.0, red.Similarity(blue), 1e-9)
}

func TestSimilarity_Symmetric(t *testing.T) {
	t.Parallel()

	a := imaging.NewHistogram(splitImage(color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}, 16, 16))
	b := imaging.NewHistogram(solidImage(color.RGBA{R: 255, A: 255}, 16, 16))
	assert.InDelta(t, a.Similarity(b), b.Similarity(a), 1e-9)
}

func TestSimilarity_SharedMass(t *testing.T) {
	t.Parallel()

	// Half the pixels agree, so exactly half the histogram mass is shared.
	a := imaging.NewHistogram(splitImage(color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}, 16, 16))
	b := imaging.NewHistogram(solidImage(color.RGBA{R: 255, A: 255}, 16, 16))
	assert.InDelta(t, 0.5, a.Similarity(b), 1e-9)
}

func TestHistogram_DeterministicForSameImage(t *testing.T) {
	t.Parallel()

	img := splitImage(color.RGBA{R: 10, G: 200, B: 90, A: 255}, color.RGBA{R: 240, G: 240, B: 240, A: 255}, 48, 48)
	first := imaging.NewHistogram(img)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, imaging.NewHistogram(img))
	}
}

func TestHistogram_LargeImageDownscaled(t *testing.T) {
	t.Parallel()

	// A large solid image must produce the same distribution as a small one.
	small := imaging.NewHistogram(solidImage(color.RGBA{R: 255, A: 255}, 16, 16))
	large := imaging.NewHistogram(solidImage(color.RGBA{R: 255, A: 255}, 1000, 700))
	assert.InDelta(t, 1.0, small.Similarity(large), 0.01)
}
