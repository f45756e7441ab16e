// Package imaging implements the perceptual primitives the deduplicator
// decides with: image decoding, fixed-bin HSV color histograms, and a
// normalized-distance similarity score.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math"

	// Registered decoders; the dataset serves PNG, JPEG, GIF, BMP and WebP.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/nfnt/resize"
)

// Fixed histogram binning over HSV channels. Every histogram in a run uses
// the same shape, so scores are always comparing like with like.
const (
	hueBins = 8
	satBins = 4
	valBins = 4

	// Bins is the flattened histogram length.
	Bins = hueBins * satBins * valBins
)

// maxSample bounds the pixel grid a histogram is built from; larger images
// are downscaled first so giant assets do not dominate run time.
const maxSample = 256

// Decode parses image bytes into an image.Image. Corrupt or non-image
// payloads return an error; callers treat that as a dropped candidate, not
// a fatal condition.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Histogram is a fixed-bin distribution over HSV color channels,
// normalized to sum to 1.
type Histogram [Bins]float64

// NewHistogram computes the color histogram of img.
func NewHistogram(img image.Image) Histogram {
	var h Histogram
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return h
	}
	if b.Dx() > maxSample || b.Dy() > maxSample {
		img = resize.Thumbnail(maxSample, maxSample, img, resize.Bilinear)
		b = img.Bounds()
	}

	var total float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			hue, sat, val := rgbToHSV(float64(r)/65535, float64(g)/65535, float64(bl)/65535)
			h[binIndex(hue, sat, val)]++
			total++
		}
	}
	if total > 0 {
		for i := range h {
			h[i] /= total
		}
	}
	return h
}

// Similarity scores two histograms in [0,1]; 1 means identical
// distributions. The score is 1 minus half the L1 distance, which for
// unit-sum histograms is exactly the shared probability mass.
func (h Histogram) Similarity(other Histogram) float64 {
	var dist float64
	for i := range h {
		dist += math.Abs(h[i] - other[i])
	}
	return 1 - dist/2
}

func binIndex(hue, sat, val float64) int {
	hb := clampBin(int(hue/360*hueBins), hueBins)
	sb := clampBin(int(sat*satBins), satBins)
	vb := clampBin(int(val*valBins), valBins)
	return hb*satBins*valBins + sb*valBins + vb
}

func clampBin(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// rgbToHSV converts unit-range RGB to hue in [0,360) and unit-range
// saturation/value.
func rgbToHSV(r, g, b float64) (hue, sat, val float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	val = maxC
	delta := maxC - minC
	if delta == 0 {
		return 0, 0, val
	}
	if maxC > 0 {
		sat = delta / maxC
	}
	switch maxC {
	case r:
		hue = math.Mod((g-b)/delta, 6)
	case g:
		hue = (b-r)/delta + 2
	default:
		hue = (r-g)/delta + 4
	}
	hue *= 60
	if hue < 0 {
		hue += 360
	}
	return hue, sat, val
}

