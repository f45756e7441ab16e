// Package palette renders a horizontal strip of each logo's five main
// colors, sorted by a stepped hue/luminosity key so adjacent blocks read
// as a gradient.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/brandscope/logoharvest/internal/analyze"
	"github.com/brandscope/logoharvest/internal/imaging"
	"github.com/brandscope/logoharvest/internal/logo"
)

const (
	colorCount = 5
	// stepRepetitions quantizes the sort key; 8 matches the stripe
	// granularity the reports were tuned against.
	stepRepetitions = 8
)

// Renderer writes one palette strip PNG per stored logo.
type Renderer struct {
	store  logo.Store
	outDir string
	logger *zap.Logger
}

// New constructs a Renderer writing strips under outDir.
func New(store logo.Store, outDir string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{store: store, outDir: outDir, logger: logger}
}

// RenderAll renders a palette for every stored logo. Individual failures
// are logged and skipped; the first filesystem error aborts.
func (r *Renderer) RenderAll() (int, error) {
	if err := os.MkdirAll(r.outDir, 0o750); err != nil {
		return 0, fmt.Errorf("create palette dir: %w", err)
	}

	rendered := 0
	for _, entry := range r.store.List() {
		if err := r.renderOne(entry); err != nil {
			r.logger.Warn("palette skipped",
				zap.String("brand", string(entry.Brand)),
				zap.Error(err),
			)
			continue
		}
		rendered++
	}
	r.logger.Info("palettes rendered", zap.Int("count", rendered))
	return rendered, nil
}

func (r *Renderer) renderOne(entry logo.StoreEntry) error {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return fmt.Errorf("read logo: %w", err)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return fmt.Errorf("decode logo: %w", err)
	}

	clusters := analyze.MainColors(img, colorCount)
	if len(clusters) == 0 {
		return fmt.Errorf("empty image")
	}
	colors := make([]color.RGBA, len(clusters))
	for i, c := range clusters {
		colors[i] = c.Color
	}
	SortColors(colors)

	strip := Render(colors, img.Bounds().Dx(), img.Bounds().Dy())

	path := filepath.Join(r.outDir, filepath.Base(entry.Path))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create palette file: %w", err)
	}
	if err := png.Encode(f, strip); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode palette png: %w", err)
	}
	return f.Close()
}

// Render draws the colors as equal-width blocks on a white strip sized
// relative to the source logo: full width, one sixth of the height.
func Render(colors []color.RGBA, logoWidth, logoHeight int) *image.RGBA {
	if logoWidth < len(colors) {
		logoWidth = len(colors)
	}
	stripHeight := logoHeight / 6
	if stripHeight < 1 {
		stripHeight = 1
	}

	strip := image.NewRGBA(image.Rect(0, 0, logoWidth, stripHeight))
	draw.Draw(strip, strip.Bounds(), image.White, image.Point{}, draw.Src)

	blockWidth := logoWidth / len(colors)
	x := 0
	for _, c := range colors {
		block := image.Rect(x, 0, x+blockWidth, stripHeight)
		draw.Draw(strip, block, image.NewUniform(c), image.Point{}, draw.Src)
		x += blockWidth
	}
	return strip
}

// SortColors orders colors by the stepped (hue, luminosity, value) key.
func SortColors(colors []color.RGBA) {
	sort.SliceStable(colors, func(i, j int) bool {
		hi, li, vi := stepKey(colors[i])
		hj, lj, vj := stepKey(colors[j])
		if hi != hj {
			return hi < hj
		}
		if li != lj {
			return li < lj
		}
		return vi < vj
	})
}

// stepKey quantizes hue, perceptual luminosity, and value into coarse
// steps. Sorting by the raw key alone interleaves light and dark colors;
// the stepped key keeps similar hues together.
func stepKey(c color.RGBA) (int, int, int) {
	r := float64(c.R)
	g := float64(c.G)
	b := float64(c.B)

	lum := math.Sqrt(0.241*r + 0.691*g + 0.068*b)
	h, _, v := rgbToHSV(c)

	return int(h * stepRepetitions), int(lum * stepRepetitions), int(v * stepRepetitions)
}

// rgbToHSV converts to HSV with all components in [0, 1].
func rgbToHSV(c color.RGBA) (h, s, v float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	d := max - min
	if max > 0 {
		s = d / max
	}
	if d == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}
