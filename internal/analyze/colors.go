package analyze

import "image/color"

// BroadColor is one of the seven coarse buckets logos are grouped into.
type BroadColor string

// The broad color buckets with their anchor RGB values.
const (
	Red    BroadColor = "Red"
	Orange BroadColor = "Orange"
	Yellow BroadColor = "Yellow"
	Green  BroadColor = "Green"
	Blue   BroadColor = "Blue"
	White  BroadColor = "White"
	Black  BroadColor = "Black"
)

// broadColors maps each bucket to its anchor point in RGB space.
var broadColors = map[BroadColor]color.RGBA{
	Red:    {R: 220, G: 20, B: 60},
	Orange: {R: 255, G: 165, B: 0},
	Yellow: {R: 255, G: 255, B: 0},
	Green:  {R: 34, G: 139, B: 34},
	Blue:   {R: 30, G: 144, B: 255},
	White:  {R: 255, G: 255, B: 255},
	Black:  {R: 0, G: 0, B: 0},
}

// colorWarmth scores each bucket: warm +1, cool -1, neutral 0.
var colorWarmth = map[BroadColor]float64{
	Red:    1,
	Orange: 1,
	Yellow: 1,
	Green:  -1,
	Blue:   -1,
	White:  0,
	Black:  0,
}

// broadColorOrder fixes iteration order for reports.
var broadColorOrder = []BroadColor{Red, Orange, Yellow, Green, Blue, White, Black}

// ClosestBroadColor returns the bucket whose anchor is nearest to c by
// Euclidean distance in RGB space. Ties resolve to the first bucket in
// report order, so the result is deterministic.
func ClosestBroadColor(c color.RGBA) BroadColor {
	best := broadColorOrder[0]
	bestDist := -1
	for _, name := range broadColorOrder {
		anchor := broadColors[name]
		dr := int(c.R) - int(anchor.R)
		dg := int(c.G) - int(anchor.G)
		db := int(c.B) - int(anchor.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = name
		}
	}
	return best
}
