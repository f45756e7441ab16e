package analyze

import (
	"image"
	"image/color"
	"sort"

	"github.com/nfnt/resize"
)

const (
	// kmeansMaxSide bounds the pixel count fed to clustering.
	kmeansMaxSide = 128
	kmeansMaxIter = 20
)

// Cluster is one dominant color with the number of pixels assigned to it.
type Cluster struct {
	Color  color.RGBA
	Weight int
}

// MainColors extracts the k dominant colors of img via k-means clustering,
// ordered by descending pixel weight. Seeding is deterministic (evenly
// spaced over the pixel sequence), so repeated calls on the same image
// return identical clusters.
func MainColors(img image.Image, k int) []Cluster {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Dx() > kmeansMaxSide || b.Dy() > kmeansMaxSide {
		img = resize.Thumbnail(kmeansMaxSide, kmeansMaxSide, img, resize.Bilinear)
		b = img.Bounds()
	}

	pixels := make([][3]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pixels = append(pixels, [3]float64{
				float64(r >> 8),
				float64(g >> 8),
				float64(bl >> 8),
			})
		}
	}
	if len(pixels) == 0 {
		return nil
	}
	if k > len(pixels) {
		k = len(pixels)
	}

	centroids := make([][3]float64, k)
	for i := range centroids {
		centroids[i] = pixels[i*len(pixels)/k]
	}

	assign := make([]int, len(pixels))
	counts := make([]int, k)
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, p := range pixels {
			best, bestDist := 0, -1.0
			for c, cen := range centroids {
				d := sqDist(p, cen)
				if bestDist < 0 || d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best || iter == 0 {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][3]float64, k)
		for i := range counts {
			counts[i] = 0
		}
		for i, p := range pixels {
			c := assign[i]
			counts[c]++
			sums[c][0] += p[0]
			sums[c][1] += p[1]
			sums[c][2] += p[2]
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			n := float64(counts[c])
			centroids[c] = [3]float64{sums[c][0] / n, sums[c][1] / n, sums[c][2] / n}
		}
	}

	clusters := make([]Cluster, 0, k)
	for c, cen := range centroids {
		if counts[c] == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Color: color.RGBA{
				R: uint8(cen[0] + 0.5),
				G: uint8(cen[1] + 0.5),
				B: uint8(cen[2] + 0.5),
				A: 255,
			},
			Weight: counts[c],
		})
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Weight > clusters[j].Weight
	})
	return clusters
}

func sqDist(a, b [3]float64) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}
