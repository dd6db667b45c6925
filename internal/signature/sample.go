package signature

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
)

// Sample draws a synthetic pen stroke on a transparent canvas. The same seed
// always yields the same image.
// Returns nil if dimensions are invalid.
func Sample(width, height int, seed int64) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	ink := color.NRGBA{R: 0x10, G: 0x20, B: 0x60, A: 0xff}

	// A few overlapping sine loops read as a cursive scrawl.
	loops := 3 + rng.IntN(3)
	amp := float64(height) * (0.2 + rng.Float64()*0.15)
	phase := rng.Float64() * math.Pi
	mid := float64(height) / 2
	margin := width / 10

	for x := margin; x < width-margin; x++ {
		t := float64(x-margin) / float64(width-2*margin)
		y := mid + amp*math.Sin(t*float64(loops)*2*math.Pi+phase)*math.Sin(t*math.Pi)
		dot(img, x, int(y), 1, ink)
	}
	return img
}

func dot(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if image.Pt(x, y).In(img.Rect) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}
