package easyremote

import (
	"fmt"
	"math"
)

// RGBToHSV converts 8-bit RGB channels to hue, saturation and value in
// [0,1]. Grey levels, black and white included, get hue and saturation 0.
func RGBToHSV(r, g, b int) (h, s, v float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	maxc := math.Max(rf, math.Max(gf, bf))
	minc := math.Min(rf, math.Min(gf, bf))
	v = maxc
	if maxc == minc {
		return 0, 0, v
	}

	delta := maxc - minc
	s = delta / maxc

	rc := (maxc - rf) / delta
	gc := (maxc - gf) / delta
	bc := (maxc - bf) / delta

	switch maxc {
	case rf:
		h = bc - gc
	case gf:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}

	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}
	return h, s, v
}

// hsvToWire scales normalized HSV to the console's integer ranges:
// hue in degrees, saturation and value in 0-255. Halves round to even.
func hsvToWire(h, s, v float64) (int, int, int, error) {
	for _, c := range [...]float64{h, s, v} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return 0, 0, 0, fmt.Errorf("%w: %v", ErrInvalidColor, c)
		}
	}
	return int(math.RoundToEven(h * 360)),
		int(math.RoundToEven(s * 255)),
		int(math.RoundToEven(v * 255)), nil
}
