// Package gradient maps normalized values onto the dashboard color scale.
package gradient

import (
	"fmt"
	"math"
)

// HSL is a color in hue (degrees), saturation and lightness (0-1)
type HSL struct {
	H float64
	S float64
	L float64
}

type stop struct {
	at    float64
	color HSL
}

// low consumption is blue, high is red
var stops = []stop{
	{0, HSL{210, 0.80, 0.55}},
	{1.0 / 3, HSL{120, 0.60, 0.45}},
	{2.0 / 3, HSL{50, 0.90, 0.50}},
	{1, HSL{0, 0.85, 0.45}},
}

// At returns the gradient color for t in [0,1]. Values outside the range are
// clamped and NaN is treated as 0.
func At(t float64) HSL {
	if math.IsNaN(t) || t <= 0 {
		return stops[0].color
	}
	if t >= 1 {
		return stops[len(stops)-1].color
	}

	for i := 1; i < len(stops); i++ {
		hi := stops[i]
		if t > hi.at {
			continue
		}
		lo := stops[i-1]
		f := (t - lo.at) / (hi.at - lo.at)
		return HSL{
			H: lerp(lo.color.H, hi.color.H, f),
			S: lerp(lo.color.S, hi.color.S, f),
			L: lerp(lo.color.L, hi.color.L, f),
		}
	}
	return stops[len(stops)-1].color
}

// Normalize maps v from [min,max] to [0,1]. A degenerate range yields 0.
func Normalize(v, min, max float64) float64 {
	if !(max > min) || math.IsNaN(v) {
		return 0
	}
	t := (v - min) / (max - min)
	return math.Max(0, math.Min(1, t))
}

// RGB converts the color to 8-bit red, green and blue
func (c HSL) RGB() (uint8, uint8, uint8) {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	s := math.Max(0, math.Min(1, c.S))
	l := math.Max(0, math.Min(1, c.L))

	chroma := (1 - math.Abs(2*l-1)) * s
	x := chroma * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - chroma/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = chroma, x, 0
	case h < 120:
		r, g, b = x, chroma, 0
	case h < 180:
		r, g, b = 0, chroma, x
	case h < 240:
		r, g, b = 0, x, chroma
	case h < 300:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return to8(r + m), to8(g + m), to8(b + m)
}

// Hex returns the color as #rrggbb
func (c HSL) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// CSS returns the color as a CSS hsl() value
func (c HSL) CSS() string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", c.H, c.S*100, c.L*100)
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
