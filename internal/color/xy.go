// Package color converts colors into the CIE xy space understood by Hue bridges.
package color

import "math"

// RGB is a color with channels in the range [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// XY is a point in the CIE 1931 chromaticity diagram, as sent in the "xy" field of a state payload.
type XY [2]float64

// X returns the x coordinate
func (p XY) X() float64 { return p[0] }

// Y returns the y coordinate
func (p XY) Y() float64 { return p[1] }

// RGBToXY converts an sRGB triple to Hue xy coordinates using the
// gamma correction and wide gamut matrix published by Philips.
// No clamping to a device gamut is applied.
func RGBToXY(r, g, b float64) (x, y float64) {
	r = applyGamma(r)
	g = applyGamma(g)
	b = applyGamma(b)

	X := r*0.649926 + g*0.103455 + b*0.197109
	Y := r*0.234327 + g*0.743075 + b*0.022598
	Z := r*0.000000 + g*0.053077 + b*1.035763

	sum := X + Y + Z
	if sum == 0 {
		return 0, 0
	}

	return X / sum, Y / sum
}

// ToXY converts the color to xy coordinates
func (c RGB) ToXY() XY {
	x, y := RGBToXY(c.R, c.G, c.B)
	return XY{x, y}
}

// applyGamma applies gamma correction for sRGB
func applyGamma(value float64) float64 {
	if value > 0.04045 {
		return math.Pow((value+0.055)/1.055, 2.4)
	}
	return value / 12.92
}
