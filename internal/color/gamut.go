package color

import (
	"fmt"
	"math"
	"strings"
)

// Gamut is the triangle of xy coordinates a bulb can reproduce.
type Gamut struct {
	Name  string
	Red   XY
	Green XY
	Blue  XY
}

// Gamuts published by Philips for the bulb generations.
var (
	GamutA = Gamut{Name: "A", Red: XY{0.704, 0.296}, Green: XY{0.2151, 0.7106}, Blue: XY{0.138, 0.08}}
	GamutB = Gamut{Name: "B", Red: XY{0.675, 0.322}, Green: XY{0.409, 0.518}, Blue: XY{0.167, 0.04}}
	GamutC = Gamut{Name: "C", Red: XY{0.6915, 0.3083}, Green: XY{0.17, 0.7}, Blue: XY{0.1532, 0.0475}}
)

// ParseGamut returns the gamut for a name ("A", "B", "C").
// An empty name returns nil, meaning no clamping.
func ParseGamut(name string) (*Gamut, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return nil, nil
	case "A":
		return &GamutA, nil
	case "B":
		return &GamutB, nil
	case "C":
		return &GamutC, nil
	default:
		return nil, fmt.Errorf("unknown gamut %q (want A, B or C)", name)
	}
}

// Contains reports whether p lies inside the triangle (edges included).
func (g *Gamut) Contains(p XY) bool {
	d1 := cross(p, g.Red, g.Green)
	d2 := cross(p, g.Green, g.Blue)
	d3 := cross(p, g.Blue, g.Red)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// Clamp moves p onto the closest edge of the triangle when it lies outside.
func (g *Gamut) Clamp(p XY) XY {
	if g == nil || g.Contains(p) {
		return p
	}

	candidates := []XY{
		closestOnSegment(p, g.Red, g.Green),
		closestOnSegment(p, g.Green, g.Blue),
		closestOnSegment(p, g.Blue, g.Red),
	}

	best := candidates[0]
	bestDist := distance(p, best)
	for _, c := range candidates[1:] {
		if d := distance(p, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func cross(p, a, b XY) float64 {
	return (p[0]-b[0])*(a[1]-b[1]) - (a[0]-b[0])*(p[1]-b[1])
}

func closestOnSegment(p, a, b XY) XY {
	ab := XY{b[0] - a[0], b[1] - a[1]}
	ap := XY{p[0] - a[0], p[1] - a[1]}

	t := (ap[0]*ab[0] + ap[1]*ab[1]) / (ab[0]*ab[0] + ab[1]*ab[1])
	t = math.Max(0, math.Min(1, t))

	return XY{a[0] + ab[0]*t, a[1] + ab[1]*t}
}

func distance(a, b XY) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}
