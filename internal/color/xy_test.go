package color

import (
	"math"
	"testing"
)

func TestRGBToXY(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		wantX   float64
		wantY   float64
	}{
		{name: "black", r: 0, g: 0, b: 0, wantX: 0, wantY: 0},
		{name: "red", r: 1, g: 0, b: 0, wantX: 0.7350, wantY: 0.2650},
		{name: "green", r: 0, g: 1, b: 0, wantX: 0.1150, wantY: 0.8260},
		{name: "blue", r: 0, g: 0, b: 1, wantX: 0.1570, wantY: 0.0180},
		{name: "white", r: 1, g: 1, b: 1, wantX: 0.3127, wantY: 0.3290},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := RGBToXY(tt.r, tt.g, tt.b)
			if math.Abs(x-tt.wantX) > 0.001 || math.Abs(y-tt.wantY) > 0.001 {
				t.Errorf("RGBToXY(%v, %v, %v) = (%.4f, %.4f), want (%.4f, %.4f)",
					tt.r, tt.g, tt.b, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRGBToXY_Deterministic(t *testing.T) {
	for i := 0; i <= 10; i++ {
		v := float64(i) / 10
		x1, y1 := RGBToXY(v, 1-v, v/2)
		x2, y2 := RGBToXY(v, 1-v, v/2)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("RGBToXY not deterministic for %v", v)
		}
		if x1 < 0 || x1 > 1 || y1 < 0 || y1 > 1 {
			t.Errorf("RGBToXY(%v) = (%v, %v), out of [0,1]", v, x1, y1)
		}
	}
}

func TestRGBToXY_LowChannelsUseLinearSegment(t *testing.T) {
	// Below the 0.04045 threshold the channel is divided by 12.92, so scaling
	// all channels equally keeps chromaticity constant.
	x1, y1 := RGBToXY(0.005, 0.01, 0.015)
	x2, y2 := RGBToXY(0.01, 0.02, 0.03)
	if math.Abs(x1-x2) > 1e-9 || math.Abs(y1-y2) > 1e-9 {
		t.Errorf("chromaticity changed in linear segment: (%v,%v) vs (%v,%v)", x1, y1, x2, y2)
	}
}

func TestRGB_ToXY(t *testing.T) {
	p := RGB{R: 1, G: 1, B: 1}.ToXY()
	x, y := RGBToXY(1, 1, 1)
	if p.X() != x || p.Y() != y {
		t.Errorf("ToXY() = %v, want (%v, %v)", p, x, y)
	}
}
