package hue

import (
	"math"

	"github.com/dokzlo13/espresso-hue/internal/color"
)

// Effect values accepted by the bridge
const (
	EffectNone      = "none"
	EffectColorLoop = "colorloop"
)

// Alert values accepted by the bridge
const (
	AlertNone   = "none"
	AlertSelect = "select"
	AlertLong   = "lselect"
)

// State is a sparse v1 state payload. Nil fields are omitted and leave the bridge state unchanged.
type State struct {
	On             *bool     `json:"on,omitempty"`
	Bri            *int      `json:"bri,omitempty"`
	XY             *color.XY `json:"xy,omitempty"`
	TransitionTime *int      `json:"transitiontime,omitempty"`
	Effect         string    `json:"effect,omitempty"`
	Alert          string    `json:"alert,omitempty"`
}

// WithBri returns a copy of the state with brightness replaced
func (s State) WithBri(bri int) State {
	s.Bri = &bri
	return s
}

// WithXY returns a copy of the state with the color replaced
func (s State) WithXY(xy color.XY) State {
	s.XY = &xy
	return s
}

// BrightnessFromPercent scales 0-100 to the bridge's 0-254 range.
func BrightnessFromPercent(percent float64) int {
	percent = math.Max(0, math.Min(100, percent))
	return int(math.Round(percent / 100 * 254))
}

// TransitionFromMillis converts milliseconds to the bridge's tenths of a second.
func TransitionFromMillis(ms float64) int {
	if ms < 0 {
		return 0
	}
	return int(math.Round(ms / 100))
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}
