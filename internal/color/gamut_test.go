package color

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGamut(t *testing.T) {
	g, err := ParseGamut("")
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = ParseGamut("c")
	require.NoError(t, err)
	assert.Equal(t, "C", g.Name)

	_, err = ParseGamut("Z")
	assert.Error(t, err)
}

func TestGamut_ClampInsideIsUnchanged(t *testing.T) {
	white := RGB{R: 1, G: 1, B: 1}.ToXY()
	for _, g := range []*Gamut{&GamutA, &GamutC} {
		assert.True(t, g.Contains(white), "gamut %s should contain white", g.Name)
		assert.Equal(t, white, g.Clamp(white))
	}
}

func TestGamutB_WhiteSitsJustOutsideGreenBlueEdge(t *testing.T) {
	// Gamut B's green-blue edge passes x~0.3133 at y=0.329, a hair right of D65 white.
	white := RGB{R: 1, G: 1, B: 1}.ToXY()
	assert.False(t, GamutB.Contains(white))

	clamped := GamutB.Clamp(white)
	assert.Less(t, distance(white, clamped), 1e-3)
	assert.True(t, onEdge(&GamutB, clamped))
}

func TestGamut_ClampOutsideLandsOnEdge(t *testing.T) {
	red := RGB{R: 1}.ToXY()
	require.False(t, GamutB.Contains(red))

	clamped := GamutB.Clamp(red)
	assert.True(t, GamutB.Contains(clamped) || onEdge(&GamutB, clamped))
	assert.Less(t, distance(clamped, GamutB.Red), 0.1)
}

func TestGamut_ClampVertexRegion(t *testing.T) {
	p := XY{0.9, 0.1}
	clamped := GamutC.Clamp(p)
	assert.InDelta(t, GamutC.Red[0], clamped[0], 0.05)
}

func TestGamut_NilClampIsIdentity(t *testing.T) {
	var g *Gamut
	p := XY{0.9, 0.9}
	assert.Equal(t, p, g.Clamp(p))
}

func onEdge(g *Gamut, p XY) bool {
	for _, e := range [][2]XY{{g.Red, g.Green}, {g.Green, g.Blue}, {g.Blue, g.Red}} {
		if math.Abs(distance(closestOnSegment(p, e[0], e[1]), p)) < 1e-9 {
			return true
		}
	}
	return false
}
