package plugin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashSettings(overrides map[string]any) map[string]any {
	settings := map[string]any{
		"lights":      []any{"light:1"},
		"flashes":     3,
		"onDuration":  1,
		"offDuration": 1,
	}
	for k, v := range overrides {
		settings[k] = v
	}
	return settings
}

func onPayloads(requests []bridgeRequest) []map[string]any {
	var out []map[string]any
	for _, r := range requests {
		if r.Body["bri"] != float64(0) {
			out = append(out, r.Body)
		}
	}
	return out
}

func TestFlashLights_OffOnOrder(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"changeColor":    true,
		"useSingleColor": true,
		"color":          "#0000ff",
	}), nil))
	require.NoError(t, err)
	assert.True(t, ok)

	requests := bridge.recorded()
	require.Len(t, requests, 6)

	blue := xyOf("#0000ff")
	for i, r := range requests {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/api/user/lights/1/state", r.Path)
		assert.NotContains(t, r.Body, "on", "flash payloads leave the power state alone")
		assert.Equal(t, blue, r.Body["xy"])

		if i%2 == 0 {
			assert.Equal(t, float64(0), r.Body["bri"], "request %d should be an off payload", i)
		} else {
			assert.Equal(t, float64(127), r.Body["bri"], "request %d should be an on payload", i)
		}
	}
}

func TestFlashLights_ColorCycle(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"flashes":     5,
		"changeColor": true,
		"colors":      []any{map[string]any{"color": "#ff0000"}, map[string]any{"color": "#0000ff"}},
	}), nil))
	require.NoError(t, err)
	assert.True(t, ok)

	red, blue := xyOf("#ff0000"), xyOf("#0000ff")
	var got [][]any
	for _, body := range onPayloads(bridge.recorded()) {
		got = append(got, body["xy"].([]any))
	}
	assert.Equal(t, [][]any{red, blue, red, blue, red}, got)
}

func TestFlashLights_EndColor(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"flashes":     3,
		"changeColor": true,
		"colors":      []any{map[string]any{"color": "#ff0000"}, map[string]any{"color": "#0000ff"}},
		"useEndColor": true,
		"endColor":    "#00ff00",
	}), nil))
	require.NoError(t, err)
	assert.True(t, ok)

	requests := bridge.recorded()
	require.Len(t, requests, 6)

	red, blue, green := xyOf("#ff0000"), xyOf("#0000ff"), xyOf("#00ff00")
	want := [][]any{red, red, blue, blue, green, green}
	for i, r := range requests {
		assert.Equal(t, want[i], r.Body["xy"], "request %d", i)
	}
}

func TestFlashLights_KeepsColorWhenListEmpty(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"flashes":     2,
		"changeColor": true,
		"colors":      []any{},
	}), nil))
	require.NoError(t, err)
	assert.True(t, ok)

	for _, r := range bridge.recorded() {
		assert.NotContains(t, r.Body, "xy")
	}
}

func TestFlashLights_TransitionAndBrightness(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"flashes":     1,
		"setDuration": true,
		"duration":    1000,
		"brightness":  100,
	}), nil))
	require.NoError(t, err)
	assert.True(t, ok)

	requests := bridge.recorded()
	require.Len(t, requests, 2)
	assert.Equal(t, map[string]any{"bri": float64(0), "transitiontime": float64(10)}, requests[0].Body)
	assert.Equal(t, map[string]any{"bri": float64(254), "transitiontime": float64(10)}, requests[1].Body)
}

func TestFlashLights_MultipleTargets(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"lights":  []any{"light:1", "group:0", "bogus"},
		"flashes": 2,
	}), nil))
	require.NoError(t, err)
	assert.True(t, ok)

	requests := bridge.recorded()
	require.Len(t, requests, 8)
	// phases never overlap: each block of two shares the same brightness
	for phase := 0; phase < 4; phase++ {
		a, b := requests[phase*2], requests[phase*2+1]
		assert.Equal(t, a.Body["bri"], b.Body["bri"])
		assert.ElementsMatch(t,
			[]string{"/api/user/lights/1/state", "/api/user/groups/0/action"},
			[]string{a.Path, b.Path})
	}
}

func TestFlashLights_NoTargetsAbortsOnPhase(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"lights": []any{"bogus", "room:1"},
	}), nil))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, bridge.recorded())
}

func TestFlashLights_UnresolvedColorStops(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ok, err := action.Run(context.Background(), runContext(action, flashSettings(map[string]any{
		"changeColor": true,
		"colors":      []any{map[string]any{"color": "#ff0000"}, map[string]any{"color": "not-a-color"}},
	}), nil))
	require.NoError(t, err)
	assert.False(t, ok)

	// the first flash went out, nothing after it
	assert.Len(t, bridge.recorded(), 2)
}

func TestFlashLights_TransportError(t *testing.T) {
	_, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	srv.Close()

	action := p.action(t, flashLightsSlug)
	ok, err := action.Run(context.Background(), runContext(action, flashSettings(nil), nil))
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFlashLights_Cancellation(t *testing.T) {
	bridge, srv := newFakeBridge(t)
	p := pairedPlugin(t, srv)
	action := p.action(t, flashLightsSlug)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	ok, err := action.Run(ctx, runContext(action, flashSettings(map[string]any{
		"offDuration": 10000,
	}), nil))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Len(t, bridge.recorded(), 1, "only the first off payload was sent")
}

func TestFlashSettings_ColorFor(t *testing.T) {
	s := flashLightsSettings{
		Flashes: 4,
		Colors:  []colorEntry{{Color: "a"}, {Color: "b"}, {Color: "c"}},
	}

	var got []any
	for i := 0; i < s.Flashes; i++ {
		c, ok := s.colorFor(i)
		require.True(t, ok)
		got = append(got, c)
	}
	assert.Equal(t, []any{"a", "b", "c", "a"}, got)

	s.UseEndColor = true
	s.EndColor = "end"
	c, _ := s.colorFor(3)
	assert.Equal(t, "end", c)

	s.UseSingleColor = true
	s.Color = "single"
	c, _ = s.colorFor(0)
	assert.Equal(t, "single", c)

	empty := flashLightsSettings{Flashes: 2}
	_, ok := empty.colorFor(0)
	assert.False(t, ok)
}
