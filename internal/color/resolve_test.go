package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	magenta := RGB{R: 1, G: 0, B: 1}

	tests := []struct {
		name  string
		input any
		want  RGB
	}{
		{name: "hex", input: "#ff00ff", want: magenta},
		{name: "hex_upper", input: "#FF00FF", want: magenta},
		{name: "hex_short", input: "#f0f", want: magenta},
		{name: "hex_no_hash", input: "ff00ff", want: magenta},
		{name: "named", input: "magenta", want: magenta},
		{name: "named_padded", input: "  Fuchsia ", want: magenta},
		{name: "functional", input: "rgb(255, 0, 255)", want: magenta},
		{name: "struct", input: magenta, want: magenta},
		{name: "struct_ptr", input: &magenta, want: magenta},
		{name: "map_hex", input: map[string]any{"hex": "#ff00ff"}, want: magenta},
		{name: "map_rgb_array", input: map[string]any{"rgb": []any{255.0, 0.0, 255.0}}, want: magenta},
		{name: "map_channels", input: map[string]any{"r": 255, "g": 0, "b": 255}, want: magenta},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
		})
	}
}

func TestResolver_Unresolved(t *testing.T) {
	inputs := []any{
		"",
		"not-a-color",
		"#zzzzzz",
		"rgb(1, 2)",
		"rgb(300, 0, 0)",
		map[string]any{"foo": "bar"},
		map[string]any{"r": "x", "g": 0, "b": 0},
		42,
		nil,
		(*RGB)(nil),
	}

	r := NewResolver()
	for _, in := range inputs {
		_, err := r.Resolve(in)
		assert.ErrorIs(t, err, ErrUnresolved, "input %#v", in)
	}
}
