package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrUnresolved is returned when a value cannot be interpreted as a color.
var ErrUnresolved = errors.New("color could not be resolved")

// Resolver turns user supplied color values into RGB.
//
// Accepted forms:
//   - hex strings: "#ff00ff", "#f0f", "ff00ff"
//   - CSS color names: "red", "orchid"
//   - functional notation: "rgb(255, 0, 255)"
//   - structured values: RGB, map with "hex", map with an "rgb" array or r/g/b keys (0-255)
type Resolver struct{}

// NewResolver creates a new color resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve resolves v to an RGB color
func (r *Resolver) Resolve(v any) (RGB, error) {
	switch val := v.(type) {
	case RGB:
		return val, nil
	case *RGB:
		if val == nil {
			return RGB{}, ErrUnresolved
		}
		return *val, nil
	case string:
		return r.resolveString(val)
	case map[string]any:
		return r.resolveMap(val)
	default:
		return RGB{}, fmt.Errorf("%w: unsupported type %T", ErrUnresolved, v)
	}
}

func (r *Resolver) resolveString(s string) (RGB, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RGB{}, fmt.Errorf("%w: empty string", ErrUnresolved)
	}

	if named, ok := colornames.Map[s]; ok {
		return RGB{
			R: float64(named.R) / 255.0,
			G: float64(named.G) / 255.0,
			B: float64(named.B) / 255.0,
		}, nil
	}

	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		return parseFunctional(strings.TrimSuffix(strings.TrimPrefix(s, "rgb("), ")"))
	}

	if !strings.HasPrefix(s, "#") && (len(s) == 3 || len(s) == 6) {
		s = "#" + s
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrUnresolved, s)
	}
	return RGB{R: c.R, G: c.G, B: c.B}, nil
}

func (r *Resolver) resolveMap(m map[string]any) (RGB, error) {
	if hex, ok := m["hex"].(string); ok {
		return r.resolveString(hex)
	}

	if arr, ok := m["rgb"].([]any); ok && len(arr) == 3 {
		return channels(arr[0], arr[1], arr[2])
	}

	if _, ok := m["r"]; ok {
		return channels(m["r"], m["g"], m["b"])
	}

	return RGB{}, fmt.Errorf("%w: unrecognized structure", ErrUnresolved)
}

func parseFunctional(body string) (RGB, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("%w: rgb() needs three channels", ErrUnresolved)
	}

	vals := make([]any, 3)
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
		}
		vals[i] = n
	}
	return channels(vals[0], vals[1], vals[2])
}

// channels converts 0-255 channel values into an RGB.
func channels(r, g, b any) (RGB, error) {
	var out [3]float64
	for i, v := range []any{r, g, b} {
		n, ok := toFloat(v)
		if !ok || n < 0 || n > 255 {
			return RGB{}, fmt.Errorf("%w: channel %v out of range", ErrUnresolved, v)
		}
		out[i] = n / 255.0
	}
	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	default:
		return 0, false
	}
}
