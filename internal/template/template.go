// Package template renders user strings containing {{ lua expression }} segments.
//
// Trigger data is available to expressions as the global table `trigger`, and each
// top-level key is also bound as a global of its own:
//
//	"{{ trigger.json.color }}"   -> "#ff0000"
//	"{{ color or 'orchid' }}"    -> "orchid" when the trigger has no color
package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single render.
const DefaultTimeout = time.Second

// ErrUnterminated is returned for a "{{" without a matching "}}".
var ErrUnterminated = errors.New("unterminated template expression")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Engine evaluates templates in a fresh sandboxed Lua state per render.
type Engine struct {
	timeout time.Duration
}

// New creates a new template engine. A zero timeout uses DefaultTimeout.
func New(timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{timeout: timeout}
}

// Render replaces every {{ expr }} in tpl with the value of expr.
// Strings without "{{" are returned unchanged.
func (e *Engine) Render(tpl string, data map[string]any) (string, error) {
	if !strings.Contains(tpl, "{{") {
		return tpl, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	L := newState(ctx, data)
	defer L.Close()

	var out strings.Builder
	rest := tpl
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			return "", fmt.Errorf("%w at offset %d", ErrUnterminated, len(tpl)-len(rest)+start)
		}
		end += start

		out.WriteString(rest[:start])

		expr := strings.TrimSpace(rest[start+2 : end])
		value, err := eval(L, expr)
		if err != nil {
			return "", fmt.Errorf("failed to evaluate %q: %w", expr, err)
		}
		out.WriteString(value)

		rest = rest[end+2:]
	}

	return out.String(), nil
}

func newState(ctx context.Context, data map[string]any) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.TabLibName, lua.OpenTable},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(ctx)

	L.SetGlobal("trigger", toLua(L, data))
	for key, value := range data {
		if !identifier.MatchString(key) || L.GetGlobal(key) != lua.LNil {
			continue
		}
		L.SetGlobal(key, toLua(L, value))
	}
	return L
}

func eval(L *lua.LState, expr string) (string, error) {
	if expr == "" {
		return "", nil
	}

	top := L.GetTop()
	if err := L.DoString("return " + expr); err != nil {
		return "", err
	}
	defer L.SetTop(top)

	if L.GetTop() == top {
		return "", nil
	}
	return stringify(L.Get(top + 1))
}

func stringify(v lua.LValue) (string, error) {
	switch val := v.(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return string(val), nil
	case lua.LNumber:
		return formatNumber(val), nil
	case lua.LBool:
		if val {
			return "true", nil
		}
		return "false", nil
	case *lua.LTable:
		raw, err := json.Marshal(fromLua(val))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return val.String(), nil
	}
}
