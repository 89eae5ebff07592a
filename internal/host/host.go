// Package host defines the contract between the automation host and its plugins.
//
// Plugins never reach into host globals. Everything they need is handed to them
// through these interfaces, and everything they offer is registered through a Registrar.
package host

import (
	"context"
	"net/http"

	"github.com/dokzlo13/espresso-hue/internal/color"
)

// Store is the namespaced key-value store a plugin persists its settings in.
type Store interface {
	Get(key string) (any, error)
	Set(key string, value any) error
}

// TokenVault keeps secrets out of plugin settings.
// Set returns an opaque handle that can later be exchanged for the secret.
type TokenVault interface {
	Set(secret string) (string, error)
	Get(handle string) (string, error)
	Delete(handle string) error
}

// ColorResolver turns a color setting (hex, name or structured value) into RGB.
type ColorResolver interface {
	Resolve(v any) (color.RGB, error)
}

// Templater renders user-supplied strings against trigger data.
type Templater interface {
	Render(tpl string, data map[string]any) (string, error)
}

// PluginPaths resolves the install directory of a plugin.
type PluginPaths interface {
	Path(name string) (string, bool)
}

// RunContext is what an action receives when it is invoked.
type RunContext struct {
	RunID           string
	Settings        map[string]any
	TriggerData     map[string]any
	TriggerSettings map[string]any
}

// Action is an automation step a plugin offers.
// Run reports false when the action did not complete; err carries the reason if there is one.
type Action interface {
	Descriptor() ActionDescriptor
	Run(ctx context.Context, rc RunContext) (bool, error)
}

// Option is a selectable entry in a settings select input.
type Option struct {
	Text     string `json:"text"`
	Value    string `json:"value"`
	Category string `json:"category,omitempty"`
}

// OptionSource produces options for select inputs referencing its slug.
type OptionSource interface {
	Slug() string
	Options(ctx context.Context) []Option
}

// Route is an HTTP endpoint a plugin mounts on the host server.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// Registrar accepts everything a plugin contributes.
type Registrar interface {
	RegisterAction(action Action) error
	RegisterOptions(source OptionSource) error
	RegisterRoute(route Route) error
}

// Plugin is implemented by every plugin the host loads.
type Plugin interface {
	Name() string
	Register(r Registrar) error
}
