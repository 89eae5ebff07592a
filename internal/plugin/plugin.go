// Package plugin is the Philips Hue plugin for the espresso automation host.
//
// It contributes two actions (hue:set-light-state, hue:flash-lights), the
// hue:lights-and-groups option source and the /hue dashboard and pairing routes.
package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/color"
	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/hue"
)

// Name is the plugin name used for its store namespace and install directory.
const Name = "hue"

const (
	provider = "Philips Hue"
	version  = "1.0.0"
)

// Deps are the collaborators the plugin is built from.
type Deps struct {
	Client    *hue.Client
	Pairer    *hue.Pairer
	Colors    host.ColorResolver
	Templater host.Templater
	Paths     host.PluginPaths
	// Gamut, when set, clamps every color into the lamp's reachable triangle.
	Gamut *color.Gamut
}

// Plugin is the Hue plugin.
type Plugin struct {
	client    *hue.Client
	pairer    *hue.Pairer
	catalog   *hue.Catalog
	colors    host.ColorResolver
	templater host.Templater
	paths     host.PluginPaths
	gamut     *color.Gamut
}

// New creates the plugin
func New(deps Deps) *Plugin {
	return &Plugin{
		client:    deps.Client,
		pairer:    deps.Pairer,
		catalog:   hue.NewCatalog(deps.Client),
		colors:    deps.Colors,
		templater: deps.Templater,
		paths:     deps.Paths,
		gamut:     deps.Gamut,
	}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return Name
}

// Register adds the plugin's actions, options and routes to the host
func (p *Plugin) Register(r host.Registrar) error {
	for _, action := range p.Actions() {
		if err := r.RegisterAction(action); err != nil {
			return fmt.Errorf("failed to register action: %w", err)
		}
	}
	for _, source := range p.OptionSources() {
		if err := r.RegisterOptions(source); err != nil {
			return fmt.Errorf("failed to register options: %w", err)
		}
	}
	for _, route := range p.Routes() {
		if err := r.RegisterRoute(route); err != nil {
			return fmt.Errorf("failed to register route %s: %w", route.Path, err)
		}
	}

	log.Info().Str("plugin", Name).Bool("connected", p.client.Session().Connected()).Msg("Plugin registered")
	return nil
}

// Actions returns the actions the plugin provides
func (p *Plugin) Actions() []host.Action {
	return []host.Action{
		&setLightStateAction{plugin: p},
		&flashLightsAction{plugin: p},
	}
}

// OptionSources returns the option sources the plugin provides
func (p *Plugin) OptionSources() []host.OptionSource {
	return []host.OptionSource{&lightsAndGroups{catalog: p.catalog}}
}

// xy resolves a color setting and converts it to bridge coordinates.
func (p *Plugin) xy(raw any) (color.XY, error) {
	rgb, err := p.colors.Resolve(raw)
	if err != nil {
		return color.XY{}, err
	}
	xy := rgb.ToXY()
	if p.gamut != nil {
		xy = p.gamut.Clamp(xy)
	}
	return xy, nil
}

// send PUTs state to every ref concurrently. It returns the number of requests issued.
func (p *Plugin) send(ctx context.Context, refs []hue.Ref, state hue.State) (int, error) {
	calls, err := p.client.StateCalls(ctx, refs, state)
	if err != nil {
		return 0, err
	}
	if err := hue.DoAll(ctx, calls); err != nil {
		return len(calls), err
	}
	return len(calls), nil
}

// wait blocks for ms milliseconds or until ctx is done.
func wait(ctx context.Context, ms float64) error {
	if ms <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
