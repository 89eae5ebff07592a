package plugin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/hue"
)

const setLightStateSlug = "hue:set-light-state"

type setLightStateSettings struct {
	Lights         []string `json:"lights"`
	On             bool     `json:"on"`
	ChangeColor    bool     `json:"changeColor"`
	UseColorPicker bool     `json:"useColorPicker"`
	ColorPicker    any      `json:"colorPicker"`
	ColorText      string   `json:"colorText"`
	SetDuration    bool     `json:"setDuration"`
	Duration       float64  `json:"duration"`
	SetBrightness  bool     `json:"setBrightness"`
	Brightness     float64  `json:"brightness"`
}

// setLightStateAction sends one state to every selected light and group.
type setLightStateAction struct {
	plugin *Plugin
}

func (a *setLightStateAction) Descriptor() host.ActionDescriptor {
	return host.ActionDescriptor{
		Slug:        setLightStateSlug,
		Name:        "Set light state",
		Category:    "Lights",
		Provider:    provider,
		Description: "Change the state of a light or multiple lights.",
		Version:     version,
		Settings:    setLightStateInputs(),
	}
}

func (a *setLightStateAction) Run(ctx context.Context, rc host.RunContext) (bool, error) {
	var s setLightStateSettings
	if err := decodeSettings(rc.Settings, &s); err != nil {
		return false, err
	}

	logger := log.With().Str("action", setLightStateSlug).Str("run_id", rc.RunID).Logger()

	state := hue.State{On: hue.Bool(s.On)}

	if s.ChangeColor {
		raw := s.ColorPicker
		if !s.UseColorPicker {
			text, err := a.plugin.templater.Render(s.ColorText, rc.TriggerData)
			if err != nil {
				logger.Warn().Err(err).Str("template", s.ColorText).Msg("Failed to render color")
				return false, nil
			}
			raw = text
		}

		xy, err := a.plugin.xy(raw)
		if err != nil {
			logger.Warn().Err(err).Interface("color", raw).Msg("Color could not be resolved, nothing sent")
			return false, nil
		}
		state = state.WithXY(xy)
	}

	if s.SetDuration {
		t := hue.TransitionFromMillis(s.Duration)
		state.TransitionTime = &t
	}
	if s.SetBrightness {
		state = state.WithBri(hue.BrightnessFromPercent(s.Brightness))
	}

	refs := hue.ParseRefs(s.Lights)
	sent, err := a.plugin.send(ctx, refs, state)
	if err != nil {
		return false, fmt.Errorf("failed to set light state: %w", err)
	}

	logger.Debug().Int("targets", len(refs)).Int("requests", sent).Msg("Light state sent")
	return true, nil
}
