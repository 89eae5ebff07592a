package plugin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/hue"
)

const flashLightsSlug = "hue:flash-lights"

type colorEntry struct {
	Color any `json:"color"`
}

type flashLightsSettings struct {
	Lights         []string     `json:"lights"`
	Flashes        int          `json:"flashes"`
	OnDuration     float64      `json:"onDuration"`
	OffDuration    float64      `json:"offDuration"`
	ChangeColor    bool         `json:"changeColor"`
	UseSingleColor bool         `json:"useSingleColor"`
	Color          any          `json:"color"`
	Colors         []colorEntry `json:"colors"`
	UseEndColor    bool         `json:"useEndColor"`
	EndColor       any          `json:"endColor"`
	SetDuration    bool         `json:"setDuration"`
	Duration       float64      `json:"duration"`
	Brightness     float64      `json:"brightness"`
}

// colorFor returns the raw color of flash i, or false when the flash keeps the previous color.
func (s flashLightsSettings) colorFor(i int) (any, bool) {
	if s.UseEndColor && i == s.Flashes-1 {
		return s.EndColor, true
	}
	if s.UseSingleColor {
		return s.Color, true
	}
	if len(s.Colors) == 0 {
		return nil, false
	}
	return s.Colors[i%len(s.Colors)].Color, true
}

// flashLightsAction turns the selected lights off and on a number of times.
type flashLightsAction struct {
	plugin *Plugin
}

func (a *flashLightsAction) Descriptor() host.ActionDescriptor {
	return host.ActionDescriptor{
		Slug:        flashLightsSlug,
		Name:        "Flash lights",
		Category:    "Lights",
		Provider:    provider,
		Description: "Flash one or more lights a set number of times.",
		Version:     version,
		Settings:    flashLightsInputs(),
	}
}

func (a *flashLightsAction) Run(ctx context.Context, rc host.RunContext) (bool, error) {
	var s flashLightsSettings
	if err := decodeSettings(rc.Settings, &s); err != nil {
		return false, err
	}

	logger := log.With().Str("action", flashLightsSlug).Str("run_id", rc.RunID).Logger()

	state := hue.State{}
	if s.SetDuration {
		t := hue.TransitionFromMillis(s.Duration)
		state.TransitionTime = &t
	}
	state = state.WithBri(hue.BrightnessFromPercent(s.Brightness))

	refs := hue.ParseRefs(s.Lights)

	for i := 0; i < s.Flashes; i++ {
		if s.ChangeColor {
			if raw, ok := s.colorFor(i); ok {
				xy, err := a.plugin.xy(raw)
				if err != nil {
					logger.Warn().Err(err).Int("flash", i).Interface("color", raw).Msg("Color could not be resolved, stopping")
					return false, nil
				}
				state = state.WithXY(xy)
			}
		}

		// off phase tolerates an empty target list
		if _, err := a.plugin.send(ctx, refs, state.WithBri(0)); err != nil {
			return false, fmt.Errorf("flash %d off: %w", i, err)
		}

		if err := wait(ctx, s.OffDuration); err != nil {
			return false, err
		}

		sent, err := a.plugin.send(ctx, refs, state)
		if err != nil {
			return false, fmt.Errorf("flash %d on: %w", i, err)
		}
		if sent == 0 {
			logger.Warn().Int("flash", i).Msg("No lights to flash")
			return false, nil
		}

		if err := wait(ctx, s.OnDuration); err != nil {
			return false, err
		}
	}

	logger.Debug().Int("flashes", s.Flashes).Int("targets", len(refs)).Msg("Flash sequence finished")
	return true, nil
}
