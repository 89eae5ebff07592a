package plugin

import "github.com/dokzlo13/espresso-hue/internal/host"

const (
	defaultColor      = "#ff00ff"
	durationHelper    = "Transition works best when changing the light color. It DOES NOT work when turning the light on."
	brightnessHelper  = `Setting the brightness to "0" does not turn the lights off.`
	colorTitleDetails = "Set the color of the lights using either a color picker or a text field to add dynamic color changing."
)

func lightsInputs() []host.Input {
	return []host.Input{
		{
			Type:        host.InputTitle,
			Title:       "Lights",
			Description: []string{"Select the light(s) or groups that you would like to change the state of."},
		},
		{
			Type:     host.InputSelect,
			Label:    "Lights",
			Key:      "lights",
			Options:  lightsAndGroupsSlug,
			Default:  []string{},
			Multiple: true,
		},
	}
}

func durationInputs() []host.Input {
	return []host.Input{
		{
			Type:    host.InputToggle,
			Label:   "Set transition duration?",
			Key:     "setDuration",
			Default: false,
		},
		{
			Type:       host.InputSlider,
			Label:      "Transition duration (in milliseconds)",
			Helper:     durationHelper,
			Key:        "duration",
			Default:    400,
			Min:        host.Float(0),
			Max:        host.Float(10000),
			Step:       host.Float(100),
			MinLabel:   "0ms",
			MaxLabel:   "10000ms",
			Conditions: host.When(host.Equal("setDuration", true)),
		},
	}
}

func brightnessSlider(conds host.Conditions) host.Input {
	return host.Input{
		Type:       host.InputSlider,
		Label:      "Brightness",
		Helper:     brightnessHelper,
		Key:        "brightness",
		Default:    50,
		Min:        host.Float(0),
		Max:        host.Float(100),
		Step:       host.Float(1),
		MinLabel:   "0%",
		MaxLabel:   "100%",
		Conditions: conds,
	}
}

func brightnessTitle() host.Input {
	return host.Input{
		Type:        host.InputTitle,
		Title:       "Brightness",
		Description: []string{"Change the brightness of the lights."},
	}
}

func colorTitle() host.Input {
	return host.Input{
		Type:        host.InputTitle,
		Title:       "Color",
		Description: []string{colorTitleDetails},
	}
}

func changeColorToggle() host.Input {
	return host.Input{
		Type:    host.InputToggle,
		Label:   "Change the color of the selected light(s).",
		Key:     "changeColor",
		Default: false,
	}
}

func setLightStateInputs() []host.Input {
	inputs := lightsInputs()
	inputs = append(inputs,
		host.Input{
			Type:    host.InputToggle,
			Label:   "Turn lights on?",
			Key:     "on",
			Default: true,
		},
		colorTitle(),
		changeColorToggle(),
		host.Input{
			Type:       host.InputToggle,
			Label:      "Use color picker?",
			Key:        "useColorPicker",
			Default:    false,
			Conditions: host.When(host.Equal("changeColor", true)),
		},
		host.Input{
			Type:       host.InputColor,
			Label:      "Light color",
			Key:        "colorPicker",
			Default:    defaultColor,
			Conditions: host.When(host.Equal("changeColor", true), host.Equal("useColorPicker", true)),
		},
		host.Input{
			Type:       host.InputText,
			Label:      "Light color",
			Key:        "colorText",
			Default:    defaultColor,
			Conditions: host.When(host.Equal("changeColor", true), host.Equal("useColorPicker", false)),
		},
		host.Input{
			Type:        host.InputTitle,
			Title:       "Transition",
			Description: []string{"The transition is the speed that the lights change from the previous state to the new state."},
		},
	)
	inputs = append(inputs, durationInputs()...)
	inputs = append(inputs,
		brightnessTitle(),
		host.Input{
			Type:    host.InputToggle,
			Label:   "Set brightness?",
			Key:     "setBrightness",
			Default: false,
		},
		brightnessSlider(host.When(host.Equal("setBrightness", true))),
	)
	return inputs
}

func flashLightsInputs() []host.Input {
	multiColor := []host.Condition{host.Equal("changeColor", true), host.Equal("useSingleColor", false)}

	inputs := lightsInputs()
	inputs = append(inputs,
		host.Input{
			Type:        host.InputTitle,
			Title:       "Flash settings",
			Description: []string{"The settings that control how many times the lights flash, and for how long."},
		},
		host.Input{
			Type:    host.InputNumber,
			Label:   "Number of flashes",
			Key:     "flashes",
			Default: 5,
			Min:     host.Float(1),
		},
		host.Input{
			Type:    host.InputNumber,
			Label:   "On duration (in milliseconds)",
			Key:     "onDuration",
			Default: 1000,
			Min:     host.Float(900),
		},
		host.Input{
			Type:    host.InputNumber,
			Label:   "Off duration (in milliseconds)",
			Key:     "offDuration",
			Default: 1000,
			Min:     host.Float(400),
		},
		colorTitle(),
		changeColorToggle(),
		host.Input{
			Type:       host.InputToggle,
			Label:      "Flash lights in a single color?",
			Key:        "useSingleColor",
			Default:    false,
			Conditions: host.When(host.Equal("changeColor", true)),
		},
		host.Input{
			Type:       host.InputColor,
			Label:      "Light color",
			Key:        "color",
			Default:    defaultColor,
			Conditions: host.When(host.Equal("changeColor", true), host.Equal("useSingleColor", true)),
		},
		host.Input{
			Type:    host.InputRepeater,
			Label:   "Colors",
			Key:     "colors",
			Default: []map[string]any{{"color": defaultColor}},
			Inputs: []host.Input{
				{Type: host.InputColor, Label: "Light color", Key: "color", Default: defaultColor},
			},
			EmptyLabel:  "No colors selected",
			AddLabel:    "Add color",
			RemoveLabel: "Remove color",
			Conditions:  host.When(multiColor...),
		},
		host.Input{
			Type:       host.InputToggle,
			Label:      "Set specific end color?",
			Key:        "useEndColor",
			Default:    false,
			Conditions: host.When(multiColor...),
		},
		host.Input{
			Type:       host.InputColor,
			Label:      "Light color",
			Key:        "endColor",
			Default:    defaultColor,
			Conditions: host.When(host.Equal("changeColor", true), host.Equal("useEndColor", true), host.Equal("useSingleColor", false)),
		},
	)
	inputs = append(inputs, durationInputs()...)
	inputs = append(inputs, brightnessTitle(), brightnessSlider(nil))
	return inputs
}
