package host

import "reflect"

// InputType is the kind of control the settings form renders.
type InputType string

const (
	InputTitle    InputType = "title"
	InputSelect   InputType = "select"
	InputToggle   InputType = "toggle"
	InputColor    InputType = "color"
	InputText     InputType = "text"
	InputSlider   InputType = "slider"
	InputNumber   InputType = "number"
	InputRepeater InputType = "repeater"
)

// Operator compares a setting value in a Condition.
type Operator string

const (
	OpEqual    Operator = "equal"
	OpNotEqual Operator = "not_equal"
)

// Condition checks one setting value.
type Condition struct {
	Value      string   `json:"value"`
	Operator   Operator `json:"operator"`
	Comparison any      `json:"comparison"`
}

// Conditions is a list of alternatives; an input is shown when every condition
// of at least one alternative holds.
type Conditions [][]Condition

// When builds a single alternative.
func When(conds ...Condition) Conditions {
	return Conditions{conds}
}

// Equal is a shorthand for an equality condition.
func Equal(key string, comparison any) Condition {
	return Condition{Value: key, Operator: OpEqual, Comparison: comparison}
}

// Match reports whether settings satisfy the conditions. Empty conditions always match.
func (c Conditions) Match(settings map[string]any) bool {
	if len(c) == 0 {
		return true
	}
	for _, alt := range c {
		ok := true
		for _, cond := range alt {
			if !cond.holds(settings) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (c Condition) holds(settings map[string]any) bool {
	equal := reflect.DeepEqual(settings[c.Value], c.Comparison)
	if c.Operator == OpNotEqual {
		return !equal
	}
	return equal
}

// Input describes one field of an action's settings form.
type Input struct {
	Type        InputType  `json:"type"`
	Key         string     `json:"key,omitempty"`
	Label       string     `json:"label,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description []string   `json:"description,omitempty"`
	Helper      string     `json:"helper,omitempty"`
	Default     any        `json:"default,omitempty"`
	Options     string     `json:"options,omitempty"`
	Multiple    bool       `json:"multiple,omitempty"`
	Min         *float64   `json:"min,omitempty"`
	Max         *float64   `json:"max,omitempty"`
	Step        *float64   `json:"step,omitempty"`
	MinLabel    string     `json:"minLabel,omitempty"`
	MaxLabel    string     `json:"maxLabel,omitempty"`
	Inputs      []Input    `json:"inputs,omitempty"`
	EmptyLabel  string     `json:"emptyLabel,omitempty"`
	AddLabel    string     `json:"addLabel,omitempty"`
	RemoveLabel string     `json:"removeLabel,omitempty"`
	Conditions  Conditions `json:"conditions,omitempty"`
}

// ActionDescriptor is the metadata an action is registered with.
type ActionDescriptor struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Provider    string  `json:"provider"`
	Description string  `json:"description"`
	Version     string  `json:"version"`
	Settings    []Input `json:"settings"`
}

// Float is a helper for the optional numeric bounds of an Input.
func Float(f float64) *float64 {
	return &f
}

// WithDefaults returns a copy of settings where every keyed input missing from settings
// carries its declared default. Inputs are visited in declaration order, and an input
// whose conditions do not match the settings collected so far is hidden and gets no default.
func WithDefaults(inputs []Input, settings map[string]any) map[string]any {
	out := make(map[string]any, len(settings)+len(inputs))
	for k, v := range settings {
		out[k] = v
	}
	for _, in := range inputs {
		if in.Key == "" || in.Default == nil {
			continue
		}
		if !in.Conditions.Match(out) {
			continue
		}
		if _, ok := out[in.Key]; !ok {
			out[in.Key] = in.Default
		}
	}
	return out
}
