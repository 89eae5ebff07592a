package plugin

import (
	"encoding/json"
	"fmt"
)

// decodeSettings copies a settings map into a typed settings struct.
func decodeSettings(settings map[string]any, out any) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
