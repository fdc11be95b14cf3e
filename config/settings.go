package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// decodeSettings overlays the TOML file onto cfg. Keys missing from the file
// keep the values already in cfg, which is how defaults survive partial files.
func decodeSettings(settingsPath string, cfg *Config) error {
	meta, err := toml.DecodeFile(settingsPath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown settings key %q in %s", undecoded[0].String(), settingsPath)
	}

	return nil
}
