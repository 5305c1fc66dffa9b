package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
//
// When no explicit path is given and config.jsonc does not exist, Load
// falls back to the legacy config.conf location before giving up and
// returning defaults.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
		}

		if explicitPath == "" {
			if loaded, ok, legacyErr := loadLegacy(resolvedPath, base); legacyErr != nil {
				return Loaded{}, legacyErr
			} else if ok {
				return loaded, nil
			}
		}

		return Loaded{
			Path:   resolvedPath,
			Config: base,
			Warnings: []Warning{{
				Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
			}},
			Exists: false,
		}, nil
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// loadLegacy reads the old config.conf location when the preferred path is
// absent. The second return value reports whether a legacy file was used.
func loadLegacy(preferredPath string, base Config) (Loaded, bool, error) {
	legacyPath, err := LegacyPath()
	if err != nil {
		return Loaded{}, false, nil
	}

	content, err := os.ReadFile(legacyPath)
	if err != nil {
		return Loaded{}, false, nil
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, false, fmt.Errorf("parse config %q: %w", legacyPath, err)
	}

	warnings = append([]Warning{{
		Message: fmt.Sprintf("using legacy config path %q; migrate to %q", legacyPath, preferredPath),
	}}, warnings...)

	return Loaded{
		Path:     legacyPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, true, nil
}
