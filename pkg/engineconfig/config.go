// Package engineconfig loads the engine's optional TOML configuration
// document: the default feature-model path, the Hamming-search
// IGNORE_DISTANCE override, and the library name/version a rule
// program may be checked against (spec.md §4.A, §9, and PyLaut's
// SoundLaw.sc_lib_name/sc_lib_version). Absent a config file, Default
// applies -- configuration is additive, never required.
package engineconfig

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/soundlaw"
)

// Config is the document shape. Every field is optional; a zero value
// means "use the engine default" except where noted.
type Config struct {
	IgnoreDistance int    `toml:"ignore_distance"`
	FeatureModel   string `toml:"feature_model"`
	LibraryName    string `toml:"library_name"`
	LibraryVersion string `toml:"library_version"`
}

// Default returns the engine's built-in configuration, used when no
// document is loaded.
func Default() Config {
	return Config{IgnoreDistance: feature.IgnoreDistance}
}

// Load reads and decodes a TOML document from path, seeded with
// Default so an omitted field keeps the engine default rather than
// zeroing out.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("engineconfig: %w", err)
	}
	return cfg, nil
}

// LoadBlob decodes a TOML document already in memory.
func LoadBlob(blob []byte) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(blob), &cfg); err != nil {
		return Config{}, fmt.Errorf("engineconfig: %w", err)
	}
	return cfg, nil
}

// ApplyTo sets m.IgnoreDistance from c, leaving the model's own default
// untouched when c.IgnoreDistance is zero (an omitted field, since zero
// is never a meaningful Hamming-distance ceiling).
func (c Config) ApplyTo(m *feature.Model) {
	if c.IgnoreDistance > 0 {
		m.IgnoreDistance = c.IgnoreDistance
	}
}

// LibraryMismatchError reports a rule program's LIBRARY/VERSION header
// disagreeing with the configured library, mirroring PyLaut's
// SoundLaw.sc_lib_name/sc_lib_version validation.
type LibraryMismatchError struct {
	Configured, Declared string
	Field                string // "library" or "library version"
}

func (e *LibraryMismatchError) Error() string {
	return fmt.Sprintf("engineconfig: program declares %s %q, configured %s is %q",
		e.Field, e.Declared, e.Field, e.Configured)
}

// CheckProgram validates prog's optional LIBRARY/VERSION header against
// c. A program that declares no header, or a Config with no configured
// library, always passes -- the check only fires when both sides name
// something and they disagree.
func (c Config) CheckProgram(prog *soundlaw.Program) error {
	if c.LibraryName != "" && prog.LibraryName != "" && prog.LibraryName != c.LibraryName {
		return &LibraryMismatchError{Configured: c.LibraryName, Declared: prog.LibraryName, Field: "library"}
	}
	if c.LibraryVersion != "" && prog.LibraryVersion != "" && prog.LibraryVersion != c.LibraryVersion {
		return &LibraryMismatchError{Configured: c.LibraryVersion, Declared: prog.LibraryVersion, Field: "library version"}
	}
	return nil
}
