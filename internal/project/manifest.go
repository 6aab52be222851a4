package project

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"gscript/internal/diag"
)

// Manifest is the decoded gscript.toml for a project: compiler-wide
// defaults the driver applies before running the semantic pass on any
// translation unit.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the [package] and [diagnostics] tables of gscript.toml.
type Config struct {
	Package     PackageConfig     `toml:"package"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// PackageConfig identifies the project; Name is informational only.
type PackageConfig struct {
	Name string `toml:"name"`
}

// DiagnosticsConfig tunes how the driver reports what the semantic pass finds.
type DiagnosticsConfig struct {
	// StrictWarnings lists warning codes (e.g. "E0203") promoted to errors.
	StrictWarnings []string `toml:"strict_warnings"`
	// TabWidth is the column width of a tab for diagnostic rendering.
	TabWidth int `toml:"tab_width"`
	// MaxDiagnostics caps the bag size; 0 means use the driver default.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// DefaultConfig returns the settings used when no gscript.toml is found.
func DefaultConfig() Config {
	return Config{
		Diagnostics: DiagnosticsConfig{
			TabWidth:       4,
			MaxDiagnostics: 200,
		},
	}
}

// LoadManifest locates and decodes gscript.toml starting from startDir.
// ok is false (with a nil error) when no manifest exists anywhere above
// startDir; callers fall back to DefaultConfig in that case.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Diagnostics.TabWidth <= 0 {
		cfg.Diagnostics.TabWidth = 4
	}
	if cfg.Diagnostics.MaxDiagnostics <= 0 {
		cfg.Diagnostics.MaxDiagnostics = 200
	}
	return cfg, nil
}

// StrictCodes decodes the Config's StrictWarnings list into diag.Code
// values the driver can compare against when deciding severities.
func (c Config) StrictCodes() map[diag.Code]struct{} {
	if len(c.Diagnostics.StrictWarnings) == 0 {
		return nil
	}
	out := make(map[diag.Code]struct{}, len(c.Diagnostics.StrictWarnings))
	for _, name := range c.Diagnostics.StrictWarnings {
		var n uint16
		if _, err := fmt.Sscanf(name, "E%04d", &n); err == nil {
			out[diag.Code(n)] = struct{}{}
		}
	}
	return out
}
