// Package config is the read-only parameter source for a preprocessor
// run, plus the single write-back of the resolved cutchart id for the
// downstream controller. Values are sampled once at startup; the run
// never re-reads them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mikemacwillie/plasmafilter"
)

// Config is the on-disk configuration.
type Config struct {
	Machine MachineConfig `yaml:"machine"`
	Plasma  PlasmaConfig  `yaml:"plasma"`
}

// MachineConfig mirrors the machine configuration the controller owns:
// the unit system is discovered here once and fixed for the whole run.
type MachineConfig struct {
	LinearUnits string `yaml:"linear_units"` // "mm" or "inch"
	DatabaseURL string `yaml:"database_url"` // sqlite path
	PinFile     string `yaml:"pin_file"`     // cutchart-id publish target
}

// PlasmaConfig carries the hole-processing parameters, in machine
// units.
type PlasmaConfig struct {
	HoleDetectEnabled bool    `yaml:"hole_detect_enabled"`
	ThicknessRatio    float64 `yaml:"hole_thickness_ratio"`
	MaxHoleSize       float64 `yaml:"max_hole_size"`

	Arc1Percent  float64 `yaml:"arc1_percent"`
	Arc2Percent  float64 `yaml:"arc2_percent"`
	Arc3Percent  float64 `yaml:"arc3_percent"`
	Arc2Distance float64 `yaml:"arc2_distance"`
	Arc3Distance float64 `yaml:"arc3_distance"`

	LeadinPercent float64 `yaml:"leadin_percent"`
	LeadinRadius  float64 `yaml:"leadin_radius"`

	KerfWidth        float64 `yaml:"kerf_width"`
	TorchOffDistance float64 `yaml:"torch_off_distance"`

	SmallHoleDetect    bool    `yaml:"small_hole_detect"`
	SmallHoleThreshold float64 `yaml:"small_hole_threshold"`

	MarkVoltageThreshold float64 `yaml:"spot_threshold"`
	MarkDelay            float64 `yaml:"spot_delay"`

	DebugComments bool `yaml:"debug_comments"`
}

// DefaultConfig returns a metric configuration with the conventional
// hole-processing defaults.
func DefaultConfig() *Config {
	return &Config{
		Machine: MachineConfig{
			LinearUnits: "mm",
			DatabaseURL: "plasma.db",
			PinFile:     "cutchart-id",
		},
		Plasma: PlasmaConfig{
			HoleDetectEnabled:  true,
			ThicknessRatio:     5,
			MaxHoleSize:        32,
			Arc1Percent:        60,
			Arc2Percent:        60,
			Arc3Percent:        60,
			Arc2Distance:       3,
			Arc3Distance:       4,
			LeadinPercent:      60,
			LeadinRadius:       0,
			KerfWidth:          1.5,
			TorchOffDistance:   3,
			SmallHoleDetect:    false,
			SmallHoleThreshold: 5,
			MarkDelay:          0.2,
		},
	}
}

// Load reads the configuration from path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	} else if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Imperial reports whether the machine runs in inches.
func (cfg *Config) Imperial() bool {
	return cfg.Machine.LinearUnits == "inch" || cfg.Machine.LinearUnits == "in"
}

// Settings samples the plasma parameters into the run's settings,
// normalizing all distances to millimeters and percentages to
// fractions. This happens exactly once per run.
func (cfg *Config) Settings() plasmafilter.Settings {
	perMM := 1.0
	if cfg.Imperial() {
		perMM = 25.4
	}
	p := cfg.Plasma
	return plasmafilter.Settings{
		HoleDetectEnabled: p.HoleDetectEnabled,
		ThicknessRatio:    p.ThicknessRatio,
		MaxHoleSize:       p.MaxHoleSize / perMM,

		Arc1FeedPercent: p.Arc1Percent / 100,
		Arc2FeedPercent: p.Arc2Percent / 100,
		Arc3FeedPercent: p.Arc3Percent / 100,
		Arc2Distance:    p.Arc2Distance / perMM,
		Arc3Distance:    p.Arc3Distance / perMM,

		LeadinFeedPercent: p.LeadinPercent / 100,
		LeadinRadius:      p.LeadinRadius / perMM,

		KerfWidth:        p.KerfWidth / perMM,
		TorchOffDistance: p.TorchOffDistance / perMM,

		SmallHoleDetect:    p.SmallHoleDetect,
		SmallHoleThreshold: p.SmallHoleThreshold / perMM,

		MarkVoltageThreshold: p.MarkVoltageThreshold,
		MarkDelay:            p.MarkDelay,

		DebugComments: p.DebugComments,
	}
}

// PublishCutchartID writes the resolved active process identifier to
// the configured pin file for the downstream controller. The write is
// atomic: a rename replaces the previous value.
func (cfg *Config) PublishCutchartID(id int) error {
	path := cfg.Machine.PinFile
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(fmt.Sprintf("%d\n", id)), 0o644); err != nil {
		return fmt.Errorf("publishing cutchart id: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing cutchart id: %w", err)
	}
	return nil
}
