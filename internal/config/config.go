package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/papapumpkin/kundali/internal/dasha"
	"github.com/papapumpkin/kundali/internal/ephemeris"
	"github.com/papapumpkin/kundali/internal/vedic"
)

// ErrInvalidConfig wraps every validation failure from Load.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all runtime configuration for kundali.
// Values are populated from .kundali.yaml, KUNDALI_* env vars, and CLI flags.
type Config struct {
	SiderealMode  string             `mapstructure:"sidereal_mode"`
	YearDays      float64            `mapstructure:"year_days"`
	HorizonYears  float64            `mapstructure:"horizon_years"`
	WindowDays    float64            `mapstructure:"window_days"`
	DashaDepth    int                `mapstructure:"dasha_depth"`
	Combustion    string             `mapstructure:"combustion"`
	Orbs          map[string]float64 `mapstructure:"orbs"`
	EphemerisPath string             `mapstructure:"ephemeris_path"`
	GazetteerPath string             `mapstructure:"gazetteer_path"`
	DBPath        string             `mapstructure:"db_path"`
	TelemetryPath string             `mapstructure:"telemetry_path"`
	Workers       int                `mapstructure:"workers"`
	Verbose       bool               `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates it.
func Load() (Config, error) {
	viper.SetDefault("sidereal_mode", string(ephemeris.Lahiri))
	viper.SetDefault("year_days", dasha.DefaultYearDays)
	viper.SetDefault("horizon_years", 120.0)
	viper.SetDefault("window_days", 365.0)
	viper.SetDefault("dasha_depth", int(dasha.Pratyantar))
	viper.SetDefault("combustion", string(vedic.CombustOrb))
	viper.SetDefault("ephemeris_path", "ephemeris.toml")
	viper.SetDefault("gazetteer_path", "gazetteer.toml")
	viper.SetDefault("db_path", ".kundali/profiles.db")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("workers", 4)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and numeric ranges.
func (c Config) Validate() error {
	var problems []string
	if _, err := c.Mode(); err != nil {
		problems = append(problems, err.Error())
	}
	if !finite(c.YearDays) || c.YearDays <= 0 {
		problems = append(problems, fmt.Sprintf("year_days must be positive, got %v", c.YearDays))
	}
	if !finite(c.HorizonYears) || c.HorizonYears < 0 || c.HorizonYears > dasha.MaxHorizonYears {
		problems = append(problems, fmt.Sprintf("horizon_years must be in [0, %v], got %v", dasha.MaxHorizonYears, c.HorizonYears))
	}
	if !finite(c.WindowDays) || c.WindowDays < 0 || c.WindowDays > dasha.MaxWindowDays {
		problems = append(problems, fmt.Sprintf("window_days must be in [0, %v], got %v", dasha.MaxWindowDays, c.WindowDays))
	}
	if c.DashaDepth < int(dasha.Maha) || c.DashaDepth > int(dasha.Pratyantar) {
		problems = append(problems, fmt.Sprintf("dasha_depth must be 1, 2 or 3, got %d", c.DashaDepth))
	}
	if _, err := c.DignityOptions(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Workers < 1 {
		problems = append(problems, fmt.Sprintf("workers must be at least 1, got %d", c.Workers))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Mode returns the configured sidereal mode.
func (c Config) Mode() (ephemeris.SiderealMode, error) {
	return ephemeris.ParseMode(c.SiderealMode)
}

// Depth returns the configured dasha depth.
func (c Config) Depth() dasha.Level {
	return dasha.Level(c.DashaDepth)
}

// DignityOptions builds the combustion policy and orb overrides. Orb keys
// are planet names or codes.
func (c Config) DignityOptions() (vedic.Options, error) {
	orbs := make(map[vedic.Planet]float64, len(c.Orbs))
	for name, orb := range c.Orbs {
		p, err := vedic.ParsePlanet(name)
		if err != nil {
			return vedic.Options{}, fmt.Errorf("orbs.%s: %w", name, err)
		}
		orbs[p] = orb
	}
	return vedic.NewOptions(vedic.CombustionPolicy(strings.ToLower(c.Combustion)), orbs)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
