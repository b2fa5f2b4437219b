package config

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/papapumpkin/kundali/internal/dasha"
	"github.com/papapumpkin/kundali/internal/ephemeris"
	"github.com/papapumpkin/kundali/internal/vedic"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"SiderealMode", cfg.SiderealMode, "lahiri"},
		{"YearDays", cfg.YearDays, 365.2425},
		{"HorizonYears", cfg.HorizonYears, 120.0},
		{"WindowDays", cfg.WindowDays, 365.0},
		{"DashaDepth", cfg.DashaDepth, 3},
		{"Combustion", cfg.Combustion, "orb"},
		{"EphemerisPath", cfg.EphemerisPath, "ephemeris.toml"},
		{"GazetteerPath", cfg.GazetteerPath, "gazetteer.toml"},
		{"DBPath", cfg.DBPath, ".kundali/profiles.db"},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"Workers", cfg.Workers, 4},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if mode, _ := cfg.Mode(); mode != ephemeris.Lahiri {
		t.Errorf("Mode() = %s", mode)
	}
	if cfg.Depth() != dasha.Pratyantar {
		t.Errorf("Depth() = %s", cfg.Depth())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "sidereal_mode",
			envKey: "KUNDALI_SIDEREAL_MODE",
			envVal: "raman",
			field:  func(c Config) any { return c.SiderealMode },
			want:   "raman",
		},
		{
			name:   "year_days",
			envKey: "KUNDALI_YEAR_DAYS",
			envVal: "360",
			field:  func(c Config) any { return c.YearDays },
			want:   360.0,
		},
		{
			name:   "window_days",
			envKey: "KUNDALI_WINDOW_DAYS",
			envVal: "90",
			field:  func(c Config) any { return c.WindowDays },
			want:   90.0,
		},
		{
			name:   "dasha_depth",
			envKey: "KUNDALI_DASHA_DEPTH",
			envVal: "2",
			field:  func(c Config) any { return c.DashaDepth },
			want:   2,
		},
		{
			name:   "combustion",
			envKey: "KUNDALI_COMBUSTION",
			envVal: "orb_same_sign",
			field:  func(c Config) any { return c.Combustion },
			want:   "orb_same_sign",
		},
		{
			name:   "db_path",
			envKey: "KUNDALI_DB_PATH",
			envVal: "/tmp/p.db",
			field:  func(c Config) any { return c.DBPath },
			want:   "/tmp/p.db",
		},
		{
			name:   "verbose",
			envKey: "KUNDALI_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so KUNDALI_* env vars map to config keys.
			viper.SetEnvPrefix("KUNDALI")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key     string
		val     any
		wantMsg string
	}{
		{"sidereal_mode", "fagan", "unknown sidereal mode"},
		{"year_days", 0.0, "year_days"},
		{"horizon_years", 500.0, "horizon_years"},
		{"window_days", -1.0, "window_days"},
		{"window_days", 110000.0, "window_days"},
		{"dasha_depth", 4, "dasha_depth"},
		{"combustion", "sometimes", "combustion policy"},
		{"orbs", map[string]any{"sun": 8.0}, "never combusts"},
		{"orbs", map[string]any{"pluto": 8.0}, "unknown planet"},
		{"workers", 0, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.val)
			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDignityOptions(t *testing.T) {
	resetViper()
	viper.Set("combustion", "ORB_SAME_SIGN")
	viper.Set("orbs", map[string]any{"mars": 8.0, "Ve": 5.5})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, err := cfg.DignityOptions()
	if err != nil {
		t.Fatalf("DignityOptions: %v", err)
	}
	if opts.Combustion != vedic.CombustOrbSameSign {
		t.Errorf("Combustion = %q", opts.Combustion)
	}
	tests := []struct {
		p    vedic.Planet
		want float64
	}{
		{vedic.Mars, 8},
		{vedic.Venus, 5.5},
		{vedic.Saturn, 15},
	}
	for _, tt := range tests {
		if got, _ := opts.Orb(tt.p); got != tt.want {
			t.Errorf("Orb(%s) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
