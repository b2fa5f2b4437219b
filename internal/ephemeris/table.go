package ephemeris

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/kundali/internal/vedic"
)

// DefaultTolerance is how far a requested instant may be from a stored
// reading and still match it.
const DefaultTolerance = time.Minute

// Reading is one precomputed ephemeris sample.
type Reading struct {
	UTC        time.Time          `toml:"utc"`
	Mode       string             `toml:"mode"`
	Ayanamsa   float64            `toml:"ayanamsa"`
	Ascendant  float64            `toml:"ascendant"` // tropical
	Latitude   *float64           `toml:"latitude"`
	Longitude  *float64           `toml:"longitude"`
	Longitudes map[string]float64 `toml:"longitudes"`

	mode    SiderealMode
	planets map[vedic.Planet]float64
}

// TableFile is the on-disk layout of an ephemeris table.
type TableFile struct {
	Readings []Reading `toml:"reading"`
}

// Table is an Ephemeris backed by precomputed readings, typically exported
// from a full ephemeris for the instants of interest.
type Table struct {
	readings  []Reading
	tolerance time.Duration
}

// NewTable validates readings and returns a table over them.
func NewTable(readings []Reading) (*Table, error) {
	out := make([]Reading, 0, len(readings))
	for i, r := range readings {
		if err := r.prepare(); err != nil {
			return nil, fmt.Errorf("ephemeris: reading %d (%s): %w", i, r.UTC.Format(time.RFC3339), err)
		}
		out = append(out, r)
	}
	return &Table{readings: out, tolerance: DefaultTolerance}, nil
}

// LoadTable reads a TOML ephemeris table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ephemeris: reading %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable decodes a TOML ephemeris table.
func ParseTable(data []byte) (*Table, error) {
	var f TableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ephemeris: parsing table: %w", err)
	}
	return NewTable(f.Readings)
}

// Len returns the number of readings.
func (t *Table) Len() int { return len(t.readings) }

func (r *Reading) prepare() error {
	mode, err := ParseMode(r.Mode)
	if err != nil {
		return err
	}
	r.mode = mode
	r.planets = make(map[vedic.Planet]float64, len(r.Longitudes))
	for name, lon := range r.Longitudes {
		p, err := vedic.ParsePlanet(name)
		if err != nil {
			return err
		}
		if p == vedic.Ketu {
			return fmt.Errorf("ketu is derived from rahu and must not be listed")
		}
		if math.IsNaN(lon) || math.IsInf(lon, 0) {
			return fmt.Errorf("%s: %w", p, vedic.ErrInvalidLongitude)
		}
		r.planets[p] = lon
	}
	for _, p := range vedic.Planets() {
		if p == vedic.Ketu {
			continue
		}
		if _, ok := r.planets[p]; !ok {
			return fmt.Errorf("%w: %s missing", vedic.ErrIncompletePositions, p)
		}
	}
	return nil
}

// find returns the reading nearest utc within tolerance for mode.
func (t *Table) find(utc time.Time, mode SiderealMode) (*Reading, error) {
	var best *Reading
	bestGap := t.tolerance + 1
	for i := range t.readings {
		r := &t.readings[i]
		if r.mode != mode {
			continue
		}
		gap := r.UTC.Sub(utc)
		if gap < 0 {
			gap = -gap
		}
		if gap <= t.tolerance && gap < bestGap {
			best, bestGap = r, gap
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoReading, utc.UTC().Format(time.RFC3339), mode)
	}
	return best, nil
}

// Longitudes implements Ephemeris.
func (t *Table) Longitudes(ctx context.Context, utc time.Time, mode SiderealMode) (map[vedic.Planet]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := t.find(utc, mode)
	if err != nil {
		return nil, err
	}
	out := make(map[vedic.Planet]float64, len(r.planets))
	for p, lon := range r.planets {
		out[p] = lon
	}
	return out, nil
}

// Ascendant implements Ephemeris. Readings that record coordinates only
// match requests within 0.01° of them.
func (t *Table) Ascendant(ctx context.Context, utc time.Time, lat, lon float64, mode SiderealMode) (Ascendant, error) {
	if err := ctx.Err(); err != nil {
		return Ascendant{}, err
	}
	r, err := t.find(utc, mode)
	if err != nil {
		return Ascendant{}, err
	}
	const coordTolerance = 0.01
	if r.Latitude != nil && math.Abs(*r.Latitude-lat) > coordTolerance {
		return Ascendant{}, fmt.Errorf("%w: latitude %.4f not in table", ErrNoReading, lat)
	}
	if r.Longitude != nil && math.Abs(*r.Longitude-lon) > coordTolerance {
		return Ascendant{}, fmt.Errorf("%w: longitude %.4f not in table", ErrNoReading, lon)
	}
	return Ascendant{Tropical: r.Ascendant, Ayanamsa: r.Ayanamsa}, nil
}
