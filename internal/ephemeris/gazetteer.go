package ephemeris

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // Zone rules for historical birth dates on hosts without a zoneinfo database.

	toml "github.com/pelletier/go-toml/v2"
)

// Place is one gazetteer entry.
type Place struct {
	Name      string   `toml:"name"`
	Aliases   []string `toml:"aliases"`
	Latitude  float64  `toml:"latitude"`
	Longitude float64  `toml:"longitude"`
	TimeZone  string   `toml:"timezone"`
	UTCOffset *float64 `toml:"utc_offset"`
}

// GazetteerFile is the on-disk layout of a gazetteer.
type GazetteerFile struct {
	Places []Place `toml:"place"`
}

// Gazetteer is a Geocoder over a fixed list of places.
type Gazetteer struct {
	byKey map[string]Place
}

// NewGazetteer indexes places by name and alias. IANA zones are checked up
// front so a typo fails at load time rather than per chart.
func NewGazetteer(places []Place) (*Gazetteer, error) {
	g := &Gazetteer{byKey: make(map[string]Place)}
	for _, p := range places {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("gazetteer: place with empty name")
		}
		if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
			return nil, fmt.Errorf("gazetteer: %s: coordinates out of range", p.Name)
		}
		if p.TimeZone != "" {
			if _, err := time.LoadLocation(p.TimeZone); err != nil {
				return nil, fmt.Errorf("gazetteer: %s: %w", p.Name, err)
			}
		} else if p.UTCOffset == nil {
			return nil, fmt.Errorf("gazetteer: %s: %w", p.Name, ErrNoOffset)
		}
		for _, key := range append([]string{p.Name}, p.Aliases...) {
			k := placeKey(key)
			if prev, dup := g.byKey[k]; dup {
				return nil, fmt.Errorf("gazetteer: %q names both %s and %s", key, prev.Name, p.Name)
			}
			g.byKey[k] = p
		}
	}
	return g, nil
}

// LoadGazetteer reads a TOML gazetteer from path.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: reading %s: %w", path, err)
	}
	var f GazetteerFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("gazetteer: parsing %s: %w", path, err)
	}
	return NewGazetteer(f.Places)
}

// placeKey folds case and spacing so "Jabalpur , MP" matches "jabalpur, mp".
func placeKey(s string) string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(strings.ToLower(p)), " ")
	}
	return strings.Join(parts, ",")
}

// Resolve implements Geocoder.
func (g *Gazetteer) Resolve(ctx context.Context, place string) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	p, ok := g.byKey[placeKey(place)]
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrPlaceNotFound, place)
	}
	return Location{
		Name:      p.Name,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		TimeZone:  p.TimeZone,
		Offset:    p.UTCOffset,
	}, nil
}

// UTCOffset implements Geocoder. A zone name wins over a fixed offset so
// historical and daylight-saving rules apply.
func (g *Gazetteer) UTCOffset(ctx context.Context, loc Location, local time.Time) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return OffsetAt(loc, local)
}

// OffsetAt resolves the offset of loc at a local wall time without any
// lookup beyond the zone database.
func OffsetAt(loc Location, local time.Time) (time.Duration, error) {
	if loc.TimeZone != "" {
		tz, err := time.LoadLocation(loc.TimeZone)
		if err != nil {
			return 0, fmt.Errorf("timezone %s: %w", loc.TimeZone, err)
		}
		wall := time.Date(local.Year(), local.Month(), local.Day(),
			local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), tz)
		_, secs := wall.Zone()
		return time.Duration(secs) * time.Second, nil
	}
	if loc.Offset != nil {
		return HoursToOffset(*loc.Offset), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNoOffset, loc.Name)
}
