// Package ephemeris defines the boundary to the astronomical and geographic
// collaborators a chart needs, and ships file-backed adapters for them.
//
// The sidereal mode is an explicit argument on every call. Nothing in this
// package keeps a process-wide mode, so concurrent charts with different
// ayanamsas cannot interfere.
package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papapumpkin/kundali/internal/vedic"
)

// Sentinel errors returned by adapters.
var (
	// ErrNoReading indicates the ephemeris has no data for the requested instant.
	ErrNoReading = errors.New("no ephemeris reading for instant")
	// ErrPlaceNotFound indicates the geocoder could not resolve a place name.
	ErrPlaceNotFound = errors.New("place not found")
	// ErrNoOffset indicates no UTC offset is known for a location.
	ErrNoOffset = errors.New("no utc offset for location")
	// ErrUnknownMode indicates an unsupported sidereal mode.
	ErrUnknownMode = errors.New("unknown sidereal mode")
)

// SiderealMode names an ayanamsa convention.
type SiderealMode string

const (
	Lahiri       SiderealMode = "lahiri"
	Raman        SiderealMode = "raman"
	Krishnamurti SiderealMode = "krishnamurti"
)

// ParseMode validates a mode name. The empty string means Lahiri.
func ParseMode(s string) (SiderealMode, error) {
	switch m := SiderealMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Lahiri, nil
	case Lahiri, Raman, Krishnamurti:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Ascendant is the rising point at an instant and place.
type Ascendant struct {
	Tropical float64 // tropical ecliptic longitude of the Ascendant
	Ayanamsa float64 // offset between tropical and sidereal zodiacs
}

// Sidereal returns the sidereal Ascendant longitude in [0, 360).
func (a Ascendant) Sidereal() (float64, error) {
	return vedic.Normalize(a.Tropical - a.Ayanamsa)
}

// Ephemeris supplies sidereal planetary longitudes and the Ascendant.
type Ephemeris interface {
	// Longitudes returns sidereal longitudes for Sun through Saturn and Rahu
	// (mean node). Ketu is derived by the caller.
	Longitudes(ctx context.Context, utc time.Time, mode SiderealMode) (map[vedic.Planet]float64, error)

	// Ascendant returns the tropical Ascendant and the ayanamsa in use.
	Ascendant(ctx context.Context, utc time.Time, lat, lon float64, mode SiderealMode) (Ascendant, error)
}

// Location is a resolved place.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	TimeZone  string   // IANA zone name, may be empty
	Offset    *float64 // fixed offset in hours when TimeZone is empty
}

// Geocoder resolves place names and their UTC offsets.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (Location, error)

	// UTCOffset returns the offset in force at the given local wall time.
	UTCOffset(ctx context.Context, loc Location, local time.Time) (time.Duration, error)
}

// HoursToOffset converts fractional hours to a duration, e.g. 5.5 → 5h30m.
func HoursToOffset(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
