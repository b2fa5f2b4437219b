// Package vedic provides the sidereal sign, house and dignity rules used to
// build a natal chart. Every function is pure: longitudes and a Lagna sign go
// in, placements and dignity flags come out. Nothing here performs I/O or
// keeps state between calls, so all of it is safe for concurrent use.
package vedic

import (
	"fmt"
	"strings"
)

// Planet identifies one of the nine bodies of the chart.
type Planet int

// The nine bodies in display order. This order is also the iteration order
// used when several planets share a house.
const (
	Sun Planet = iota
	Moon
	Mars
	Mercury
	Jupiter
	Venus
	Saturn
	Rahu
	Ketu

	numPlanets = iota
)

var planets = [numPlanets]Planet{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu}

// Planets returns every body in display order. The result is a copy.
func Planets() [numPlanets]Planet { return planets }

var planetNames = [numPlanets]string{"Sun", "Moon", "Mars", "Mercury", "Jupiter", "Venus", "Saturn", "Rahu", "Ketu"}

var planetAbbrevs = [numPlanets]string{"Su", "Mo", "Ma", "Me", "Ju", "Ve", "Sa", "Ra", "Ke"}

// Valid reports whether p is one of the nine bodies.
func (p Planet) Valid() bool {
	return p >= Sun && p <= Ketu
}

func (p Planet) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Planet(%d)", int(p))
	}
	return planetNames[p]
}

// Abbrev returns the two-letter code, e.g. "Ju".
func (p Planet) Abbrev() string {
	if !p.Valid() {
		return "??"
	}
	return planetAbbrevs[p]
}

// IsNode reports whether p is one of the lunar nodes.
func (p Planet) IsNode() bool {
	return p == Rahu || p == Ketu
}

// ParsePlanet accepts a full name or a two-letter code, case-insensitively.
func ParsePlanet(s string) (Planet, error) {
	s = strings.TrimSpace(s)
	for _, p := range planets {
		if strings.EqualFold(s, planetNames[p]) || strings.EqualFold(s, planetAbbrevs[p]) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPlanet, s)
}

// MarshalText encodes the planet by name so it can key JSON and TOML maps.
func (p Planet) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlanet, int(p))
	}
	return []byte(planetNames[p]), nil
}

// UnmarshalText is the inverse of MarshalText and also accepts codes.
func (p *Planet) UnmarshalText(b []byte) error {
	v, err := ParsePlanet(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
