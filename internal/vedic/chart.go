package vedic

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Position is a sidereal longitude for one planet.
type Position struct {
	Planet    Planet  `json:"planet"`
	Longitude float64 `json:"longitude"`
}

// ChartKind selects the divisional chart.
type ChartKind int

const (
	Rasi    ChartKind = iota // D1
	Navamsa                  // D9
)

func (k ChartKind) String() string {
	switch k {
	case Rasi:
		return "D1"
	case Navamsa:
		return "D9"
	default:
		return fmt.Sprintf("ChartKind(%d)", int(k))
	}
}

// SignIn returns the sign lon occupies in the chart kind.
func (k ChartKind) SignIn(lon float64) (Sign, error) {
	switch k {
	case Rasi:
		return RasiSign(lon)
	case Navamsa:
		return NavamsaSign(lon)
	default:
		return 0, fmt.Errorf("unknown chart kind %d", int(k))
	}
}

// Occupant is one planet placed in a house.
type Occupant struct {
	Planet  Planet  `json:"planet"`
	Label   string  `json:"label"`
	Sign    Sign    `json:"sign"`
	Degree  float64 `json:"degree"`
	Dignity Dignity `json:"dignity"`
}

// Chart maps houses to their occupants. Houses[0] is unused so that
// Houses[h] is house h.
type Chart struct {
	Kind   ChartKind
	Lagna  Sign
	Houses [13][]Occupant
}

// MarshalJSON encodes the houses as an object keyed "1".."12".
func (c Chart) MarshalJSON() ([]byte, error) {
	houses := make(map[string][]Occupant, 12)
	for h := 1; h <= 12; h++ {
		houses[strconv.Itoa(h)] = append([]Occupant{}, c.Houses[h]...)
	}
	return json.Marshal(struct {
		Kind   string                `json:"kind"`
		Lagna  Sign                  `json:"lagna"`
		Houses map[string][]Occupant `json:"houses"`
	}{c.Kind.String(), c.Lagna, houses})
}

// House returns the occupants of house h (1..12).
func (c *Chart) House(h int) []Occupant {
	if h < 1 || h > 12 {
		return nil
	}
	return c.Houses[h]
}

// HouseOfPlanet returns the house p occupies, or 0 if it is absent.
func (c *Chart) HouseOfPlanet(p Planet) int {
	for h := 1; h <= 12; h++ {
		for _, o := range c.Houses[h] {
			if o.Planet == p {
				return h
			}
		}
	}
	return 0
}

// Label is the display label of a planet with its dignity markers.
func Label(p Planet, d Dignity) string {
	return p.Abbrev() + d.Markers()
}

// BuildChart places every planet in its house for the chart kind, with
// lagna as house 1. positions must name each of the nine bodies once; the
// houses list planets in display order regardless of input order.
func BuildChart(kind ChartKind, positions []Position, lagna Sign, opts Options) (Chart, error) {
	if !lagna.Valid() {
		return Chart{}, fmt.Errorf("%w: %d", ErrInvalidLagna, int(lagna))
	}
	if kind != Rasi && kind != Navamsa {
		return Chart{}, fmt.Errorf("unknown chart kind %d", int(kind))
	}
	byPlanet, err := indexPositions(positions)
	if err != nil {
		return Chart{}, err
	}

	sunLon := byPlanet[Sun]
	chart := Chart{Kind: kind, Lagna: lagna}
	for _, p := range planets {
		lon := byPlanet[p]
		d1 := rasiSign(lon)
		d9 := navamsaSign(lon)
		sign := d1
		if kind == Navamsa {
			sign = d9
		}
		dig, err := ComputeDignity(p, lon, sunLon, sign, d1, d9, opts)
		if err != nil {
			return Chart{}, err
		}
		h := houseOf(sign, lagna)
		chart.Houses[h] = append(chart.Houses[h], Occupant{
			Planet:  p,
			Label:   Label(p, dig),
			Sign:    sign,
			Degree:  degreeIn(kind, lon),
			Dignity: dig,
		})
	}
	return chart, nil
}

// degreeIn is the degree within the sign for D1, and the position scaled
// into the navamsa sign for D9.
func degreeIn(kind ChartKind, lon float64) float64 {
	inSign := lon - float64(rasiSign(lon)-1)*SignWidth
	if kind == Navamsa {
		inPada := inSign - float64(padaIndex(inSign))*PadaWidth
		return math.Min(math.Max(inPada*9, 0), math.Nextafter(SignWidth, 0))
	}
	return inSign
}

// indexPositions normalizes positions and checks that each planet appears
// exactly once.
func indexPositions(positions []Position) ([numPlanets]float64, error) {
	var out [numPlanets]float64
	var seen [numPlanets]bool
	for _, pos := range positions {
		if !pos.Planet.Valid() {
			return out, fmt.Errorf("%w: %w: %d", ErrIncompletePositions, ErrUnknownPlanet, int(pos.Planet))
		}
		if seen[pos.Planet] {
			return out, fmt.Errorf("%w: %s repeated", ErrIncompletePositions, pos.Planet)
		}
		lon, err := Normalize(pos.Longitude)
		if err != nil {
			return out, fmt.Errorf("%s: %w", pos.Planet, err)
		}
		seen[pos.Planet] = true
		out[pos.Planet] = lon
	}
	for _, p := range planets {
		if !seen[p] {
			return out, fmt.Errorf("%w: %s missing", ErrIncompletePositions, p)
		}
	}
	return out, nil
}

// PositionsFrom builds the nine positions from the seven planets and Rahu,
// deriving Ketu opposite Rahu.
func PositionsFrom(longitudes map[Planet]float64) ([]Position, error) {
	out := make([]Position, 0, numPlanets)
	for _, p := range planets {
		if p == Ketu {
			continue
		}
		lon, ok := longitudes[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing", ErrIncompletePositions, p)
		}
		n, err := Normalize(lon)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, Position{Planet: p, Longitude: n})
	}
	rahu := out[Rahu].Longitude
	ketu, _ := Normalize(rahu + 180)
	out = append(out, Position{Planet: Ketu, Longitude: ketu})
	return out, nil
}
