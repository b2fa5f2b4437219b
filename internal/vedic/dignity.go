package vedic

import (
	"fmt"
	"math"
	"strings"
)

// Dignity holds the independent strength flags of one planet in one chart.
type Dignity struct {
	Own         bool `json:"own"`
	Exalted     bool `json:"exalted"`
	Debilitated bool `json:"debilitated"`
	Combust     bool `json:"combust"`
	Vargottama  bool `json:"vargottama"`
}

// Markers renders the set flags as a compact suffix, e.g. "↑(c)".
func (d Dignity) Markers() string {
	var b strings.Builder
	if d.Exalted {
		b.WriteString("↑")
	}
	if d.Debilitated {
		b.WriteString("↓")
	}
	if d.Own {
		b.WriteString("°")
	}
	if d.Combust {
		b.WriteString("(c)")
	}
	if d.Vargottama {
		b.WriteString("(v)")
	}
	return b.String()
}

// CombustionPolicy selects how combustion is judged.
type CombustionPolicy string

const (
	// CombustOrb marks a planet combust when it lies within its orb of the Sun.
	CombustOrb CombustionPolicy = "orb"
	// CombustOrbSameSign additionally requires the planet to share the Sun's D1 sign.
	CombustOrbSameSign CombustionPolicy = "orb_same_sign"
)

// Valid reports whether c names a known policy.
func (c CombustionPolicy) Valid() bool {
	return c == CombustOrb || c == CombustOrbSameSign
}

var ownSigns = [numPlanets][]Sign{
	Sun:     {Leo},
	Moon:    {Cancer},
	Mars:    {Aries, Scorpio},
	Mercury: {Gemini, Virgo},
	Jupiter: {Sagittarius, Pisces},
	Venus:   {Taurus, Libra},
	Saturn:  {Capricorn, Aquarius},
	Rahu:    nil,
	Ketu:    nil,
}

// Zero marks the nodes, which have no exaltation in this system.
var exaltationSigns = [numPlanets]Sign{
	Sun:     Aries,
	Moon:    Taurus,
	Mars:    Capricorn,
	Mercury: Virgo,
	Jupiter: Cancer,
	Venus:   Pisces,
	Saturn:  Libra,
	Rahu:    0,
	Ketu:    0,
}

// NaN marks bodies that never combust.
var defaultOrbs = [numPlanets]float64{
	Sun:     math.NaN(),
	Moon:    12,
	Mars:    17,
	Mercury: 12,
	Jupiter: 11,
	Venus:   10,
	Saturn:  15,
	Rahu:    math.NaN(),
	Ketu:    math.NaN(),
}

// OwnSigns returns the signs ruled by p. The nodes rule none.
func OwnSigns(p Planet) []Sign {
	return append([]Sign(nil), ownSigns[p]...)
}

// ExaltationSign returns p's exaltation sign and false for the nodes.
func ExaltationSign(p Planet) (Sign, bool) {
	s := exaltationSigns[p]
	return s, s != 0
}

// DebilitationSign is the sign opposite the exaltation sign.
func DebilitationSign(p Planet) (Sign, bool) {
	s, ok := ExaltationSign(p)
	if !ok {
		return 0, false
	}
	return s.Add(6), true
}

// DefaultOrb returns the combustion orb of p in degrees, and false for the
// Sun and the nodes.
func DefaultOrb(p Planet) (float64, bool) {
	o := defaultOrbs[p]
	return o, !math.IsNaN(o)
}

// Options tune the dignity rules. The zero value uses orb-only combustion
// and the default orbs.
type Options struct {
	Combustion CombustionPolicy
	orbs       [numPlanets]float64
	overridden [numPlanets]bool
}

// NewOptions builds Options from a policy and per-planet orb overrides.
// Overrides for the Sun or the nodes, and negative orbs, are rejected.
func NewOptions(policy CombustionPolicy, orbs map[Planet]float64) (Options, error) {
	if policy == "" {
		policy = CombustOrb
	}
	if !policy.Valid() {
		return Options{}, fmt.Errorf("unknown combustion policy %q", policy)
	}
	opts := Options{Combustion: policy}
	for p, o := range orbs {
		if !p.Valid() {
			return Options{}, fmt.Errorf("%w: %d", ErrUnknownPlanet, int(p))
		}
		if _, ok := DefaultOrb(p); !ok {
			return Options{}, fmt.Errorf("%w: %s never combusts", ErrInvalidOrb, p)
		}
		if math.IsNaN(o) || o < 0 || o > 180 {
			return Options{}, fmt.Errorf("%w: %s orb %v", ErrInvalidOrb, p, o)
		}
		opts.orbs[p] = o
		opts.overridden[p] = true
	}
	return opts, nil
}

// Orb returns the effective combustion orb for p.
func (o Options) Orb(p Planet) (float64, bool) {
	def, ok := DefaultOrb(p)
	if !ok {
		return 0, false
	}
	if o.overridden[p] {
		return o.orbs[p], true
	}
	return def, true
}

// ComputeDignity judges p at lon against the Sun at sunLon. sign is the sign
// in the chart being judged (D1 or D9); d1 and d9 drive vargottama.
func ComputeDignity(p Planet, lon, sunLon float64, sign, d1, d9 Sign, opts Options) (Dignity, error) {
	if !p.Valid() {
		return Dignity{}, fmt.Errorf("%w: %d", ErrUnknownPlanet, int(p))
	}
	lon, err := Normalize(lon)
	if err != nil {
		return Dignity{}, fmt.Errorf("%s: %w", p, err)
	}
	sunLon, err = Normalize(sunLon)
	if err != nil {
		return Dignity{}, fmt.Errorf("sun: %w", err)
	}
	for _, s := range []Sign{sign, d1, d9} {
		if !s.Valid() {
			return Dignity{}, fmt.Errorf("%w: %d", ErrInvalidSign, int(s))
		}
	}

	var d Dignity
	for _, s := range ownSigns[p] {
		if s == sign {
			d.Own = true
		}
	}
	if ex, ok := ExaltationSign(p); ok {
		d.Exalted = sign == ex
		d.Debilitated = sign == ex.Add(6)
	}
	if orb, ok := opts.Orb(p); ok {
		d.Combust = Separation(lon, sunLon) <= orb
		if d.Combust && opts.Combustion == CombustOrbSameSign {
			d.Combust = rasiSign(lon) == rasiSign(sunLon)
		}
	}
	d.Vargottama = d1 == d9
	return d, nil
}
