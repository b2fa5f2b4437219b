package vedic

import (
	"fmt"
	"math"
)

// Sign is a zodiac sign numbered 1 (Aries) through 12 (Pisces).
type Sign int

// Zodiac signs.
const (
	Aries Sign = iota + 1
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

// SignWidth is the span of one sign in degrees.
const SignWidth = 30.0

// PadaWidth is the span of one navamsa pada (3°20′).
const PadaWidth = SignWidth / 9

var signNames = [13]string{"", "Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces"}

// Valid reports whether s lies in 1..12.
func (s Sign) Valid() bool {
	return s >= Aries && s <= Pisces
}

// Name returns the English sign name.
func (s Sign) Name() string {
	if !s.Valid() {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

func (s Sign) String() string { return s.Name() }

// Modality classifies a sign as movable, fixed or dual.
type Modality int

const (
	Movable Modality = iota
	Fixed
	Dual
)

func (m Modality) String() string {
	switch m {
	case Movable:
		return "movable"
	case Fixed:
		return "fixed"
	case Dual:
		return "dual"
	default:
		return fmt.Sprintf("Modality(%d)", int(m))
	}
}

// Modality returns the sign's modality. Signs cycle movable, fixed, dual
// starting at Aries.
func (s Sign) Modality() Modality {
	return Modality((int(s) - 1) % 3)
}

// Add returns the sign n places after s, wrapping around the zodiac. Add(0)
// is s itself, so the "9th from" a sign is Add(8).
func (s Sign) Add(n int) Sign {
	return Sign(mod(int(s)-1+n, 12) + 1)
}

// Normalize reduces lon into [0, 360). NaN and infinities are rejected.
func Normalize(lon float64) (float64, error) {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLongitude, lon)
	}
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	// -1e-17 + 360 rounds back up to 360.
	if lon >= 360 {
		lon = 0
	}
	return lon, nil
}

// RasiSign returns the D1 sign holding lon. A longitude on an exact multiple
// of 30° belongs to the sign that begins there.
func RasiSign(lon float64) (Sign, error) {
	lon, err := Normalize(lon)
	if err != nil {
		return 0, err
	}
	return rasiSign(lon), nil
}

func rasiSign(lon float64) Sign {
	return Sign(int(math.Floor(lon/SignWidth)) + 1)
}

// DegreeInSign returns the offset of lon within its sign, in [0, 30).
func DegreeInSign(lon float64) (float64, error) {
	lon, err := Normalize(lon)
	if err != nil {
		return 0, err
	}
	return math.Mod(lon, SignWidth), nil
}

// NavamsaSign returns the D9 sign for lon using the Parashari scheme:
// movable signs count from themselves, fixed signs from their 9th and dual
// signs from their 5th, advancing one sign per 3°20′ pada.
func NavamsaSign(lon float64) (Sign, error) {
	lon, err := Normalize(lon)
	if err != nil {
		return 0, err
	}
	return navamsaSign(lon), nil
}

func navamsaSign(lon float64) Sign {
	return navamsaStart(rasiSign(lon)).Add(padaIndex(math.Mod(lon, SignWidth)))
}

// padaIndex returns the 0-based pada (0..8) holding a degree within a sign.
func padaIndex(inSign float64) int {
	pada := int(math.Floor(inSign / PadaWidth))
	// Floating error on the last pada of a sign can land on 9.
	switch {
	case pada > 8:
		return 8
	case pada < 0:
		return 0
	}
	return pada
}

func navamsaStart(s Sign) Sign {
	switch s.Modality() {
	case Fixed:
		return s.Add(8)
	case Dual:
		return s.Add(4)
	default:
		return s
	}
}

// HouseOf returns the house (1..12) a sign occupies when lagna rises.
// Out-of-range values are errors; they are never wrapped into range.
func HouseOf(sign, lagna Sign) (int, error) {
	if !lagna.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLagna, int(lagna))
	}
	if !sign.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSign, int(sign))
	}
	return houseOf(sign, lagna), nil
}

func houseOf(sign, lagna Sign) int {
	return mod(int(sign)-int(lagna), 12) + 1
}

// Separation returns the smaller arc between two longitudes, in [0, 180].
func Separation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
