package vedic

import "errors"

// Domain errors. Callers are expected to validate ephemeris output before
// handing it to this package; these errors mark inputs that would otherwise
// produce a silently wrong chart.
var (
	// ErrInvalidLongitude indicates a NaN or infinite longitude.
	ErrInvalidLongitude = errors.New("invalid longitude")
	// ErrInvalidLagna indicates a Lagna sign outside 1..12.
	ErrInvalidLagna = errors.New("invalid lagna sign")
	// ErrInvalidSign indicates a sign outside 1..12.
	ErrInvalidSign = errors.New("invalid sign")
	// ErrUnknownPlanet indicates a planet value or name outside the nine bodies.
	ErrUnknownPlanet = errors.New("unknown planet")
	// ErrIncompletePositions indicates a position set that does not name each
	// of the nine bodies exactly once.
	ErrIncompletePositions = errors.New("positions must contain each planet exactly once")
	// ErrInvalidOrb indicates a combustion orb override that is negative or
	// targets a body that never combusts.
	ErrInvalidOrb = errors.New("invalid combustion orb")
)
