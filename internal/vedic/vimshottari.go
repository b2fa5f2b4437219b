package vedic

var vimshottariOrder = [numPlanets]Planet{Ketu, Venus, Sun, Moon, Mars, Rahu, Jupiter, Saturn, Mercury}

// VimshottariOrder returns the fixed cycle of period lords, starting at Ketu.
func VimshottariOrder() [numPlanets]Planet { return vimshottariOrder }

// VimshottariTotalYears is the length of one full cycle.
const VimshottariTotalYears = 120.0

// vimshottariYears is keyed by Planet, not by position in the cycle.
var vimshottariYears = [numPlanets]float64{
	Sun:     6,
	Moon:    10,
	Mars:    7,
	Mercury: 17,
	Jupiter: 16,
	Venus:   20,
	Saturn:  19,
	Rahu:    18,
	Ketu:    7,
}

// NakshatraSpan is the width of one lunar mansion (13°20′).
const NakshatraSpan = 360.0 / 27

// VimshottariYears returns the full period length of p in years.
func VimshottariYears(p Planet) float64 {
	return vimshottariYears[p]
}

// VimshottariIndex returns the position of p within the cycle.
func VimshottariIndex(p Planet) int {
	for i, q := range vimshottariOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// VimshottariFrom returns the nine lords in cycle order starting at p.
func VimshottariFrom(p Planet) [numPlanets]Planet {
	var out [numPlanets]Planet
	start := VimshottariIndex(p)
	for i := range out {
		out[i] = vimshottariOrder[(start+i)%len(vimshottariOrder)]
	}
	return out
}
