package vedic

import (
	"fmt"
	"math"
)

var nakshatraNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra", "Punarvasu",
	"Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni", "Hasta",
	"Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha", "Mula", "Purva Ashadha",
	"Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha", "Purva Bhadrapada",
	"Uttara Bhadrapada", "Revati",
}

// NakshatraInfo describes where a longitude falls among the 27 mansions.
type NakshatraInfo struct {
	Index   int     `json:"index"` // 0..26
	Name    string  `json:"name"`
	Pada    int     `json:"pada"` // 1..4
	Lord    Planet  `json:"lord"`
	SubLord Planet  `json:"sub_lord"`
	Elapsed float64 `json:"elapsed"` // fraction of the mansion already traversed, [0, 1)
}

// Nakshatra locates lon among the lunar mansions. The lord of mansion i is
// VimshottariOrder()[i mod 9]; the sub-lord splits the mansion among the nine
// lords in proportion to their period years, starting at the lord.
func Nakshatra(lon float64) (NakshatraInfo, error) {
	lon, err := Normalize(lon)
	if err != nil {
		return NakshatraInfo{}, err
	}
	idx := int(math.Floor(lon / NakshatraSpan))
	if idx > 26 {
		idx = 26
	}
	within := lon - float64(idx)*NakshatraSpan
	frac := within / NakshatraSpan
	if frac < 0 {
		frac = 0
	}
	if frac >= 1 {
		frac = math.Nextafter(1, 0)
	}
	lord := vimshottariOrder[idx%len(vimshottariOrder)]
	pada := int(frac*4) + 1
	if pada > 4 {
		pada = 4
	}
	return NakshatraInfo{
		Index:   idx,
		Name:    nakshatraNames[idx],
		Pada:    pada,
		Lord:    lord,
		SubLord: subLord(lord, frac),
		Elapsed: frac,
	}, nil
}

// subLord walks the proportional shares of the mansion from lord and
// returns the owner of the share containing frac.
func subLord(lord Planet, frac float64) Planet {
	seq := VimshottariFrom(lord)
	acc := 0.0
	for _, p := range seq {
		acc += vimshottariYears[p] / VimshottariTotalYears
		if frac < acc {
			return p
		}
	}
	return seq[len(seq)-1]
}

// NakshatraName returns the name of mansion idx (0..26).
func NakshatraName(idx int) string {
	if idx < 0 || idx >= len(nakshatraNames) {
		return fmt.Sprintf("Nakshatra(%d)", idx)
	}
	return nakshatraNames[idx]
}
