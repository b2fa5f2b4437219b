package dasha

import (
	"fmt"
	"math"
	"time"

	"github.com/papapumpkin/kundali/internal/vedic"
)

// StartingLord returns the Mahadasha lord running at birth and the fraction
// of its period already elapsed, from the Moon's sidereal longitude.
func StartingLord(moonLon float64) (vedic.Planet, float64, error) {
	info, err := vedic.Nakshatra(moonLon)
	if err != nil {
		return 0, 0, fmt.Errorf("moon: %w", err)
	}
	return info.Lord, info.Elapsed, nil
}

// horizonEpsilon is the shortest tail, in years (about 30ms), kept as its
// own Mahadasha at the horizon.
const horizonEpsilon = 1e-9

// Mahadashas returns the Mahadasha sequence from birth up to horizonYears.
// The first segment holds the unelapsed balance of the birth lord; later
// segments run their full periods in cycle order, and the last is cut at
// the horizon. A horizon of zero or less yields no segments.
func (e *Engine) Mahadashas(moonLon, horizonYears float64) ([]Segment, error) {
	lord, elapsed, err := StartingLord(moonLon)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(horizonYears) || horizonYears > MaxHorizonYears {
		return nil, fmt.Errorf("%w: %v years (max %v)", ErrHorizonTooLarge, horizonYears, MaxHorizonYears)
	}
	if horizonYears <= 0 {
		return []Segment{}, nil
	}

	seq := vedic.VimshottariFrom(lord)
	balance := (1 - elapsed) * vedic.VimshottariYears(lord)

	var out []Segment
	offset := 0.0
	for i := 0; ; i++ {
		p := seq[i%len(seq)]
		years := vedic.VimshottariYears(p)
		if i == 0 {
			years = balance
		}
		// The segment reaching the horizon is the last; a remainder shorter
		// than horizonEpsilon is folded into it rather than emitted.
		if horizonYears-(offset+years) < horizonEpsilon {
			out = append(out, e.segment(Maha, p, offset, horizonYears-offset))
			break
		}
		out = append(out, e.segment(Maha, p, offset, years))
		offset += years
	}
	assertPartition(out)
	return out, nil
}

// MahaRow is one line of the Mahadasha table.
type MahaRow struct {
	Lord     vedic.Planet `json:"lord"`
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	Years    float64      `json:"years"`
	AgeAtEnd float64      `json:"age_at_end_years"`
}

// MahaTable summarizes Mahadasha segments for display.
func MahaTable(mahas []Segment) []MahaRow {
	rows := make([]MahaRow, 0, len(mahas))
	for _, s := range mahas {
		rows = append(rows, MahaRow{
			Lord:     s.Lord,
			Start:    s.Start,
			End:      s.End,
			Years:    s.Years,
			AgeAtEnd: s.EndOffset(),
		})
	}
	return rows
}

// assertPartition panics if segs are not contiguous. Valid inputs can never
// trigger it.
func assertPartition(segs []Segment) {
	for i := 1; i < len(segs); i++ {
		if !segs[i-1].End.Equal(segs[i].Start) {
			panic(fmt.Sprintf("dasha: %s %d ends %s but %d starts %s",
				segs[i].Level, i-1, segs[i-1].End, i, segs[i].Start))
		}
	}
}
