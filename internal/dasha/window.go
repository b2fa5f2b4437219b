package dasha

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/papapumpkin/kundali/internal/vedic"
)

// Period is one row of a windowed query: the lord path from the Mahadasha
// down to the requested level, and the interval of the deepest period.
type Period struct {
	Level Level          `json:"level"`
	Lords []vedic.Planet `json:"lords"`
	Start time.Time      `json:"start"`
	End   time.Time      `json:"end"`
}

// Maha returns the Mahadasha lord.
func (p Period) Maha() vedic.Planet { return p.Lords[0] }

// Antar returns the Antardasha lord, if the row goes that deep.
func (p Period) Antar() (vedic.Planet, bool) {
	if len(p.Lords) < 2 {
		return 0, false
	}
	return p.Lords[1], true
}

// Pratyantar returns the Pratyantardasha lord, if the row goes that deep.
func (p Period) Pratyantar() (vedic.Planet, bool) {
	if len(p.Lords) < 3 {
		return 0, false
	}
	return p.Lords[2], true
}

// PeriodsInWindow returns the periods at depth that intersect
// [now, now+windowDays], sorted by end time. A window reaching past the last
// Mahadasha returns everything from now to the end of the sequence. Only segments overlapping the
// window are subdivided, so a short lookahead never materializes the full
// nine-by-nine-by-nine tree.
func (e *Engine) PeriodsInWindow(now time.Time, mahas []Segment, windowDays float64, depth Level) ([]Period, error) {
	if depth < Maha || depth > Pratyantar {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, int(depth))
	}
	if math.IsNaN(windowDays) || math.IsInf(windowDays, 0) || windowDays < 0 {
		return nil, fmt.Errorf("%w: %v days", ErrInvalidWindow, windowDays)
	}
	until := windowEnd(now, mahas, windowDays)

	out := []Period{}
	var walk func(seg Segment, path []vedic.Planet)
	walk = func(seg Segment, path []vedic.Planet) {
		if !seg.Overlaps(now, until) {
			return
		}
		path = append(path[:len(path):len(path)], seg.Lord)
		if seg.Level == depth {
			out = append(out, Period{Level: seg.Level, Lords: path, Start: seg.Start, End: seg.End})
			return
		}
		for _, child := range e.Subdivide(seg) {
			walk(child, path)
		}
	}
	for _, m := range mahas {
		walk(m, nil)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].End.Before(out[j].End) })
	return out, nil
}

// windowEnd returns now+windowDays, clamped to the end of the last
// Mahadasha. Long windows would otherwise overflow time.Duration.
func windowEnd(now time.Time, mahas []Segment, windowDays float64) time.Time {
	if len(mahas) == 0 {
		return now
	}
	last := mahas[len(mahas)-1].End
	if !last.After(now) {
		return now
	}
	span := windowDays * float64(24*time.Hour)
	if span >= float64(last.Sub(now)) {
		return last
	}
	return now.Add(time.Duration(span))
}

// Current returns the period path running at t down to Pratyantardasha, or
// false when t lies outside the Mahadasha sequence.
func (e *Engine) Current(t time.Time, mahas []Segment) (Period, bool) {
	var path []vedic.Planet
	segs := mahas
	var hit Segment
	for level := Maha; level <= Pratyantar; level++ {
		found := false
		for _, s := range segs {
			if s.Contains(t) {
				hit, found = s, true
				break
			}
		}
		if !found {
			if level == Maha {
				return Period{}, false
			}
			break
		}
		path = append(path, hit.Lord)
		segs = e.Subdivide(hit)
	}
	return Period{Level: Level(len(path)), Lords: path, Start: hit.Start, End: hit.End}, true
}
