package dasha

import "github.com/papapumpkin/kundali/internal/vedic"

// Subdivide splits parent into its nine children, starting with the
// parent's own lord. Each child receives parent.Years × years(child)/120,
// measured from the parent's effective duration, so a truncated parent has
// proportionally shorter children. Pratyantardashas are not subdivided.
func (e *Engine) Subdivide(parent Segment) []Segment {
	if parent.Level >= Pratyantar || parent.Level < Maha {
		return nil
	}
	level := parent.Level + 1
	seq := vedic.VimshottariFrom(parent.Lord)
	out := make([]Segment, 0, len(seq))
	offset := parent.Offset
	end := parent.EndOffset()
	for i, p := range seq {
		years := parent.Years * vedic.VimshottariYears(p) / vedic.VimshottariTotalYears
		seg := e.segment(level, p, offset, years)
		if i == len(seq)-1 {
			// Close exactly on the parent's end.
			seg.Years = end - offset
			seg.End = parent.End
		}
		out = append(out, seg)
		offset += years
	}
	assertPartition(out)
	return out
}
