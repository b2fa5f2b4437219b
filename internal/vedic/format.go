package vedic

import (
	"fmt"
	"math"
)

// FormatDMS renders an angle as D°MM′SS″. Rounding to the nearest second
// happens here and nowhere upstream; a rounded 60″ carries into the minutes.
func FormatDMS(deg float64) string {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return "—"
	}
	sign := ""
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	total := int64(math.Round(deg * 3600))
	d := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%s%d°%02d′%02d″", sign, d, m, s)
}
