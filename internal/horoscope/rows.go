package horoscope

import (
	"github.com/papapumpkin/kundali/internal/vedic"
)

// LagnaLabel names the Ascendant row of the position table.
const LagnaLabel = "Lagna"

// PositionRow is one line of the position table.
type PositionRow struct {
	Body          string        `json:"body"` // planet name or "Lagna"
	Planet        *vedic.Planet `json:"planet,omitempty"`
	Longitude     float64       `json:"longitude"`
	Sign          vedic.Sign    `json:"sign"`
	SignName      string        `json:"sign_name"`
	Degree        float64       `json:"degree"`
	DMS           string        `json:"dms"`
	Nakshatra     string        `json:"nakshatra"`
	Pada          int           `json:"pada"`
	NakshatraLord vedic.Planet  `json:"nakshatra_lord"`
	SubLord       vedic.Planet  `json:"sub_lord"`
	House         int           `json:"house"`
	Dignity       vedic.Dignity `json:"dignity"`
}

// positionRows builds the table with the Ascendant first and the planets in
// display order. Houses come from the rasi chart.
func positionRows(lagnaLon float64, positions []vedic.Position, rasi *vedic.Chart) ([]PositionRow, error) {
	rows := make([]PositionRow, 0, len(positions)+1)
	lagna, err := row(LagnaLabel, lagnaLon)
	if err != nil {
		return nil, err
	}
	lagna.House = 1
	rows = append(rows, lagna)

	for _, pos := range positions {
		r, err := row(pos.Planet.String(), pos.Longitude)
		if err != nil {
			return nil, err
		}
		p := pos.Planet
		r.Planet = &p
		r.House = rasi.HouseOfPlanet(p)
		for _, o := range rasi.House(r.House) {
			if o.Planet == p {
				r.Dignity = o.Dignity
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func row(body string, lon float64) (PositionRow, error) {
	sign, err := vedic.RasiSign(lon)
	if err != nil {
		return PositionRow{}, err
	}
	deg, err := vedic.DegreeInSign(lon)
	if err != nil {
		return PositionRow{}, err
	}
	nak, err := vedic.Nakshatra(lon)
	if err != nil {
		return PositionRow{}, err
	}
	return PositionRow{
		Body:          body,
		Longitude:     lon,
		Sign:          sign,
		SignName:      sign.Name(),
		Degree:        deg,
		DMS:           vedic.FormatDMS(deg),
		Nakshatra:     nak.Name,
		Pada:          nak.Pada,
		NakshatraLord: nak.Lord,
		SubLord:       nak.SubLord,
	}, nil
}

// Row returns the table row for p.
func (h *Horoscope) Row(p vedic.Planet) (PositionRow, bool) {
	for _, r := range h.Rows {
		if r.Planet != nil && *r.Planet == p {
			return r, true
		}
	}
	return PositionRow{}, false
}
