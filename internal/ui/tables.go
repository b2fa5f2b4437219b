package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/papapumpkin/kundali/internal/dasha"
	"github.com/papapumpkin/kundali/internal/horoscope"
	"github.com/papapumpkin/kundali/internal/profile"
	"github.com/papapumpkin/kundali/internal/vedic"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // headers
	colorAccent  = lipgloss.Color("#FFD700") // running period
	colorMuted   = lipgloss.Color("#636363") // borders, past periods
	colorWhite   = lipgloss.Color("#EEEEEE") // cells
)

var (
	styleHeader  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	styleCurrent = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Padding(0, 1)
	stylePast    = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	styleBorder  = lipgloss.NewStyle().Foreground(colorMuted)
	styleTitle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

const dateLayout = "2006-01-02"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...)
}

func titled(title string, t *table.Table) string {
	return styleTitle.Render(title) + "\n" + t.Render() + "\n"
}

// PositionTable renders the position rows: body, sign, degree, nakshatra
// with its lord and sub-lord, house and dignity markers.
func PositionTable(rows []horoscope.PositionRow) string {
	t := newTable("Body", "Sign", "Degree", "Nakshatra", "Pada", "Lord", "Sub", "House", "Status")
	for _, r := range rows {
		t.Row(r.Body, r.SignName, r.DMS, r.Nakshatra, strconv.Itoa(r.Pada),
			r.NakshatraLord.Abbrev(), r.SubLord.Abbrev(), strconv.Itoa(r.House), dignityText(r.Dignity))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		return styleCell
	})
	return titled("Planetary positions", t)
}

func dignityText(d vedic.Dignity) string {
	var parts []string
	if d.Exalted {
		parts = append(parts, "exalted")
	}
	if d.Debilitated {
		parts = append(parts, "debilitated")
	}
	if d.Own {
		parts = append(parts, "own")
	}
	if d.Combust {
		parts = append(parts, "combust")
	}
	if d.Vargottama {
		parts = append(parts, "vargottama")
	}
	return strings.Join(parts, ", ")
}

// HouseTable renders a chart as one row per house with the sign on its cusp
// and the labels of its occupants.
func HouseTable(c vedic.Chart) string {
	t := newTable("House", "Sign", "Occupants")
	for h := 1; h <= 12; h++ {
		sign := c.Lagna.Add(h - 1)
		var labels []string
		for _, o := range c.House(h) {
			labels = append(labels, o.Label)
		}
		t.Row(strconv.Itoa(h), sign.Name(), strings.Join(labels, " "))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		return styleCell
	})
	title := "Rasi chart (D1)"
	if c.Kind == vedic.Navamsa {
		title = "Navamsa chart (D9)"
	}
	return titled(title, t)
}

// MahaTable renders the Mahadasha list, highlighting the period running at
// now and dimming those already over.
func MahaTable(rows []dasha.MahaRow, now time.Time) string {
	t := newTable("Lord", "Start", "End", "Years", "Age at end")
	for _, r := range rows {
		t.Row(r.Lord.String(), r.Start.Format(dateLayout), r.End.Format(dateLayout),
			strconv.FormatFloat(r.Years, 'f', 2, 64), strconv.FormatFloat(r.AgeAtEnd, 'f', 1, 64))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return styleHeader
		case row < 0 || row >= len(rows):
			return styleCell
		case !now.Before(rows[row].Start) && now.Before(rows[row].End):
			return styleCurrent
		case !now.Before(rows[row].End):
			return stylePast
		default:
			return styleCell
		}
	})
	return titled("Vimshottari Mahadasha", t)
}

// PeriodTable renders windowed dasha rows with one lord column per level.
func PeriodTable(periods []dasha.Period, depth dasha.Level, now time.Time) string {
	headers := []string{"Maha"}
	if depth >= dasha.Antar {
		headers = append(headers, "Antar")
	}
	if depth >= dasha.Pratyantar {
		headers = append(headers, "Pratyantar")
	}
	headers = append(headers, "Start", "End")

	t := newTable(headers...)
	for _, p := range periods {
		cells := make([]string, 0, len(headers))
		for _, l := range p.Lords {
			cells = append(cells, l.String())
		}
		cells = append(cells, p.Start.Format(dateLayout), p.End.Format(dateLayout))
		t.Row(cells...)
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return styleHeader
		case row >= 0 && row < len(periods) && !now.Before(periods[row].Start) && now.Before(periods[row].End):
			return styleCurrent
		default:
			return styleCell
		}
	})
	return titled("Dasha periods", t)
}

// ProfileTable renders saved profiles.
func ProfileTable(ps []profile.Profile) string {
	t := newTable("ID", "Name", "Born", "Place")
	for _, p := range ps {
		id := p.ID
		if len(id) > 8 {
			id = id[:8]
		}
		place := p.Record.Place
		if place == "" && p.Record.Latitude != nil && p.Record.Longitude != nil {
			place = fmt.Sprintf("%.4f, %.4f", *p.Record.Latitude, *p.Record.Longitude)
		}
		t.Row(id, p.Record.Name, p.Record.Local.Format("2006-01-02 15:04"), place)
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		return styleCell
	})
	return titled("Profiles", t)
}
