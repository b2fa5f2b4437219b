// Package horoscope turns a birth record into a natal chart. It resolves the
// place and UTC offset, reads the ephemeris with an explicit sidereal mode,
// and hands the longitudes to the vedic and dasha packages.
package horoscope

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/papapumpkin/kundali/internal/birth"
	"github.com/papapumpkin/kundali/internal/dasha"
	"github.com/papapumpkin/kundali/internal/ephemeris"
	"github.com/papapumpkin/kundali/internal/vedic"
)

// Sentinel errors.
var (
	// ErrNoEphemeris indicates an engine built without an ephemeris.
	ErrNoEphemeris = errors.New("horoscope: no ephemeris configured")
	// ErrNotComputed indicates a horoscope that did not come from Compute,
	// e.g. one decoded from an export, and so has no dasha engine.
	ErrNotComputed = errors.New("horoscope: not computed by an engine")
)

// DefaultHorizonYears is how far past birth the Mahadasha list runs.
const DefaultHorizonYears = 120.0

// Option configures an Engine.
type Option func(*Engine)

// WithMode selects the ayanamsa passed to every ephemeris call.
func WithMode(m ephemeris.SiderealMode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithDignity sets the combustion policy and orbs.
func WithDignity(opts vedic.Options) Option {
	return func(e *Engine) { e.dignity = opts }
}

// WithHorizon sets the Mahadasha horizon in years.
func WithHorizon(years float64) Option {
	return func(e *Engine) { e.horizon = years }
}

// WithDashaOptions passes options to every dasha engine created.
func WithDashaOptions(opts ...dasha.Option) Option {
	return func(e *Engine) { e.dashaOpts = append(e.dashaOpts, opts...) }
}

// Engine computes horoscopes. It holds only immutable collaborators and is
// safe for concurrent use.
type Engine struct {
	eph       ephemeris.Ephemeris
	geo       ephemeris.Geocoder
	mode      ephemeris.SiderealMode
	dignity   vedic.Options
	horizon   float64
	dashaOpts []dasha.Option
}

// New returns an engine. geo may be nil when every record carries explicit
// coordinates and an offset.
func New(eph ephemeris.Ephemeris, geo ephemeris.Geocoder, opts ...Option) (*Engine, error) {
	if eph == nil {
		return nil, ErrNoEphemeris
	}
	e := &Engine{
		eph:     eph,
		geo:     geo,
		mode:    ephemeris.Lahiri,
		horizon: DefaultHorizonYears,
	}
	for _, opt := range opts {
		opt(e)
	}
	mode, err := ephemeris.ParseMode(string(e.mode))
	if err != nil {
		return nil, err
	}
	e.mode = mode
	if e.horizon > dasha.MaxHorizonYears || math.IsNaN(e.horizon) {
		return nil, fmt.Errorf("%w: %v years", dasha.ErrHorizonTooLarge, e.horizon)
	}
	return e, nil
}

// Mode returns the sidereal mode in use.
func (e *Engine) Mode() ephemeris.SiderealMode { return e.mode }

// Horoscope is the computed natal chart of one record.
type Horoscope struct {
	Birth     birth.Record           `json:"birth"`
	Place     string                 `json:"place"`
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Offset    time.Duration          `json:"-"`
	Zone      string                 `json:"utc_offset"` // Offset as ±HH:MM
	UTC       time.Time              `json:"utc"`
	Mode      ephemeris.SiderealMode `json:"sidereal_mode"`
	Ayanamsa  float64                `json:"ayanamsa"`
	Ascendant float64                `json:"ascendant"` // sidereal
	Positions []vedic.Position       `json:"positions"`
	Rows      []PositionRow          `json:"table"`
	Rasi      vedic.Chart            `json:"rasi"`
	Navamsa   vedic.Chart            `json:"navamsa"`
	Dashas    []dasha.Segment        `json:"mahadashas"`

	dasha *dasha.Engine
}

// Compute builds the horoscope of rec.
func (e *Engine) Compute(ctx context.Context, rec birth.Record) (*Horoscope, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	loc, offset, err := e.locate(ctx, rec)
	if err != nil {
		return nil, err
	}
	utc := time.Date(rec.Local.Year(), rec.Local.Month(), rec.Local.Day(),
		rec.Local.Hour(), rec.Local.Minute(), rec.Local.Second(), rec.Local.Nanosecond(), time.UTC).Add(-offset)

	longitudes, err := e.eph.Longitudes(ctx, utc, e.mode)
	if err != nil {
		return nil, fmt.Errorf("longitudes: %w", err)
	}
	asc, err := e.eph.Ascendant(ctx, utc, loc.Latitude, loc.Longitude, e.mode)
	if err != nil {
		return nil, fmt.Errorf("ascendant: %w", err)
	}
	lagnaLon, err := asc.Sidereal()
	if err != nil {
		return nil, fmt.Errorf("ascendant: %w", err)
	}
	positions, err := vedic.PositionsFrom(longitudes)
	if err != nil {
		return nil, err
	}

	// Lagna cannot fail past Normalize, so the errors are impossible here.
	d1Lagna, _ := vedic.RasiSign(lagnaLon)
	d9Lagna, _ := vedic.NavamsaSign(lagnaLon)
	rasi, err := vedic.BuildChart(vedic.Rasi, positions, d1Lagna, e.dignity)
	if err != nil {
		return nil, err
	}
	navamsa, err := vedic.BuildChart(vedic.Navamsa, positions, d9Lagna, e.dignity)
	if err != nil {
		return nil, err
	}
	rows, err := positionRows(lagnaLon, positions, &rasi)
	if err != nil {
		return nil, err
	}

	de, err := dasha.New(utc, e.dashaOpts...)
	if err != nil {
		return nil, err
	}
	mahas, err := de.Mahadashas(positions[vedic.Moon].Longitude, e.horizon)
	if err != nil {
		return nil, err
	}

	return &Horoscope{
		Birth:     rec,
		Place:     loc.Name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Offset:    offset,
		Zone:      FormatOffset(offset),
		UTC:       utc,
		Mode:      e.mode,
		Ayanamsa:  asc.Ayanamsa,
		Ascendant: lagnaLon,
		Positions: positions,
		Rows:      rows,
		Rasi:      rasi,
		Navamsa:   navamsa,
		Dashas:    mahas,
		dasha:     de,
	}, nil
}

// locate resolves coordinates and the UTC offset. Explicit coordinates skip
// the geocoder for position, and an explicit offset skips it for time.
func (e *Engine) locate(ctx context.Context, rec birth.Record) (ephemeris.Location, time.Duration, error) {
	override, hasOverride, err := rec.Offset()
	if err != nil {
		return ephemeris.Location{}, 0, err
	}

	var loc ephemeris.Location
	switch {
	case rec.Latitude != nil && rec.Longitude != nil && (hasOverride || rec.Place == ""):
		loc = ephemeris.Location{Name: rec.Place, Latitude: *rec.Latitude, Longitude: *rec.Longitude}
		if loc.Name == "" {
			loc.Name = fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
		}
	default:
		if e.geo == nil {
			return ephemeris.Location{}, 0, fmt.Errorf("%w: %q (no gazetteer)", ephemeris.ErrPlaceNotFound, rec.Place)
		}
		loc, err = e.geo.Resolve(ctx, rec.Place)
		if err != nil {
			return ephemeris.Location{}, 0, err
		}
		if rec.Latitude != nil && rec.Longitude != nil {
			loc.Latitude, loc.Longitude = *rec.Latitude, *rec.Longitude
		}
	}

	if hasOverride {
		return loc, override, nil
	}
	if e.geo == nil {
		return ephemeris.Location{}, 0, fmt.Errorf("%w: %s", ephemeris.ErrNoOffset, loc.Name)
	}
	offset, err := e.geo.UTCOffset(ctx, loc, rec.Local)
	if err != nil {
		return ephemeris.Location{}, 0, err
	}
	return loc, offset, nil
}

// MahaTable returns the Mahadasha rows.
func (h *Horoscope) MahaTable() []dasha.MahaRow {
	return dasha.MahaTable(h.Dashas)
}

// Window returns the dasha periods at depth running between now and
// now+days.
func (h *Horoscope) Window(now time.Time, days float64, depth dasha.Level) ([]dasha.Period, error) {
	if h.dasha == nil {
		return nil, ErrNotComputed
	}
	return h.dasha.PeriodsInWindow(now, h.Dashas, days, depth)
}

// Current returns the period path running at t. It reports false for a
// horoscope not built by Compute.
func (h *Horoscope) Current(t time.Time) (dasha.Period, bool) {
	if h.dasha == nil {
		return dasha.Period{}, false
	}
	return h.dasha.Current(t, h.Dashas)
}

// FormatOffset renders d as ±HH:MM.
func FormatOffset(d time.Duration) string {
	sign := '+'
	if d < 0 {
		sign, d = '-', -d
	}
	d = d.Round(time.Minute)
	return fmt.Sprintf("%c%02d:%02d", sign, int(d/time.Hour), int(d%time.Hour/time.Minute))
}
