// Package dasha generates the Vimshottari period hierarchy: the Mahadasha
// sequence from the Moon's birth longitude, its proportional subdivision
// into Antardashas and Pratyantardashas, and a windowed query that expands
// only the periods a date range touches.
//
// All interval arithmetic is carried in fractional years since birth.
// Calendar instants are derived from those offsets and never fed back into
// the arithmetic, so nine-by-nine subdivision does not accumulate drift.
package dasha

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/papapumpkin/kundali/internal/vedic"
)

// Domain errors.
var (
	// ErrHorizonTooLarge indicates a horizon beyond what time.Duration can span.
	ErrHorizonTooLarge = errors.New("dasha horizon too large")
	// ErrInvalidWindow indicates a negative or non-finite window length.
	ErrInvalidWindow = errors.New("invalid dasha window")
	// ErrInvalidDepth indicates a depth other than maha, antar or pratyantar.
	ErrInvalidDepth = errors.New("invalid dasha depth")
	// ErrInvalidYearLength indicates a non-positive year length.
	ErrInvalidYearLength = errors.New("invalid year length")
)

// DefaultYearDays is the tropical year used for all duration arithmetic.
const DefaultYearDays = 365.2425

// MaxHorizonYears bounds the Mahadasha horizon. Two full cycles stay well
// inside the ~292 years a time.Duration can hold.
const MaxHorizonYears = 2 * vedic.VimshottariTotalYears

// MaxWindowDays is the longest window a time.Duration can represent.
const MaxWindowDays = float64(math.MaxInt64 / (24 * time.Hour))

// Level is the nesting depth of a segment.
type Level int

const (
	Maha Level = iota + 1
	Antar
	Pratyantar
)

func (l Level) String() string {
	switch l {
	case Maha:
		return "mahadasha"
	case Antar:
		return "antardasha"
	case Pratyantar:
		return "pratyantardasha"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel accepts a depth as a number (1-3) or a name such as "antar"
// or "antardasha".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "maha", "mahadasha":
		return Maha, nil
	case "2", "antar", "antardasha", "bhukti":
		return Antar, nil
	case "3", "pratyantar", "pratyantardasha":
		return Pratyantar, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDepth, s)
}

// Segment is one period at any level. Offset and Years are authoritative;
// Start and End are the same values projected onto the calendar.
type Segment struct {
	Level  Level        `json:"level"`
	Lord   vedic.Planet `json:"lord"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Offset float64      `json:"offset_years"` // start, in years since birth
	Years  float64      `json:"years"`        // effective duration
}

// EndOffset is the end of the segment in years since birth.
func (s Segment) EndOffset() float64 { return s.Offset + s.Years }

// Duration is the calendar length of the segment.
func (s Segment) Duration() time.Duration { return s.End.Sub(s.Start) }

// Overlaps reports whether the segment intersects [from, to].
func (s Segment) Overlaps(from, to time.Time) bool {
	return s.End.After(from) && !s.Start.After(to)
}

// Contains reports whether t falls in [Start, End).
func (s Segment) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Option configures an Engine.
type Option func(*Engine)

// WithYearDays overrides the year length used to project offsets onto the
// calendar.
func WithYearDays(days float64) Option {
	return func(e *Engine) {
		e.yearDays = days
	}
}

// Engine projects period offsets for one birth instant. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	birth    time.Time
	yearDays float64
}

// New returns an engine anchored at birth.
func New(birth time.Time, opts ...Option) (*Engine, error) {
	e := &Engine{birth: birth, yearDays: DefaultYearDays}
	for _, opt := range opts {
		opt(e)
	}
	if math.IsNaN(e.yearDays) || math.IsInf(e.yearDays, 0) || e.yearDays <= 0 {
		return nil, fmt.Errorf("%w: %v days", ErrInvalidYearLength, e.yearDays)
	}
	return e, nil
}

// Birth returns the anchor instant.
func (e *Engine) Birth() time.Time { return e.birth }

// YearDays returns the year length in days.
func (e *Engine) YearDays() float64 { return e.yearDays }

// At converts an offset in years since birth to an instant.
func (e *Engine) At(years float64) time.Time {
	return e.birth.Add(time.Duration(years * e.yearDays * float64(24*time.Hour)))
}

// YearsSince converts an instant to years since birth.
func (e *Engine) YearsSince(t time.Time) float64 {
	return float64(t.Sub(e.birth)) / (e.yearDays * float64(24*time.Hour))
}

// segment builds a segment whose calendar bounds derive from its offsets.
func (e *Engine) segment(level Level, lord vedic.Planet, offset, years float64) Segment {
	return Segment{
		Level:  level,
		Lord:   lord,
		Start:  e.At(offset),
		End:    e.At(offset + years),
		Offset: offset,
		Years:  years,
	}
}
