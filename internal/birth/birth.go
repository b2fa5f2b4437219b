// Package birth models the inputs of a natal chart: who, when (local wall
// clock), and where. Records are read from TOML files, validated the way the
// entry form validates them, and handed to the horoscope engine.
package birth

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Sentinel errors.
var (
	// ErrInvalidOffset indicates a UTC offset override that cannot be parsed.
	ErrInvalidOffset = errors.New("invalid utc offset")
	// ErrInvalidRecord wraps the validation problems of a record.
	ErrInvalidRecord = errors.New("invalid birth record")
)

// Defaults applied when a file omits the date or time.
var (
	defaultDate = toml.LocalDate{Year: 1990, Month: 1, Day: 1}
	defaultTime = toml.LocalTime{Hour: 12}
)

// Record is one person's birth data. Local is a wall-clock time; its
// location is meaningless until an offset is applied.
type Record struct {
	Name      string    `json:"name"`
	Local     time.Time `json:"local"`
	Place     string    `json:"place"`
	UTCOffset string    `json:"utc_offset,omitempty"` // manual override, empty = automatic
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

// File is the TOML layout of a birth file.
type File struct {
	Name      string          `toml:"name"`
	Date      *toml.LocalDate `toml:"date"`
	Time      *toml.LocalTime `toml:"time"`
	Place     string          `toml:"place"`
	UTCOffset string          `toml:"utc_offset"`
	Latitude  *float64        `toml:"latitude"`
	Longitude *float64        `toml:"longitude"`
}

// Record converts the file layout, filling in the default date and time.
func (f File) Record() Record {
	d, tm := defaultDate, defaultTime
	if f.Date != nil {
		d = *f.Date
	}
	if f.Time != nil {
		tm = *f.Time
	}
	return Record{
		Name:      strings.TrimSpace(f.Name),
		Local:     time.Date(d.Year, time.Month(d.Month), d.Day, tm.Hour, tm.Minute, tm.Second, tm.Nanosecond, time.UTC),
		Place:     strings.TrimSpace(f.Place),
		UTCOffset: strings.TrimSpace(f.UTCOffset),
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
	}
}

// Load reads and validates a birth file.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading birth file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a birth file.
func Parse(data []byte) (Record, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return Record{}, fmt.Errorf("parsing birth file: %w", err)
	}
	r := f.Record()
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// ParseLocal reads a date ("2006-01-02") and a clock ("15:04" or
// "15:04:05") as a wall-clock time. Either may be empty, in which case the
// default date or time applies.
func ParseLocal(date, clock string) (time.Time, error) {
	d := defaultDate
	if date = strings.TrimSpace(date); date != "" {
		var ld toml.LocalDate
		if err := ld.UnmarshalText([]byte(date)); err != nil || ld.AsTime(time.UTC).Day() != ld.Day {
			return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
		}
		d = ld
	}
	tm := defaultTime
	if clock = strings.TrimSpace(clock); clock != "" {
		t, err := time.Parse(time.TimeOnly, clock)
		if err != nil {
			if t, err = time.Parse("15:04", clock); err != nil {
				return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM or HH:MM:SS", clock)
			}
		}
		tm = toml.LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
	}
	return File{Date: &d, Time: &tm}.Record().Local, nil
}

// ValidationErrors collects every problem found in a record.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// Unwrap lets errors.Is match ErrInvalidRecord.
func (v ValidationErrors) Unwrap() error { return ErrInvalidRecord }

// Validate reports missing or malformed fields. A place is not required
// when explicit coordinates and an offset are given.
func (r Record) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "please enter your name")
	}
	hasCoords := r.Latitude != nil && r.Longitude != nil
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, "latitude and longitude must be given together")
	}
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, fmt.Sprintf("latitude %v out of range", *r.Latitude))
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, fmt.Sprintf("longitude %v out of range", *r.Longitude))
	}
	if strings.TrimSpace(r.Place) == "" && !(hasCoords && r.UTCOffset != "") {
		errs = append(errs, "please enter City, State, Country (e.g. 'Jabalpur, Madhya Pradesh, India')")
	}
	if _, _, err := ParseOffset(r.UTCOffset); err != nil {
		errs = append(errs, err.Error())
	}
	if r.Local.IsZero() {
		errs = append(errs, "birth date and time are required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Offset returns the manual UTC offset override, if any.
func (r Record) Offset() (time.Duration, bool, error) {
	return ParseOffset(r.UTCOffset)
}

// ParseOffset accepts fractional hours ("5.5", "-4") or clock form
// ("+05:30", "UTC-3:45"). The empty string means no override.
func ParseOffset(s string) (time.Duration, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	raw := s
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "UTC") || strings.HasPrefix(upper, "GMT") {
		s = strings.TrimSpace(s[3:])
	}
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	var d time.Duration
	if h, m, ok := strings.Cut(s, ":"); ok {
		hours, err1 := strconv.Atoi(h)
		mins, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || mins < 0 || mins >= 60 || hours < 0 {
			return 0, false, fmt.Errorf("%w: %q", ErrInvalidOffset, raw)
		}
		d = time.Duration(hours)*time.Hour + time.Duration(mins)*time.Minute
	} else {
		hours, err := strconv.ParseFloat(s, 64)
		if err != nil || hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
			return 0, false, fmt.Errorf("%w: %q", ErrInvalidOffset, raw)
		}
		d = time.Duration(hours * float64(time.Hour)).Round(time.Minute)
	}
	if d > 14*time.Hour {
		return 0, false, fmt.Errorf("%w: %q beyond ±14h", ErrInvalidOffset, raw)
	}
	if neg {
		d = -d
	}
	return d, true, nil
}

// ExportName is the file name used when exporting the chart.
func (r Record) ExportName(ext string) string {
	name := strings.Join(strings.Fields(r.Name), "_")
	if name == "" {
		name = "unnamed"
	}
	return "Kundali_" + name + ext
}
