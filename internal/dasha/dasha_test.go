package dasha

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/papapumpkin/kundali/internal/vedic"
)

var birth = time.Date(1990, 1, 1, 6, 30, 0, 0, time.UTC)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(birth, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mahadashas(t *testing.T, e *Engine, moon, horizon float64) []Segment {
	t.Helper()
	segs, err := e.Mahadashas(moon, horizon)
	if err != nil {
		t.Fatalf("Mahadashas(%v, %v): %v", moon, horizon, err)
	}
	return segs
}

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// checkContiguous fails unless segs tile their span with no gap or overlap.
func checkContiguous(t *testing.T, segs []Segment) {
	t.Helper()
	for i := 1; i < len(segs); i++ {
		if !segs[i-1].End.Equal(segs[i].Start) {
			t.Fatalf("segment %d ends %v, segment %d starts %v", i-1, segs[i-1].End, i, segs[i].Start)
		}
	}
}

func TestStartingLord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		moon    float64
		lord    vedic.Planet
		elapsed float64
	}{
		{45, vedic.Moon, 0.375},
		{0, vedic.Ketu, 0},
		{vedic.NakshatraSpan * 1.5, vedic.Venus, 0.5},
		{359.9, vedic.Mercury, 1 - 0.1/vedic.NakshatraSpan},
	}
	for _, tt := range tests {
		lord, elapsed, err := StartingLord(tt.moon)
		if err != nil {
			t.Fatalf("StartingLord(%v): %v", tt.moon, err)
		}
		if lord != tt.lord {
			t.Errorf("StartingLord(%v) lord = %v, want %v", tt.moon, lord, tt.lord)
		}
		if !approx(elapsed, tt.elapsed, 1e-9) {
			t.Errorf("StartingLord(%v) elapsed = %v, want %v", tt.moon, elapsed, tt.elapsed)
		}
	}

	if _, _, err := StartingLord(math.NaN()); !errors.Is(err, vedic.ErrInvalidLongitude) {
		t.Errorf("StartingLord(NaN) error = %v, want ErrInvalidLongitude", err)
	}
}

func TestMahadashas_FullHorizon(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	segs := mahadashas(t, e, 45, 120)

	want := []struct {
		lord  vedic.Planet
		years float64
	}{
		{vedic.Moon, 6.25},
		{vedic.Mars, 7},
		{vedic.Rahu, 18},
		{vedic.Jupiter, 16},
		{vedic.Saturn, 19},
		{vedic.Mercury, 17},
		{vedic.Ketu, 7},
		{vedic.Venus, 20},
		{vedic.Sun, 6},
		{vedic.Moon, 3.75}, // truncated at the horizon
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d", len(segs), len(want))
	}
	total := 0.0
	for i, w := range want {
		if segs[i].Lord != w.lord || !approx(segs[i].Years, w.years, 1e-9) {
			t.Errorf("segment %d = %v %.6f years, want %v %.6f", i, segs[i].Lord, segs[i].Years, w.lord, w.years)
		}
		if segs[i].Level != Maha {
			t.Errorf("segment %d level = %v, want maha", i, segs[i].Level)
		}
		total += segs[i].Years
	}
	if !approx(total, 120, 1e-9) {
		t.Errorf("years sum to %v, want 120", total)
	}
	checkContiguous(t, segs)

	if !segs[0].Start.Equal(birth) {
		t.Errorf("first segment starts %v, want birth %v", segs[0].Start, birth)
	}
	wantFirstEnd := birth.Add(time.Duration(6.25 * DefaultYearDays * float64(24*time.Hour)))
	if d := segs[0].End.Sub(wantFirstEnd); d < -time.Second || d > time.Second {
		t.Errorf("first segment ends %v, want %v", segs[0].End, wantFirstEnd)
	}
}

func TestMahadashas_ShortAndEmptyHorizons(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	for _, h := range []float64{0, -5} {
		segs := mahadashas(t, e, 45, h)
		if segs == nil || len(segs) != 0 {
			t.Errorf("horizon %v: got %v, want empty non-nil slice", h, segs)
		}
	}

	segs := mahadashas(t, e, 45, 3)
	if len(segs) != 1 || segs[0].Lord != vedic.Moon || !approx(segs[0].Years, 3, 1e-12) {
		t.Errorf("horizon 3: got %+v, want one 3-year Moon segment", segs)
	}

	if _, err := e.Mahadashas(45, MaxHorizonYears+1); !errors.Is(err, ErrHorizonTooLarge) {
		t.Errorf("oversized horizon error = %v, want ErrHorizonTooLarge", err)
	}
	if _, err := e.Mahadashas(math.Inf(1), 120); !errors.Is(err, vedic.ErrInvalidLongitude) {
		t.Errorf("infinite moon error = %v, want ErrInvalidLongitude", err)
	}
}

func TestMahadashas_PartitionForManyMoons(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	for moon := 0.0; moon < 360; moon += 1.7 {
		for _, horizon := range []float64{1, 37.5, 100, 120, 240} {
			segs := mahadashas(t, e, moon, horizon)
			checkContiguous(t, segs)
			total := 0.0
			for _, s := range segs {
				if s.Years < 1e-6 || !s.End.After(s.Start) {
					t.Fatalf("moon %v horizon %v: degenerate segment %+v", moon, horizon, s)
				}
				total += s.Years
			}
			if !approx(total, horizon, 1e-9) {
				t.Fatalf("moon %v horizon %v: years sum to %v", moon, horizon, total)
			}
		}
	}
}

func TestMahadashas_NoTrailingSliver(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	tests := []struct {
		moon, horizon float64
	}{
		{172.4, 77.7},
		{146.2, 0.7},
	}
	for _, tt := range tests {
		segs := mahadashas(t, e, tt.moon, tt.horizon)
		last := segs[len(segs)-1]
		if last.Years < 1e-6 {
			t.Errorf("moon %v horizon %v: trailing %v-year %v segment", tt.moon, tt.horizon, last.Years, last.Lord)
		}
		if !approx(last.EndOffset(), tt.horizon, 1e-12) {
			t.Errorf("moon %v horizon %v: sequence ends at %v", tt.moon, tt.horizon, last.EndOffset())
		}
	}

	// Sweep the Moon in small steps across several horizons.
	for step := 0; step < 36000; step += 7 {
		moon := float64(step) / 100
		for _, horizon := range []float64{0.7, 5.3, 33.3, 77.7, 99.9, 120, 200.1} {
			segs := mahadashas(t, e, moon, horizon)
			for i, s := range segs {
				if s.Years < 1e-6 {
					t.Fatalf("moon %v horizon %v: segment %d lasts %v years", moon, horizon, i, s.Years)
				}
			}
		}
	}
}

func TestSubdivide(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	mahas := mahadashas(t, e, 45, 120)

	for _, m := range mahas {
		antars := e.Subdivide(m)
		checkChildren(t, m, antars)
		for _, a := range antars {
			checkChildren(t, a, e.Subdivide(a))
		}
	}
}

func checkChildren(t *testing.T, parent Segment, kids []Segment) {
	t.Helper()
	if len(kids) != 9 {
		t.Fatalf("%v %v: %d children, want 9", parent.Level, parent.Lord, len(kids))
	}
	want := vedic.VimshottariFrom(parent.Lord)
	sum := 0.0
	for i, k := range kids {
		if k.Lord != want[i] {
			t.Errorf("%v %v child %d = %v, want %v", parent.Level, parent.Lord, i, k.Lord, want[i])
		}
		if k.Level != parent.Level+1 {
			t.Errorf("child level = %v, want %v", k.Level, parent.Level+1)
		}
		sum += k.Years
	}
	if !approx(sum, parent.Years, 1e-9) {
		t.Errorf("%v %v: children sum %v, want %v", parent.Level, parent.Lord, sum, parent.Years)
	}
	if !kids[0].Start.Equal(parent.Start) || !kids[8].End.Equal(parent.End) {
		t.Errorf("%v %v: children span %v..%v, parent %v..%v",
			parent.Level, parent.Lord, kids[0].Start, kids[8].End, parent.Start, parent.End)
	}
	checkContiguous(t, kids)
}

func TestSubdivide_Proportions(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	// A full Venus Mahadasha: Venus-Venus lasts 20×20/120 years.
	venus := e.segment(Maha, vedic.Venus, 0, 20)
	antars := e.Subdivide(venus)
	if !approx(antars[0].Years, 20.0*20/120, 1e-12) {
		t.Errorf("Ve-Ve = %v years, want %v", antars[0].Years, 20.0*20/120)
	}
	if antars[1].Lord != vedic.Sun || !approx(antars[1].Years, 1, 1e-12) {
		t.Errorf("Ve-Su = %v %v years, want Sun 1 year", antars[1].Lord, antars[1].Years)
	}

	// A truncated parent subdivides its effective length, not its nominal one.
	partial := e.segment(Maha, vedic.Moon, 0, 6.25)
	kids := e.Subdivide(partial)
	if !approx(kids[0].Years, 6.25*10/120, 1e-12) {
		t.Errorf("truncated Mo-Mo = %v, want %v", kids[0].Years, 6.25*10/120)
	}

	praty := e.Subdivide(kids[0])
	if got := e.Subdivide(praty[0]); got != nil {
		t.Errorf("pratyantardasha subdivided into %d segments, want none", len(got))
	}
}

func TestNew_YearLength(t *testing.T) {
	t.Parallel()

	if _, err := New(birth, WithYearDays(0)); !errors.Is(err, ErrInvalidYearLength) {
		t.Errorf("zero year error = %v, want ErrInvalidYearLength", err)
	}

	short := newEngine(t, WithYearDays(365.2422))
	long := newEngine(t)
	if short.YearDays() != 365.2422 || long.YearDays() != DefaultYearDays {
		t.Fatalf("YearDays = %v / %v", short.YearDays(), long.YearDays())
	}
	if !short.At(100).Before(long.At(100)) {
		t.Error("a shorter year should place year 100 earlier")
	}
	if got := long.YearsSince(long.At(42.5)); !approx(got, 42.5, 1e-9) {
		t.Errorf("YearsSince(At(42.5)) = %v", got)
	}
}

func TestMahaTable(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	rows := MahaTable(mahadashas(t, e, 45, 120))

	if len(rows) != 10 {
		t.Fatalf("rows = %d, want 10", len(rows))
	}
	if !approx(rows[0].AgeAtEnd, 6.25, 1e-9) || !approx(rows[1].AgeAtEnd, 13.25, 1e-9) {
		t.Errorf("ages at end = %v, %v; want 6.25, 13.25", rows[0].AgeAtEnd, rows[1].AgeAtEnd)
	}
	if !approx(rows[len(rows)-1].AgeAtEnd, 120, 1e-9) {
		t.Errorf("last age = %v, want 120", rows[len(rows)-1].AgeAtEnd)
	}
}

func TestAssertPartition_Panics(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	defer func() {
		if recover() == nil {
			t.Error("assertPartition did not panic on a gap")
		}
	}()
	assertPartition([]Segment{
		e.segment(Maha, vedic.Sun, 0, 6),
		e.segment(Maha, vedic.Moon, 7, 10),
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"1", Maha},
		{"Maha", Maha},
		{"antar", Antar},
		{" antardasha ", Antar},
		{"bhukti", Antar},
		{"3", Pratyantar},
		{"PRATYANTARDASHA", Pratyantar},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "0", "4", "sookshma"} {
		if _, err := ParseLevel(bad); !errors.Is(err, ErrInvalidDepth) {
			t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidDepth", bad, err)
		}
	}
}
