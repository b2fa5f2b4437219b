package ephemeris

import (
	"context"
	"errors"
	"testing"
	"time"
)

const gazetteerTOML = `
[[place]]
name = "Jabalpur, Madhya Pradesh, India"
aliases = ["Jabalpur"]
latitude = 23.18
longitude = 79.95
utc_offset = 5.5

[[place]]
name = "New York, NY, USA"
aliases = ["NYC"]
latitude = 40.7128
longitude = -74.006
timezone = "America/New_York"
`

func loadGazetteer(t *testing.T) *Gazetteer {
	t.Helper()
	path := writeFile(t, t.TempDir(), "gazetteer.toml", gazetteerTOML)
	g, err := LoadGazetteer(path)
	if err != nil {
		t.Fatalf("LoadGazetteer: %v", err)
	}
	return g
}

func TestGazetteer_Resolve(t *testing.T) {
	t.Parallel()
	g := loadGazetteer(t)
	ctx := context.Background()

	for _, q := range []string{"Jabalpur, Madhya Pradesh, India", "jabalpur ,  madhya pradesh, INDIA", "JABALPUR"} {
		loc, err := g.Resolve(ctx, q)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", q, err)
		}
		if loc.Name != "Jabalpur, Madhya Pradesh, India" || loc.Latitude != 23.18 {
			t.Errorf("Resolve(%q) = %+v", q, loc)
		}
	}

	if _, err := g.Resolve(ctx, "Atlantis"); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("Resolve(Atlantis) error = %v, want ErrPlaceNotFound", err)
	}
}

func TestGazetteer_UTCOffset(t *testing.T) {
	t.Parallel()
	g := loadGazetteer(t)
	ctx := context.Background()

	jbp, _ := g.Resolve(ctx, "Jabalpur")
	off, err := g.UTCOffset(ctx, jbp, time.Date(1990, 1, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("UTCOffset: %v", err)
	}
	if off != 5*time.Hour+30*time.Minute {
		t.Errorf("Jabalpur offset = %v, want 5h30m", off)
	}

	nyc, _ := g.Resolve(ctx, "NYC")
	winter, err := g.UTCOffset(ctx, nyc, time.Date(1990, 1, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("UTCOffset(winter): %v", err)
	}
	summer, err := g.UTCOffset(ctx, nyc, time.Date(1990, 7, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("UTCOffset(summer): %v", err)
	}
	if winter != -5*time.Hour || summer != -4*time.Hour {
		t.Errorf("New York offsets = %v / %v, want -5h / -4h", winter, summer)
	}

	if _, err := OffsetAt(Location{Name: "nowhere"}, time.Now()); !errors.Is(err, ErrNoOffset) {
		t.Errorf("OffsetAt without zone error = %v, want ErrNoOffset", err)
	}
}

func TestNewGazetteer_Rejects(t *testing.T) {
	t.Parallel()
	five := 5.0

	tests := []struct {
		name   string
		places []Place
	}{
		{"empty name", []Place{{Latitude: 1, UTCOffset: &five}}},
		{"bad latitude", []Place{{Name: "x", Latitude: 91, UTCOffset: &five}}},
		{"bad zone", []Place{{Name: "x", TimeZone: "Mars/Olympus"}}},
		{"no offset", []Place{{Name: "x"}}},
		{"duplicate alias", []Place{
			{Name: "a", Aliases: []string{"same"}, UTCOffset: &five},
			{Name: "b", Aliases: []string{"Same"}, UTCOffset: &five},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewGazetteer(tt.places); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestHoursToOffset(t *testing.T) {
	t.Parallel()
	if got := HoursToOffset(5.5); got != 5*time.Hour+30*time.Minute {
		t.Errorf("HoursToOffset(5.5) = %v", got)
	}
	if got := HoursToOffset(-3.75); got != -(3*time.Hour + 45*time.Minute) {
		t.Errorf("HoursToOffset(-3.75) = %v", got)
	}
}
