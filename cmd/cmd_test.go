package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/kundali/internal/birth"
)

const testEphemeris = `
[[reading]]
utc = 1990-01-01T06:30:00Z
mode = "lahiri"
ayanamsa = 23.72
ascendant = 60.0
[reading.longitudes]
sun = 256.5
moon = 120.5
mars = 213.1
mercury = 270.2
jupiter = 72.9
venus = 277.3
saturn = 261.4
rahu = 306.8
`

const testBirth = `name = "Asha Verma"
date = 1990-01-01
time = 12:00:00
latitude = 23.18
longitude = 79.95
utc_offset = "+05:30"
`

func TestCommandsRegistered(t *testing.T) {
	t.Parallel()
	want := []string{"chart", "dasha", "profile", "watch", "validate", "telemetry"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}

	sub := make(map[string]bool)
	for _, c := range profileCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"add", "list", "show", "update", "rm"} {
		if !sub[name] {
			t.Errorf("profile subcommand %q not registered", name)
		}
	}
}

func TestRecordFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, r birth.Record)
	}{
		{
			name: "place",
			args: []string{"--name", "Asha", "--date", "1992-03-14", "--time", "06:45", "--place", "Jabalpur"},
			check: func(t *testing.T, r birth.Record) {
				want := time.Date(1992, 3, 14, 6, 45, 0, 0, time.UTC)
				if !r.Local.Equal(want) || r.Place != "Jabalpur" || r.Latitude != nil {
					t.Errorf("record = %+v", r)
				}
			},
		},
		{
			name: "coordinates and offset",
			args: []string{"--name", "Ravi", "--lat", "18.52", "--lon", "73.86", "--offset", "5.5"},
			check: func(t *testing.T, r birth.Record) {
				if r.Latitude == nil || *r.Latitude != 18.52 || r.Longitude == nil || *r.Longitude != 73.86 {
					t.Errorf("coordinates = %v, %v", r.Latitude, r.Longitude)
				}
				want := time.Date(1990, 1, 1, 12, 0, 0, 0, time.UTC)
				if !r.Local.Equal(want) {
					t.Errorf("default local = %v, want %v", r.Local, want)
				}
			},
		},
		{name: "missing name", args: []string{"--place", "Pune"}, wantErr: true},
		{name: "latitude alone", args: []string{"--name", "X", "--lat", "10", "--offset", "1"}, wantErr: true},
		{name: "bad date", args: []string{"--name", "X", "--place", "Pune", "--date", "14/03/1992"}, wantErr: true},
		{name: "bad time", args: []string{"--name", "X", "--place", "Pune", "--time", "noon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &cobra.Command{Use: "test"}
			addRecordFlags(c)
			if err := c.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags: %v", err)
			}
			r, err := recordFromFlags(c)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", r)
				}
				return
			}
			if err != nil {
				t.Fatalf("recordFromFlags: %v", err)
			}
			tt.check(t, r)
		})
	}
}

func TestParseAt(t *testing.T) {
	t.Parallel()
	got, err := parseAt("2024-05-01")
	if err != nil || !got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parseAt(date) = %v, %v", got, err)
	}
	got, err = parseAt("2024-05-01T10:00:00+05:30")
	if err != nil || !got.Equal(time.Date(2024, 5, 1, 4, 30, 0, 0, time.UTC)) {
		t.Errorf("parseAt(rfc3339) = %v, %v", got, err)
	}
	before := time.Now()
	if got, err = parseAt(""); err != nil || got.Before(before) {
		t.Errorf("parseAt(\"\") = %v, %v", got, err)
	}
	if _, err := parseAt("yesterday"); err == nil {
		t.Error("expected error for unparseable instant")
	}
}

func TestPrintEvent(t *testing.T) {
	t.Parallel()
	line := `{"ts":"2026-03-01T10:15:00Z","kind":"chart_computed","run":"0123456789abcdef","subject":"asha.toml","data":{"mode":"lahiri","lagna":"Taurus"}}`

	var buf bytes.Buffer
	printEvent(&buf, line, "")
	got := buf.String()
	for _, want := range []string{"[10:15:00]", "chart_computed", "run=01234567", "subject=asha.toml", "lagna=Taurus mode=lahiri"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}

	buf.Reset()
	printEvent(&buf, line, "dasha_window")
	if buf.Len() != 0 {
		t.Errorf("filtered event printed: %q", buf.String())
	}

	buf.Reset()
	printEvent(&buf, "not json", "")
	if !strings.HasPrefix(buf.String(), "???") {
		t.Errorf("malformed line = %q", buf.String())
	}
}

// setupWorkspace writes the data files and points configuration at them
// through the environment.
func setupWorkspace(t *testing.T) (dir, birthFile, telemetryFile string) {
	t.Helper()
	dir = t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	eph := write("ephemeris.toml", testEphemeris)
	birthFile = write("asha.toml", testBirth)
	telemetryFile = filepath.Join(dir, "events", "telemetry.jsonl")

	t.Setenv("KUNDALI_EPHEMERIS_PATH", eph)
	t.Setenv("KUNDALI_GAZETTEER_PATH", filepath.Join(dir, "absent.toml"))
	t.Setenv("KUNDALI_DB_PATH", filepath.Join(dir, "db", "profiles.db"))
	t.Setenv("KUNDALI_TELEMETRY_PATH", telemetryFile)
	return dir, birthFile, telemetryFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestChartCommand_JSONAndExport(t *testing.T) {
	dir, birthFile, telemetryFile := setupWorkspace(t)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "chart", birthFile, "--json", "--export", "--out", outDir)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}

	var doc struct {
		Zone   string `json:"utc_offset"`
		Mode   string `json:"sidereal_mode"`
		Dashas []struct {
			Lord string `json:"lord"`
		} `json:"mahadashas"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if doc.Zone != "+05:30" || doc.Mode != "lahiri" {
		t.Errorf("zone/mode = %q/%q", doc.Zone, doc.Mode)
	}
	if len(doc.Dashas) == 0 || doc.Dashas[0].Lord != "Ketu" {
		t.Errorf("first mahadasha = %+v, want Ketu", doc.Dashas)
	}

	if _, err := os.Stat(filepath.Join(outDir, "Kundali_Asha_Verma.json")); err != nil {
		t.Errorf("export missing: %v", err)
	}
	events, err := os.ReadFile(telemetryFile)
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	if !strings.Contains(string(events), `"kind":"chart_computed"`) {
		t.Errorf("telemetry = %s", events)
	}
}

func TestDashaCommand_Window(t *testing.T) {
	_, birthFile, telemetryFile := setupWorkspace(t)

	out, err := execute(t, "dasha", birthFile, "--json", "--at", "1995-06-01", "--window", "30", "--depth", "antar")
	if err != nil {
		t.Fatalf("dasha: %v", err)
	}
	var periods []struct {
		Lords []string  `json:"lords"`
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	if err := json.Unmarshal([]byte(out), &periods); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(periods) == 0 {
		t.Fatal("no periods in window")
	}
	for _, p := range periods {
		if len(p.Lords) != 2 || p.Lords[0] != "Ketu" {
			t.Errorf("period lords = %v, want Ketu antardashas", p.Lords)
		}
	}

	events, err := os.ReadFile(telemetryFile)
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	if !strings.Contains(string(events), `"kind":"dasha_window"`) {
		t.Errorf("telemetry = %s", events)
	}
}

func TestProfileCommands(t *testing.T) {
	_, birthFile, _ := setupWorkspace(t)

	if _, err := execute(t, "profile", "add", birthFile); err != nil {
		t.Fatalf("profile add: %v", err)
	}
	out, err := execute(t, "profile", "show", "asha verma")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	var p struct {
		ID     string `json:"id"`
		Record struct {
			Name string `json:"name"`
		} `json:"record"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if p.Record.Name != "Asha Verma" || p.ID == "" {
		t.Fatalf("profile = %+v", p)
	}

	if out, err = execute(t, "profile", "list"); err != nil || !strings.Contains(out, p.ID[:8]) {
		t.Errorf("profile list = %q, %v", out, err)
	}
	if _, err := execute(t, "profile", "rm", p.ID[:8]); err != nil {
		t.Fatalf("profile rm: %v", err)
	}
	if _, err := execute(t, "profile", "show", p.ID); err == nil {
		t.Error("show after rm succeeded")
	}
}
