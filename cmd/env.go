package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/kundali/internal/birth"
	"github.com/papapumpkin/kundali/internal/config"
	"github.com/papapumpkin/kundali/internal/dasha"
	"github.com/papapumpkin/kundali/internal/ephemeris"
	"github.com/papapumpkin/kundali/internal/horoscope"
	"github.com/papapumpkin/kundali/internal/profile"
	"github.com/papapumpkin/kundali/internal/telemetry"
	"github.com/papapumpkin/kundali/internal/ui"
)

// env bundles what every command needs once config is loaded.
type env struct {
	cfg     config.Config
	printer *ui.Printer
	emitter *telemetry.Emitter
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	printer := ui.New()
	printer.SetVerbose(cfg.Verbose)

	var emitter *telemetry.Emitter
	if cfg.TelemetryPath != "" {
		emitter, err = telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, err
		}
	}
	return &env{cfg: cfg, printer: printer, emitter: emitter}, nil
}

func (e *env) Close() {
	if err := e.emitter.Close(); err != nil {
		e.printer.Warn(err.Error())
	}
}

// record emits a telemetry event; failures are reported but never fatal.
func (e *env) record(kind, subject string, data any) {
	if err := e.emitter.Record(kind, subject, data); err != nil {
		e.printer.Warn(err.Error())
	}
}

// engine builds the horoscope engine from the configured ephemeris table and
// gazetteer. A missing gazetteer is allowed; records then need coordinates
// and an explicit offset.
func (e *env) engine() (*horoscope.Engine, error) {
	table, err := ephemeris.LoadTable(e.cfg.EphemerisPath)
	if err != nil {
		return nil, err
	}
	e.printer.Debug("ephemeris: %d reading(s) from %s", table.Len(), e.cfg.EphemerisPath)

	var geo ephemeris.Geocoder
	gaz, err := ephemeris.LoadGazetteer(e.cfg.GazetteerPath)
	switch {
	case err == nil:
		geo = gaz
	case errors.Is(err, os.ErrNotExist):
		e.printer.Debug("gazetteer: %s not found, places cannot be resolved", e.cfg.GazetteerPath)
	default:
		return nil, err
	}

	mode, _ := e.cfg.Mode() // validated by config.Load
	dignity, _ := e.cfg.DignityOptions()
	return horoscope.New(table, geo,
		horoscope.WithMode(mode),
		horoscope.WithDignity(dignity),
		horoscope.WithHorizon(e.cfg.HorizonYears),
		horoscope.WithDashaOptions(dasha.WithYearDays(e.cfg.YearDays)),
	)
}

func (e *env) openStore(ctx context.Context) (*profile.Store, error) {
	return profile.Open(ctx, e.cfg.DBPath)
}

// addRecordFlags registers the ways a command can name a birth record
// besides positional TOML files.
func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("profile", "p", "", "saved profile id, id prefix, or name")
	addInlineFlags(cmd)
}

// addInlineFlags registers the flags that spell out a record directly.
func addInlineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "name of the native")
	f.String("date", "", "birth date YYYY-MM-DD (default 1990-01-01)")
	f.String("time", "", "birth time HH:MM[:SS] (default 12:00)")
	f.String("place", "", "birth place, e.g. 'Jabalpur, Madhya Pradesh, India'")
	f.String("offset", "", "UTC offset override, e.g. 5.5 or +05:30")
	f.Float64("lat", 0, "latitude in degrees, north positive")
	f.Float64("lon", 0, "longitude in degrees, east positive")
}

// namedRecord is a birth record with the label used in output and telemetry.
type namedRecord struct {
	label  string
	record birth.Record
}

// resolveRecords collects records from positional files, --profile, or the
// inline flags, in that order of preference.
func (e *env) resolveRecords(ctx context.Context, cmd *cobra.Command, args []string) ([]namedRecord, error) {
	if len(args) > 0 {
		out := make([]namedRecord, 0, len(args))
		for _, path := range args {
			rec, err := birth.Load(path)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			out = append(out, namedRecord{label: path, record: rec})
		}
		return out, nil
	}

	if ref, _ := cmd.Flags().GetString("profile"); ref != "" {
		store, err := e.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		p, err := store.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		return []namedRecord{{label: p.ID, record: p.Record}}, nil
	}

	rec, err := recordFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	return []namedRecord{{label: rec.Name, record: rec}}, nil
}

// recordFromFlags builds and validates a record from the inline flags.
func recordFromFlags(cmd *cobra.Command) (birth.Record, error) {
	f := cmd.Flags()
	name, _ := f.GetString("name")
	date, _ := f.GetString("date")
	clock, _ := f.GetString("time")
	place, _ := f.GetString("place")
	offset, _ := f.GetString("offset")

	local, err := birth.ParseLocal(date, clock)
	if err != nil {
		return birth.Record{}, err
	}
	rec := birth.Record{
		Name:      strings.TrimSpace(name),
		Local:     local,
		Place:     strings.TrimSpace(place),
		UTCOffset: strings.TrimSpace(offset),
	}
	if f.Changed("lat") || f.Changed("lon") {
		lat, _ := f.GetFloat64("lat")
		lon, _ := f.GetFloat64("lon")
		if f.Changed("lat") {
			rec.Latitude = &lat
		}
		if f.Changed("lon") {
			rec.Longitude = &lon
		}
	}
	if err := rec.Validate(); err != nil {
		return birth.Record{}, err
	}
	return rec, nil
}

// parseAt reads an instant flag given as RFC 3339 or a bare date (UTC
// midnight). Empty means now.
func parseAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --at %q: want YYYY-MM-DD or RFC 3339", s)
}
