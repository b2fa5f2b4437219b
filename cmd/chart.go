package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/kundali/internal/birth"
	"github.com/papapumpkin/kundali/internal/horoscope"
	"github.com/papapumpkin/kundali/internal/telemetry"
	"github.com/papapumpkin/kundali/internal/ui"
)

var chartCmd = &cobra.Command{
	Use:   "chart [birth.toml ...]",
	Short: "Compute natal charts",
	Long: `Computes the natal chart of each birth file, a saved profile (--profile),
or a record given inline (--name, --date, --time, --place).

Prints the position table, the rasi (D1) and navamsa (D9) house tables and
the Mahadasha list. With --json the horoscope is written as JSON instead;
with --export it is also saved as Kundali_<name>.json.`,
	RunE: runChart,
}

func init() {
	addRecordFlags(chartCmd)
	chartCmd.Flags().Bool("json", false, "write the horoscope as JSON to stdout")
	chartCmd.Flags().Bool("export", false, "save each horoscope as Kundali_<name>.json")
	chartCmd.Flags().String("out", ".", "directory for --export files")
	chartCmd.Flags().Int("workers", 0, "charts computed in parallel (default from config)")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	named, err := e.resolveRecords(ctx, cmd, args)
	if err != nil {
		return err
	}
	eng, err := e.engine()
	if err != nil {
		return err
	}

	workers := e.cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	export, _ := cmd.Flags().GetBool("export")
	outDir, _ := cmd.Flags().GetString("out")

	recs := make([]birth.Record, len(named))
	for i, n := range named {
		recs[i] = n.record
	}
	e.printer.Debug("computing %d chart(s) with %d worker(s), mode %s", len(recs), workers, eng.Mode())

	now := time.Now()
	failed := 0
	for i, res := range eng.ComputeAll(ctx, recs, workers) {
		label := named[i].label
		if res.Err != nil {
			failed++
			e.printer.Error(fmt.Sprintf("%s: %v", label, res.Err))
			e.record(telemetry.KindChartFailed, label, map[string]any{"error": res.Err.Error()})
			continue
		}
		h := res.Horoscope
		e.record(telemetry.KindChartComputed, label, chartEventData(h))

		if export {
			path, err := exportHoroscope(h, outDir)
			if err != nil {
				return err
			}
			e.printer.Success("exported " + path)
		}
		if asJSON {
			if err := writeJSON(cmd.OutOrStdout(), h); err != nil {
				return err
			}
			continue
		}
		e.printer.ChartHeader(h, now)
		printChart(cmd, h, now)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d chart(s) failed", failed, len(recs))
	}
	return nil
}

func printChart(cmd *cobra.Command, h *horoscope.Horoscope, now time.Time) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.PositionTable(h.Rows))
	fmt.Fprintln(out, ui.HouseTable(h.Rasi))
	fmt.Fprintln(out, ui.HouseTable(h.Navamsa))
	fmt.Fprintln(out, ui.MahaTable(h.MahaTable(), now))
}

func chartEventData(h *horoscope.Horoscope) map[string]any {
	return map[string]any{
		"name":     h.Birth.Name,
		"utc":      h.UTC.Format(time.RFC3339),
		"mode":     string(h.Mode),
		"lagna":    h.Rasi.Lagna.Name(),
		"navamsa":  h.Navamsa.Lagna.Name(),
		"ayanamsa": h.Ayanamsa,
	}
}

// exportHoroscope writes h as indented JSON under dir and returns the path.
func exportHoroscope(h *horoscope.Horoscope, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, h.Birth.ExportName(".json"))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := writeJSON(f, h); err != nil {
		return "", errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
