package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/kundali/internal/dasha"
	"github.com/papapumpkin/kundali/internal/telemetry"
	"github.com/papapumpkin/kundali/internal/ui"
)

var dashaCmd = &cobra.Command{
	Use:   "dasha [birth.toml]",
	Short: "List Vimshottari dasha periods",
	Long: `Prints the Mahadasha sequence of one birth record and the periods running
within a window starting at --at (default now).

--depth selects maha, antar or pratyantar rows; --window is the window
length in days. Only the periods the window touches are expanded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDasha,
}

func init() {
	addRecordFlags(dashaCmd)
	dashaCmd.Flags().Float64("window", 0, "window length in days (default from config)")
	dashaCmd.Flags().String("depth", "", "maha, antar or pratyantar (default from config)")
	dashaCmd.Flags().String("at", "", "window start, YYYY-MM-DD or RFC 3339 (default now)")
	dashaCmd.Flags().Bool("json", false, "write the window rows as JSON to stdout")
	rootCmd.AddCommand(dashaCmd)
}

func runDasha(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	days := e.cfg.WindowDays
	if cmd.Flags().Changed("window") {
		days, _ = cmd.Flags().GetFloat64("window")
	}
	depth := e.cfg.Depth()
	if s, _ := cmd.Flags().GetString("depth"); s != "" {
		if depth, err = dasha.ParseLevel(s); err != nil {
			return err
		}
	}
	atFlag, _ := cmd.Flags().GetString("at")
	at, err := parseAt(atFlag)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	named, err := e.resolveRecords(ctx, cmd, args)
	if err != nil {
		return err
	}
	eng, err := e.engine()
	if err != nil {
		return err
	}
	n := named[0]
	h, err := eng.Compute(ctx, n.record)
	if err != nil {
		e.record(telemetry.KindChartFailed, n.label, map[string]any{"error": err.Error()})
		return fmt.Errorf("%s: %w", n.label, err)
	}

	periods, err := h.Window(at, days, depth)
	if err != nil {
		return err
	}
	e.record(telemetry.KindDashaWindow, n.label, map[string]any{
		"at":    at.UTC().Format("2006-01-02T15:04:05Z"),
		"days":  days,
		"depth": depth.String(),
		"rows":  len(periods),
	})

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), periods)
	}
	e.printer.ChartHeader(h, at)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.MahaTable(h.MahaTable(), at))
	if len(periods) > 0 {
		fmt.Fprintln(out, ui.PeriodTable(periods, depth, at))
	}
	e.printer.WindowSummary(len(periods), days, depth)
	return nil
}
