package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/kundali/internal/birth"
	"github.com/papapumpkin/kundali/internal/horoscope"
	"github.com/papapumpkin/kundali/internal/telemetry"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Recompute charts as birth files change",
	Long: `Watches a directory of *.toml birth files and recomputes a chart whenever
one is written. Invalid files are reported and skipped. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("full", false, "print the full chart tables on each change")
	watchCmd.Flags().Bool("initial", true, "compute every existing birth file on start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	eng, err := e.engine()
	if err != nil {
		return err
	}
	full, _ := cmd.Flags().GetBool("full")
	initial, _ := cmd.Flags().GetBool("initial")
	dir := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := birth.NewWatcher(dir)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer w.Stop()

	if initial {
		if err := computeExisting(ctx, e, eng, cmd, dir, full); err != nil {
			return err
		}
	}
	e.printer.Info(fmt.Sprintf("watching %s (ctrl-c to stop)", dir))

	for {
		select {
		case <-ctx.Done():
			e.printer.Info("stopped")
			return nil
		case c, ok := <-w.Changes:
			if !ok {
				return nil
			}
			e.printer.WatchChange(c)
			if c.Kind != birth.ChangeModified {
				continue
			}
			recompute(ctx, e, eng, cmd, c.File, c.Record, full)
		}
	}
}

// computeExisting charts every birth file already in dir, in name order.
func computeExisting(ctx context.Context, e *env, eng *horoscope.Engine, cmd *cobra.Command, dir string, full bool) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		if filepath.Base(file)[0] == '.' {
			continue
		}
		rec, err := birth.Load(file)
		if err != nil {
			e.printer.ValidationResult(file, err)
			continue
		}
		recompute(ctx, e, eng, cmd, file, rec, full)
	}
	return nil
}

func recompute(ctx context.Context, e *env, eng *horoscope.Engine, cmd *cobra.Command, file string, rec birth.Record, full bool) {
	h, err := eng.Compute(ctx, rec)
	if err != nil {
		e.printer.Error(fmt.Sprintf("%s: %v", file, err))
		e.record(telemetry.KindChartFailed, file, map[string]any{"error": err.Error()})
		return
	}
	now := time.Now()
	data := chartEventData(h)
	if cur, ok := h.Current(now); ok {
		lords := make([]string, len(cur.Lords))
		for i, l := range cur.Lords {
			lords[i] = l.String()
		}
		data["running"] = lords
	}
	e.record(telemetry.KindWatchRecomputed, file, data)

	e.printer.ChartHeader(h, now)
	if full {
		printChart(cmd, h, now)
	}
}
