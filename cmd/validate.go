package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/kundali/internal/birth"
	"github.com/papapumpkin/kundali/internal/config"
	"github.com/papapumpkin/kundali/internal/ephemeris"
	"github.com/papapumpkin/kundali/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [birth.toml ...]",
	Short: "Check configuration, data files and birth records",
	Long: `Checks that the configuration is valid, the ephemeris table and gazetteer
load, and every given birth file passes the entry form's validation.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	p := ui.New()
	ok := true

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ config: %v\n", err)
		return err
	}
	p.SetVerbose(cfg.Verbose)
	fmt.Fprintf(os.Stderr, "✓ config valid (mode %s, depth %s)\n", cfg.SiderealMode, cfg.Depth())

	if table, err := ephemeris.LoadTable(cfg.EphemerisPath); err != nil {
		fmt.Fprintf(os.Stderr, "✗ ephemeris: %v\n", err)
		ok = false
	} else {
		fmt.Fprintf(os.Stderr, "✓ ephemeris: %d reading(s) in %s\n", table.Len(), cfg.EphemerisPath)
	}

	switch _, err := ephemeris.LoadGazetteer(cfg.GazetteerPath); {
	case err == nil:
		fmt.Fprintf(os.Stderr, "✓ gazetteer %s loaded\n", cfg.GazetteerPath)
	case errors.Is(err, os.ErrNotExist):
		p.Warn(fmt.Sprintf("gazetteer %s not found; records need coordinates and utc_offset", cfg.GazetteerPath))
	default:
		fmt.Fprintf(os.Stderr, "✗ gazetteer: %v\n", err)
		ok = false
	}

	for _, file := range args {
		_, err := birth.Load(file)
		p.ValidationResult(file, err)
		if err != nil {
			ok = false
		}
	}

	if !ok {
		return errors.New("validation failed")
	}
	return nil
}
