package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "kundali",
	Short: "Vedic natal horoscope calculator",
	Long: `Kundali computes a Vedic natal chart from a birth record: sidereal positions,
rasi and navamsa house placements with dignities, and the Vimshottari dasha periods.

Birth records are TOML files (name, date, time, place, optional utc_offset,
latitude, longitude), saved profiles, or inline flags.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .kundali.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("mode", "", "sidereal mode: lahiri, raman or krishnamurti")
	pf.String("ephemeris", "", "ephemeris table (TOML)")
	pf.String("gazetteer", "", "gazetteer of places (TOML)")
	pf.String("db", "", "profile database path")
	pf.String("telemetry", "", "append JSONL events to this file")

	for key, flag := range map[string]string{
		"verbose":        "verbose",
		"sidereal_mode":  "mode",
		"ephemeris_path": "ephemeris",
		"gazetteer_path": "gazetteer",
		"db_path":        "db",
		"telemetry_path": "telemetry",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".kundali")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("KUNDALI")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
