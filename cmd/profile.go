package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/kundali/internal/birth"
	"github.com/papapumpkin/kundali/internal/telemetry"
	"github.com/papapumpkin/kundali/internal/ui"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved birth profiles",
	Long: `Saved profiles live in a local SQLite database (db_path). A profile is
referred to by its id, a unique id prefix of at least four characters, or its
name when that is unique.`,
}

var profileAddCmd = &cobra.Command{
	Use:   "add [birth.toml]",
	Short: "Save a birth record from a file or inline flags",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileAdd,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved profiles",
	Args:    cobra.NoArgs,
	RunE:    runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update <ref> <birth.toml>",
	Short: "Replace a saved profile with the contents of a birth file",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileUpdate,
}

var profileRmCmd = &cobra.Command{
	Use:     "rm <ref>",
	Aliases: []string{"delete"},
	Short:   "Delete a saved profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileRm,
}

func init() {
	addInlineFlags(profileAddCmd)
	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileShowCmd, profileUpdateCmd, profileRmCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var rec birth.Record
	if len(args) == 1 {
		rec, err = birth.Load(args[0])
	} else {
		rec, err = recordFromFlags(cmd)
	}
	if err != nil {
		e.printer.ValidationResult(sourceLabel(args), err)
		return err
	}

	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.Add(ctx, rec)
	if err != nil {
		return err
	}
	e.printer.ProfileSaved(p)
	e.record(telemetry.KindProfileSaved, p.ID, map[string]any{"name": p.Record.Name})
	return nil
}

func runProfileList(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	ps, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		e.printer.Info("no saved profiles")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.ProfileTable(ps))
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), p)
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := birth.Load(args[1])
	if err != nil {
		e.printer.ValidationResult(args[1], err)
		return err
	}

	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if p, err = store.Update(ctx, p.ID, rec); err != nil {
		return err
	}
	e.printer.ProfileSaved(p)
	e.record(telemetry.KindProfileSaved, p.ID, map[string]any{"name": p.Record.Name, "updated": true})
	return nil
}

func runProfileRm(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, p.ID); err != nil {
		return err
	}
	e.printer.Success(fmt.Sprintf("deleted %s (%s)", p.Record.Name, p.ID))
	e.record(telemetry.KindProfileDeleted, p.ID, map[string]any{"name": p.Record.Name})
	return nil
}

func sourceLabel(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "flags"
}
