package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/internal/outwriter"
	"github.com/sells-group/visibility-cli/internal/store"
)

var resultsFormat string

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the result store",
}

var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the result store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.ModeStore); err != nil {
			return err
		}
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("store migrated", zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

var storePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.ModeStore); err != nil {
			return err
		}
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.DeleteExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired analyses\n", n)
		return nil
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results <token>",
	Short: "Print a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.ModeStore); err != nil {
			return err
		}
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		a, err := st.Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no analysis for token %s (it may have expired)", args[0])
		}
		if err != nil {
			return err
		}
		return outwriter.WriteAnalysis(cmd.OutOrStdout(), a, outwriter.Options{
			Format:    resultsFormat,
			UseColors: !color.NoColor,
		})
	},
}

func init() {
	storeCmd.AddCommand(storeMigrateCmd, storePurgeCmd)
	resultsCmd.Flags().StringVar(&resultsFormat, "format", outwriter.FormatTable, "output format: table, json, yaml or csv")
	rootCmd.AddCommand(storeCmd, resultsCmd)
}
