package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/audit"
)

func (a *app) auditCommand() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the journal of executed lines",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the journal's hash chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := audit.Verify(a.fs, cfg.Audit.Path); err != nil {
				return fmt.Errorf("audit verification FAILED: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "audit log integrity verified")
			return nil
		},
	}

	var n int
	tailCmd := &cobra.Command{
		Use:     "tail",
		Aliases: []string{"show"},
		Short:   "Print the most recent journal entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			entries, err := audit.Tail(a.fs, cfg.Audit.Path, n)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, "no audit entries")
				return nil
			}
			for _, e := range entries {
				data, _ := json.MarshalIndent(e, "", "  ")
				fmt.Fprintf(w, "%s\n", data)
			}
			return nil
		},
	}
	tailCmd.Flags().IntVarP(&n, "lines", "n", 20, "number of entries to show")

	auditCmd.AddCommand(verifyCmd, tailCmd)
	return auditCmd
}
