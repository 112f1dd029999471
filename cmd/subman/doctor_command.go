package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subman/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external programs, directories, and API access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(commandCtx(cmd), cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, passLabel(r.Passed), r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]column{
				{Title: "Check"},
				{Title: "Status"},
				{Title: "Detail", MaxWidth: 60},
			}, rows))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func passLabel(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}
