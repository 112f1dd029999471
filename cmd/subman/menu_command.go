package main

import (
	"github.com/spf13/cobra"

	"subman/internal/menu"
)

func newMenuCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive main menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, ctx)
		},
	}
}

// runMenu re-executes this binary for each menu entry, forwarding --config so
// children read the same file.
func runMenu(cmd *cobra.Command, ctx *commandContext) error {
	var prefix []string
	if path := ctx.configPath(); path != "" {
		prefix = append(prefix, "--config", path)
	}
	runner, err := menu.NewExecRunner(prefix...)
	if err != nil {
		return err
	}
	runner.Stdin = cmd.InOrStdin()
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()

	shell := menu.New(runner, cmd.InOrStdin(), cmd.OutOrStdout(),
		menu.WithLogger(ctx.loggerFor(cmd)),
	)
	return shell.Run(commandCtx(cmd))
}
