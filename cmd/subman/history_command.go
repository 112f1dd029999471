package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subman/internal/catalog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var sourcesOnly bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent downloads, manuscripts, and tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.Catalog.Enabled {
				fmt.Fprintln(out, "History is disabled (catalog.enabled = false)")
				return nil
			}
			store := ctx.openCatalog(cmd)
			if store == nil {
				return fmt.Errorf("history unavailable: could not open %s", cfg.CatalogPath())
			}

			if sourcesOnly {
				sources, err := store.Sources(commandCtx(cmd))
				if err != nil {
					return err
				}
				if len(sources) == 0 {
					fmt.Fprintln(out, "No downloads recorded")
					return nil
				}
				fmt.Fprintln(out, renderSources(sources, time.Now()))
				return nil
			}

			events, err := store.Recent(commandCtx(cmd), limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No history recorded")
				return nil
			}
			fmt.Fprintln(out, renderEvents(events, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&sourcesOnly, "sources", false, "List downloaded videos and playlists instead")
	return cmd
}

func renderEvents(events []catalog.Event, now time.Time) string {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			humanize.RelTime(ev.CreatedAt, now, "ago", "from now"),
			ev.Kind,
			ev.Title,
			ev.Detail,
			eventSize(ev),
			ev.Path,
		})
	}
	return renderTable([]column{
		{Title: "When"},
		{Title: "Kind"},
		{Title: "Title", MaxWidth: 40},
		{Title: "Detail", MaxWidth: 32},
		{Title: "Size", Right: true},
		{Title: "Path", MaxWidth: 48},
	}, rows)
}

// eventSize reports artifacts in bytes and downloads in transcript characters.
func eventSize(ev catalog.Event) string {
	if ev.Kind == "download" {
		return humanize.Comma(ev.Bytes) + " chars"
	}
	return humanize.Bytes(uint64(max(ev.Bytes, 0)))
}

func renderSources(sources []catalog.Source, now time.Time) string {
	rows := make([][]string, 0, len(sources))
	for _, src := range sources {
		rows = append(rows, []string{
			src.Hash,
			src.Type,
			src.Title,
			humanize.RelTime(src.UpdatedAt, now, "ago", "from now"),
		})
	}
	return renderTable([]column{
		{Title: "Folder"},
		{Title: "Type"},
		{Title: "Title", MaxWidth: 60},
		{Title: "Updated", Right: true},
	}, rows)
}
