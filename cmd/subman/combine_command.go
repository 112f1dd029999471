package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subman/internal/catalog"
	"subman/internal/combiner"
	"subman/internal/logging"
)

func newCombineCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var selectionFlag string

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine downloaded transcripts into a manuscript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			logger := logging.NewComponentLogger(ctx.loggerFor(cmd), "combine")

			entries, err := combiner.Discover(cfg.Paths.SubtitlesDir)
			switch {
			case errors.Is(err, combiner.ErrNoDirectory):
				fmt.Fprintln(out, "No subtitles directory found. Please run the downloader first.")
				fmt.Fprintln(out, "No subtitle files found.")
				return nil
			case errors.Is(err, combiner.ErrNoFiles):
				fmt.Fprintln(out, "No subtitle files found.")
				return nil
			case err != nil:
				return err
			}
			combiner.RenderListing(out, entries)

			p := newPrompter(cmd)
			var indices []int
			if selectionFlag != "" {
				indices, err = combiner.ParseSelection(selectionFlag, len(entries))
				if err != nil {
					return fmt.Errorf("--select: %w", err)
				}
			} else {
				indices, err = promptSelection(p, len(entries))
				if err != nil {
					return err
				}
			}
			selected := make([]combiner.Entry, 0, len(indices))
			for _, idx := range indices {
				selected = append(selected, entries[idx])
			}

			name := outputFlag
			if !cmd.Flags().Changed("output") {
				name, err = p.line(fmt.Sprintf("\nEnter the output filename (default: %s): ", combiner.DefaultOutputName))
				if err != nil {
					return err
				}
			}

			path, size, err := combiner.Write(cfg.Paths.ManuscriptsDir, name, selected, cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintf(out, "Error combining subtitles: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "\nCombined subtitles saved to: %s\n", path)
			logger.Info("manuscript written",
				logging.String("path", path),
				logging.Int("parts", len(selected)),
			)

			if history := ctx.openCatalog(cmd); history != nil {
				err := history.RecordArtifact(commandCtx(cmd), catalog.Artifact{
					RunID:  catalog.NewRunID(),
					Kind:   catalog.ArtifactManuscript,
					Path:   path,
					Detail: fmt.Sprintf("%d transcripts", len(selected)),
					Bytes:  size,
				})
				if err != nil {
					logging.WarnWithContext(logger, "catalog write failed", "catalog_write_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "manuscript missing from history"),
					)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&selectionFlag, "select", "s", "", "Comma-separated list numbers to combine (skips the prompt)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Manuscript file name (skips the prompt)")
	return cmd
}

func promptSelection(p *prompter, count int) ([]int, error) {
	for {
		reply, err := p.line("\nEnter the numbers of the subtitles to combine (comma-separated, e.g., '1,3,5'): ")
		if err != nil {
			return nil, err
		}
		indices, err := combiner.ParseSelection(reply, count)
		switch {
		case errors.Is(err, combiner.ErrInvalidSelection):
			fmt.Fprintln(p.out, "Invalid selection. Please enter numbers from the list above.")
		case err != nil:
			fmt.Fprintln(p.out, "Invalid input. Please enter numbers separated by commas.")
		default:
			return indices, nil
		}
	}
}
