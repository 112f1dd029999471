package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subman/internal/logging"
	"subman/internal/quiz"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a multiple-choice test from a manuscript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			logger := ctx.loggerFor(cmd)

			manuscripts, err := quiz.ListManuscripts(cfg.Paths.ManuscriptsDir)
			switch {
			case errors.Is(err, quiz.ErrNoDirectory):
				fmt.Fprintln(out, "No test_manuscripts directory found. Please run the combiner first.")
				return nil
			case errors.Is(err, quiz.ErrNoManuscripts):
				fmt.Fprintln(out, "No manuscript files found.")
				return nil
			case err != nil:
				return err
			}
			quiz.RenderListing(out, manuscripts)

			p := newPrompter(cmd)
			choice, err := p.intInRange(
				fmt.Sprintf("\nEnter the number of the manuscript to use (1-%d): ", len(manuscripts)),
				1, len(manuscripts),
				"Invalid selection. Please enter a number from the list above.",
			)
			if err != nil {
				return err
			}
			maxQuestions := min(cfg.Quiz.MaxQuestions, quiz.MaxQuestions)
			questions, err := p.intInRange(
				fmt.Sprintf("\nEnter the number of questions (1-%d): ", maxQuestions),
				1, maxQuestions,
				fmt.Sprintf("Please enter a number between 1 and %d.", maxQuestions),
			)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nSelect difficulty level:")
			for _, d := range quiz.Difficulties {
				fmt.Fprintf(out, "%d. %s\n", int(d), d)
			}
			level, err := p.intInRange("\nEnter your choice (1-3): ", 1, 3, "Please enter a number between 1 and 3.")
			if err != nil {
				return err
			}

			provider, err := quiz.NewProvider(cfg,
				quiz.WithNotices(out),
				quiz.WithProviderLogger(logger),
			)
			if err != nil {
				return err
			}
			opts := []quiz.GeneratorOption{
				quiz.WithLogger(logger),
				quiz.WithOutput(out),
				quiz.WithMaxContentChars(cfg.Quiz.MaxContentChars),
			}
			if history := ctx.openCatalog(cmd); history != nil {
				opts = append(opts, quiz.WithCatalog(history))
			}
			generator := quiz.NewGenerator(provider, cfg.Paths.QuizzesDir, opts...)

			request := quiz.Request{
				Manuscript: manuscripts[choice-1],
				Questions:  questions,
				Difficulty: quiz.Difficulty(level),
			}
			result, err := generator.Generate(commandCtx(cmd), request)
			if errors.Is(err, quiz.ErrEmptyManuscript) {
				fmt.Fprintln(out, "Failed to read manuscript content.")
				return nil
			}
			if err != nil {
				fmt.Fprintf(out, "Error saving test: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "\nTest saved to: %s\n", result.Path)
			if result.Failed {
				logger.Debug("saved provider failure as test content", logging.String("path", result.Path))
			}
			return nil
		},
	}
}
