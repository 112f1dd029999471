package quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"subman/internal/catalog"
	"subman/internal/fileutil"
	"subman/internal/logging"
)

var (
	// ErrNoDirectory reports a manuscripts directory that does not exist yet.
	ErrNoDirectory = errors.New("no test_manuscripts directory found")
	// ErrNoManuscripts reports an empty manuscripts directory.
	ErrNoManuscripts = errors.New("no manuscript files found")
	// ErrEmptyManuscript reports a manuscript with no readable content.
	ErrEmptyManuscript = errors.New("failed to read manuscript content")
)

// Manuscript is one combined transcript available for generation.
type Manuscript struct {
	Path string
	// Name is the file name without the .txt extension.
	Name string
}

// ListManuscripts returns the .txt files directly under dir sorted by name.
func ListManuscripts(dir string) ([]Manuscript, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDirectory
		}
		return nil, fmt.Errorf("read manuscripts directory: %w", err)
	}
	var manuscripts []Manuscript
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		manuscripts = append(manuscripts, Manuscript{
			Path: filepath.Join(dir, entry.Name()),
			Name: strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
		})
	}
	if len(manuscripts) == 0 {
		return nil, ErrNoManuscripts
	}
	sort.Slice(manuscripts, func(i, j int) bool { return manuscripts[i].Name < manuscripts[j].Name })
	return manuscripts, nil
}

// RenderListing prints the numbered manuscript list.
func RenderListing(w io.Writer, manuscripts []Manuscript) {
	if len(manuscripts) == 0 {
		fmt.Fprintln(w, "No manuscript files found.")
		return
	}
	dashes := strings.Repeat("-", 80)
	fmt.Fprintln(w, "\nAvailable manuscript files:")
	fmt.Fprintln(w, dashes)
	for i, m := range manuscripts {
		fmt.Fprintf(w, "%d. %s\n", i+1, m.Name)
	}
	fmt.Fprintln(w, dashes)
}

// OutputName returns the file name a generated test is saved under.
func OutputName(manuscript string, questions int, difficulty Difficulty) string {
	return fmt.Sprintf("%s_%dq_%s.txt", manuscript, questions, difficulty)
}

// Request describes one generation.
type Request struct {
	Manuscript Manuscript
	Questions  int
	Difficulty Difficulty
}

// Result describes a saved test.
type Result struct {
	Path     string
	Bytes    int64
	Provider string
	// Failed is set when the saved content is a provider error message.
	Failed bool
}

// ArtifactRecorder records generated files. A nil recorder disables history.
type ArtifactRecorder interface {
	RecordArtifact(ctx context.Context, art catalog.Artifact) error
}

// Generator produces and saves tests.
type Generator struct {
	provider  Provider
	outputDir string
	maxChars  int
	catalog   ArtifactRecorder
	out       io.Writer
	logger    *slog.Logger
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithCatalog enables history recording.
func WithCatalog(c ArtifactRecorder) GeneratorOption {
	return func(g *Generator) { g.catalog = c }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logging.NewComponentLogger(logger, "quiz") }
}

// WithOutput sets where progress lines for the user are printed.
func WithOutput(w io.Writer) GeneratorOption {
	return func(g *Generator) {
		if w != nil {
			g.out = w
		}
	}
}

// WithMaxContentChars overrides how many manuscript runes reach the prompt.
func WithMaxContentChars(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxChars = n
		}
	}
}

// NewGenerator constructs a Generator writing into outputDir.
func NewGenerator(provider Provider, outputDir string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		provider:  provider,
		outputDir: outputDir,
		maxChars:  DefaultMaxContentChars,
		out:       io.Discard,
		logger:    logging.NewComponentLogger(nil, "quiz"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate reads the manuscript, asks the provider for a test, and saves the
// outcome. Provider failures are saved as their message and reported through
// Result.Failed; only empty manuscripts and write failures return an error.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	if req.Questions < 1 || req.Questions > MaxQuestions {
		return Result{}, fmt.Errorf("question count %d out of range 1-%d", req.Questions, MaxQuestions)
	}
	if !req.Difficulty.Valid() {
		return Result{}, fmt.Errorf("invalid difficulty %d", int(req.Difficulty))
	}

	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = catalog.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, g.logger).With(
		logging.String("manuscript", req.Manuscript.Name),
		logging.String("provider", g.provider.Name()),
	)

	content, err := os.ReadFile(req.Manuscript.Path)
	if err != nil {
		logger.Warn("manuscript unreadable", logging.Error(err))
		return Result{}, ErrEmptyManuscript
	}
	if len(content) == 0 {
		return Result{}, ErrEmptyManuscript
	}

	fmt.Fprintln(g.out, "\nGenerating test... This may take a minute.")
	prompt := BuildPrompt(string(content), req.Questions, req.Difficulty, g.maxChars)
	logger.Info("generating test",
		logging.Int("questions", req.Questions),
		logging.String("difficulty", req.Difficulty.String()),
	)
	generated, genErr := g.provider.Generate(ctx, prompt)
	if genErr != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		logging.WarnWithContext(logger, "test generation failed", "quiz_generation_failed",
			logging.Error(genErr),
			logging.String(logging.FieldImpact, "error message saved as test content"),
		)
	}
	text := Text(generated, genErr)

	path := filepath.Join(g.outputDir, OutputName(req.Manuscript.Name, req.Questions, req.Difficulty))
	if err := fileutil.WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return Result{}, fmt.Errorf("save test: %w", err)
	}
	result := Result{
		Path:     path,
		Bytes:    int64(len(text)),
		Provider: g.provider.Name(),
		Failed:   genErr != nil,
	}
	logger.Info("test saved", logging.String("path", path), logging.Bool("failed", result.Failed))

	if g.catalog != nil {
		detail := fmt.Sprintf("%d questions, %s, %s", req.Questions, req.Difficulty, result.Provider)
		if result.Failed {
			detail += ", failed"
		}
		err := g.catalog.RecordArtifact(context.WithoutCancel(ctx), catalog.Artifact{
			RunID:  runID,
			Kind:   catalog.ArtifactQuiz,
			Path:   path,
			Detail: detail,
			Bytes:  result.Bytes,
		})
		if err != nil {
			logging.WarnWithContext(logger, "catalog write failed", "catalog_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "test missing from history"),
			)
		}
	}
	return result, nil
}
