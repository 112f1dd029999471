package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"

	"subman/internal/logging"
)

const (
	width     = 80
	appTitle  = "YouTube Subtitle Manager"
	clearCode = "\033[H\033[2J"
)

// State is a position in the menu loop.
type State int

const (
	StateMain State = iota
	StateDownload
	StateCombine
	StateGenerate
	StateExit
)

func (s State) String() string {
	switch s {
	case StateMain:
		return "main-menu"
	case StateDownload:
		return "running-download"
	case StateCombine:
		return "running-combine"
	case StateGenerate:
		return "running-generate"
	case StateExit:
		return "exit"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tool is a menu entry backed by a subcommand.
type Tool struct {
	State State
	Label string
	// Title is printed under the application header while the tool runs.
	Title string
	// Name is used in the failure message.
	Name string
	Args []string
}

// Tools lists the runnable entries in menu order.
var Tools = []Tool{
	{State: StateDownload, Label: "Download subtitles from YouTube videos/playlists", Title: "YouTube Subtitle Downloader", Name: "subtitle downloader", Args: []string{"download"}},
	{State: StateCombine, Label: "Combine existing subtitle files", Title: "YouTube Subtitle Combiner", Name: "subtitle combiner", Args: []string{"combine"}},
	{State: StateGenerate, Label: "Generate test from manuscript", Title: "Test Generator", Name: "test generator", Args: []string{"generate"}},
}

// Runner executes a tool to completion with the terminal attached.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, args []string) error

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, args []string) error { return f(ctx, args) }

// ExecRunner re-executes a binary with the tool's subcommand.
type ExecRunner struct {
	Path string
	// Prefix is inserted before the subcommand, e.g. a --config flag.
	Prefix []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner for the current executable.
func NewExecRunner(prefix ...string) (*ExecRunner, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return &ExecRunner{Path: path, Prefix: prefix, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}, nil
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, args []string) error {
	full := append(append([]string{}, r.Prefix...), args...)
	cmd := exec.CommandContext(ctx, r.Path, full...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

// Shell drives the menu loop.
type Shell struct {
	runner Runner
	in     io.Reader
	out    io.Writer
	clear  bool
	logger *slog.Logger
}

// Option customizes a Shell.
type Option func(*Shell)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) { s.logger = logging.NewComponentLogger(logger, "menu") }
}

// WithClearScreen forces screen clearing on or off.
func WithClearScreen(enabled bool) Option {
	return func(s *Shell) { s.clear = enabled }
}

// New creates a Shell. Screens are cleared only when out is a terminal.
func New(runner Runner, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		runner: runner,
		in:     in,
		out:    out,
		clear:  isTerminal(out),
		logger: logging.NewComponentLogger(nil, "menu"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Run loops until the user exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	state := StateMain
	for state != StateExit {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := s.step(ctx, state)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("input closed", logging.String("state", state.String()))
				return nil
			}
			return err
		}
		if next != state {
			s.logger.Debug("menu transition",
				logging.String("from", state.String()),
				logging.String("to", next.String()),
			)
		}
		state = next
	}
	return nil
}

func (s *Shell) step(ctx context.Context, state State) (State, error) {
	if state == StateMain {
		return s.mainMenu()
	}
	for _, tool := range Tools {
		if tool.State == state {
			return s.runTool(ctx, tool)
		}
	}
	return StateMain, nil
}

func (s *Shell) mainMenu() (State, error) {
	s.clearScreen()
	s.header()
	fmt.Fprintln(s.out, "What would you like to do?")
	for i, tool := range Tools {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, tool.Label)
	}
	fmt.Fprintf(s.out, "%d. Exit\n\n", len(Tools)+1)

	choice, err := s.prompt(fmt.Sprintf("Enter your choice (1-%d): ", len(Tools)+1))
	if err != nil {
		return StateExit, err
	}
	switch choice {
	case "1":
		return StateDownload, nil
	case "2":
		return StateCombine, nil
	case "3":
		return StateGenerate, nil
	case "4":
		fmt.Fprintln(s.out, "\nThank you for using YouTube Subtitle Manager. Goodbye!")
		return StateExit, nil
	}
	fmt.Fprintln(s.out, "\nInvalid choice. Please enter a number between 1 and 4.")
	if _, err := s.prompt("Press Enter to continue..."); err != nil {
		return StateExit, err
	}
	return StateMain, nil
}

func (s *Shell) runTool(ctx context.Context, tool Tool) (State, error) {
	s.clearScreen()
	s.header()
	fmt.Fprintln(s.out, center(tool.Title, width))
	fmt.Fprintln(s.out, strings.Repeat("=", width))
	fmt.Fprintln(s.out)

	if err := s.runner.Run(ctx, tool.Args); err != nil {
		if ctx.Err() != nil {
			return StateExit, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(s.out, "\nError running the %s.\n", tool.Name)
		} else {
			fmt.Fprintf(s.out, "\nUnexpected error: %v\n", err)
		}
		s.logger.Warn("tool failed",
			logging.String("tool", tool.Name),
			logging.Error(err),
			logging.String(logging.FieldEventType, "menu_tool_failed"),
		)
	}
	if _, err := s.prompt("\nPress Enter to return to the main menu..."); err != nil {
		return StateExit, err
	}
	return StateMain, nil
}

func (s *Shell) header() {
	rule := strings.Repeat("=", width)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, center(appTitle, width))
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out)
}

func (s *Shell) clearScreen() {
	if s.clear {
		fmt.Fprint(s.out, clearCode)
	}
}

// prompt prints label and reads one trimmed line. A final line without a
// newline is still returned; io.EOF is only reported once input is empty.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := readLine(s.in)
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readLine reads up to and including the next newline one byte at a time.
// Children share the same stdin, so nothing past the newline may be consumed.
func readLine(r io.Reader) (string, error) {
	var (
		line []byte
		buf  [1]byte
	)
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			line = append(line, buf[0])
			if buf[0] == '\n' {
				return string(line), nil
			}
		}
		if err != nil {
			return string(line), err
		}
	}
}

// center pads value to width. Odd padding puts the extra space on the left
// only when width is odd.
func center(value string, width int) string {
	n := len([]rune(value))
	if n >= width {
		return value
	}
	pad := width - n
	left := pad / 2
	if pad%2 == 1 && width%2 == 1 {
		left++
	}
	return strings.Repeat(" ", left) + value + strings.Repeat(" ", pad-left)
}
