package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subman/internal/testsupport"
)

const stubYtdlp = `out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  prev="$arg"
done
case "$*" in
  *--version*)
    echo "2025.10.22"
    ;;
  *--flat-playlist*)
    printf '%s' '{"id":"PL1","title":"Stub Course","entries":[{"id":"a1"},{"id":"b2"}]}'
    ;;
  *--write-subs*)
    dir=$(dirname "$out")
    case "$*" in
      *b2*) exit 1 ;;
    esac
    printf '%s' '{"events":[{"segs":[{"utf8":"hello "},{"utf8":"world"}]},{"segs":[{"utf8":"second line"}]}]}' > "$dir/x.en.json3"
    ;;
  *)
    printf '%s' '{"id":"vid","title":"Stub Title"}'
    ;;
esac
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	subsDir    string
	manusDir   string
	testsDir   string
	quizURL    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"YOUTUBE_API_KEY", "HF_TOKEN", "HUGGING_FACE_HUB_TOKEN", "OPENROUTER_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}

	quiz := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(`[{"generated_text":"Q1. What does the speaker greet?\nA) world\nB) moon\nC) sun\nD) sea\n\nAnswer: A"}]`))
	}))
	t.Cleanup(quiz.Close)

	env := &cliTestEnv{
		baseDir:  base,
		subsDir:  filepath.Join(base, "youtube_subtitles"),
		manusDir: filepath.Join(base, "test_manuscripts"),
		testsDir: filepath.Join(base, "generated_tests"),
		quizURL:  quiz.URL,
	}
	ytdlp := testsupport.WriteScript(t, filepath.Join(base, "bin"), "yt-dlp", stubYtdlp)

	env.configPath = filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
subtitles_dir = %q
manuscripts_dir = %q
quizzes_dir = %q
state_dir = %q
log_dir = %q

[youtube]
ytdlp_path = %q
request_delay_ms = 0
title_retry_delay_ms = 0
scrape_titles = false

[quiz]
provider = "huggingface"
endpoint = %q
rate_limit_wait_seconds = 0
`, env.subsDir, env.manusDir, env.testsDir, filepath.Join(base, "state"), filepath.Join(base, "logs"), ytdlp, quiz.URL)
	testsupport.WriteFile(t, env.configPath, content)
	return env
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestCLIDownloadVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"download", "https://youtu.be/vid"}, env.configPath, "")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Downloaded subtitles for video vid")

	mapping := testsupport.ReadFile(t, filepath.Join(env.subsDir, "mapping.json"))
	requireContains(t, mapping, `"title": "Stub Title"`)
	requireContains(t, mapping, `"type": "video"`)

	matches, err := filepath.Glob(filepath.Join(env.subsDir, "*", "vid.txt"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one transcript file, got %v (%v)", matches, err)
	}
	requireContains(t, testsupport.ReadFile(t, matches[0]), "hello world")
}

func TestCLIDownloadPromptsForURL(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"download"}, env.configPath, "https://www.youtube.com/playlist?list=PL1\n")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Enter YouTube video or playlist URL: ")
	requireContains(t, out, "Processing playlist...")
	requireContains(t, out, "Found 2 videos in playlist: Stub Course")
	requireContains(t, out, "Downloaded subtitles for video a1")
	requireContains(t, out, "Error downloading subtitles for video b2")

	matches, _ := filepath.Glob(filepath.Join(env.subsDir, "*", "1.txt"))
	if len(matches) != 1 {
		t.Fatalf("expected 1.txt, got %v", matches)
	}
	if missing, _ := filepath.Glob(filepath.Join(env.subsDir, "*", "2.txt")); len(missing) != 0 {
		t.Fatalf("failed video must leave a gap, got %v", missing)
	}
}

func TestCLIDownloadInvalidURL(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"download", "https://example.com/nothing"}, env.configPath, "")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Could not extract video ID from URL")
	if _, err := os.Stat(env.subsDir); !os.IsNotExist(err) {
		t.Fatalf("invalid URL must not create the subtitles directory (stat err %v)", err)
	}
}

func TestCLIDownloadInvalidURLWithoutYtdlp(t *testing.T) {
	env := setupCLITestEnv(t)
	cfg := strings.Replace(testsupport.ReadFile(t, env.configPath),
		filepath.Join(env.baseDir, "bin", "yt-dlp"), filepath.Join(env.baseDir, "missing", "yt-dlp"), 1)
	testsupport.WriteFile(t, env.configPath, cfg)

	out, _, err := runCLI(t, []string{"download", "https://example.com/nothing"}, env.configPath, "")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Could not extract video ID from URL")

	_, _, err = runCLI(t, []string{"download", "https://youtu.be/vid"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "yt-dlp unavailable") {
		t.Fatalf("expected yt-dlp preflight failure for a valid URL, got %v", err)
	}
}

func TestCLICombineAndGenerate(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.subsDir, "abc123", "2.txt"), "second part")
	testsupport.WriteFile(t, filepath.Join(env.subsDir, "abc123", "1.txt"), "first part")

	out, _, err := runCLI(t, []string{"combine"}, env.configPath, "x\n7\n2,1\nlesson\n")
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	requireContains(t, out, "\nAvailable subtitles:\n")
	requireContains(t, out, "1. Video 1\n2. Video 2\n")
	requireContains(t, out, "Invalid input. Please enter numbers separated by commas.")
	requireContains(t, out, "Invalid selection. Please enter numbers from the list above.")
	manuscript := filepath.Join(env.manusDir, "lesson.txt")
	requireContains(t, out, "Combined subtitles saved to: "+manuscript)

	content := testsupport.ReadFile(t, manuscript)
	if strings.Index(content, "second part") > strings.Index(content, "first part") {
		t.Fatalf("manuscript must follow selection order:\n%s", content)
	}
	requireContains(t, content, "Video 2 from playlist: abc123\n")

	out, _, err = runCLI(t, []string{"generate"}, env.configPath, "5\n1\n0\n3\nthree\n2\n")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "1. lesson\n")
	requireContains(t, out, "Invalid selection. Please enter a number from the list above.")
	requireContains(t, out, "Please enter a number between 1 and 10.")
	requireContains(t, out, "Invalid input. Please enter a number.")
	requireContains(t, out, "\nGenerating test... This may take a minute.")
	saved := filepath.Join(env.testsDir, "lesson_3q_Medium.txt")
	requireContains(t, out, "Test saved to: "+saved)
	requireContains(t, testsupport.ReadFile(t, saved), "Answer: A")

	out, _, err = runCLI(t, []string{"history"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "manuscript")
	requireContains(t, out, "quiz")
}

func TestCLICombineWithoutSubtitles(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"combine"}, env.configPath, "")
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	requireContains(t, out, "No subtitles directory found.")
	requireContains(t, out, "No subtitle files found.")
}

func TestCLIGenerateWithoutManuscripts(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"generate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "No test_manuscripts directory found.")
}

func TestCLIGenerateInputClosed(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.manusDir, "lesson.txt"), "text")

	if _, _, err := runCLI(t, []string{"generate"}, env.configPath, "1\n"); err == nil {
		t.Fatal("expected error when input ends mid-prompt")
	}
	if _, err := os.Stat(env.testsDir); !os.IsNotExist(err) {
		t.Fatal("no test should be written")
	}
}

func TestCLIDoctor(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath, "")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "yt-dlp")
	requireContains(t, out, "2025.10.22")
	requireContains(t, out, "All checks passed")
}

func TestCLIMenuExit(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath, "4\n")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	requireContains(t, out, "What would you like to do?")
	requireContains(t, out, "Thank you for using YouTube Subtitle Manager. Goodbye!")
}
