package combiner

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"subman/internal/fileutil"
	"subman/internal/library"
	"subman/internal/textutil"
)

// DefaultOutputName is used when the user leaves the manuscript name blank.
const DefaultOutputName = "combined_subtitles.txt"

const ruleWidth = 80

var rule = strings.Repeat("=", ruleWidth)

var (
	// ErrNoDirectory reports a subtitles root that does not exist yet.
	ErrNoDirectory = errors.New("no subtitles directory found")
	// ErrNoFiles reports a subtitles root without any transcripts.
	ErrNoFiles = errors.New("no subtitle files found")
	// ErrInvalidSelection reports an index outside the listed range.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInvalidInput reports a selection that is not a list of numbers.
	ErrInvalidInput = errors.New("invalid input")
)

// Entry is one transcript file.
type Entry struct {
	Path string
	// Folder is the name of the directory holding the file.
	Folder string
	// FolderTitle is the source title from mapping.json, when known.
	FolderTitle string
	// Name is the file name without the .txt extension.
	Name string
	// Order is the playlist position for numeric names.
	Order   int
	Ordered bool
}

func (e Entry) sortKey() float64 {
	if e.Ordered {
		return float64(e.Order)
	}
	return math.Inf(1)
}

// Discover walks root for .txt files and returns them in listing order.
// A missing root yields ErrNoDirectory; an empty one yields ErrNoFiles.
func Discover(root string) ([]Entry, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDirectory
		}
		return nil, fmt.Errorf("stat subtitles directory: %w", err)
	}
	if !info.IsDir() {
		return nil, ErrNoDirectory
	}

	titles := map[string]string{}
	if sources, err := library.New(root, nil).LoadSources(); err == nil {
		for _, key := range sources.Keys() {
			entry, _ := sources.Get(key)
			titles[key] = entry.Title
		}
	}

	var entries []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".txt") {
			return nil
		}
		folder := filepath.Base(filepath.Dir(path))
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		entry := Entry{
			Path:        path,
			Folder:      folder,
			FolderTitle: titles[folder],
			Name:        name,
		}
		if order, err := strconv.Atoi(name); err == nil {
			entry.Order = order
			entry.Ordered = true
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan subtitles directory: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoFiles
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Folder != b.Folder {
			return a.Folder < b.Folder
		}
		if ka, kb := a.sortKey(), b.sortKey(); ka != kb {
			return ka < kb
		}
		return a.Name < b.Name
	})
	return entries, nil
}

// RenderListing prints the numbered list grouped under folder headers.
func RenderListing(w io.Writer, entries []Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No subtitle files found.")
		return
	}
	dashes := strings.Repeat("-", ruleWidth)
	fmt.Fprintln(w, "\nAvailable subtitles:")
	fmt.Fprintln(w, dashes)
	current := ""
	for i, entry := range entries {
		if i == 0 || entry.Folder != current {
			current = entry.Folder
			if entry.FolderTitle != "" {
				fmt.Fprintf(w, "\n%s (%s):\n", entry.Folder, entry.FolderTitle)
			} else {
				fmt.Fprintf(w, "\n%s:\n", entry.Folder)
			}
		}
		if entry.Ordered {
			fmt.Fprintf(w, "%d. Video %s\n", i+1, entry.Name)
		} else {
			fmt.Fprintf(w, "%d. %s\n", i+1, entry.Name)
		}
	}
	fmt.Fprintln(w, dashes)
}

// ParseSelection converts "3, 1,2" into zero-based indices in the order
// given. Duplicates are kept.
func ParseSelection(input string, count int) ([]int, error) {
	parts := strings.Split(input, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, ErrInvalidInput
		}
		indices = append(indices, n-1)
	}
	for _, idx := range indices {
		if idx < 0 || idx >= count {
			return nil, ErrInvalidSelection
		}
	}
	return indices, nil
}

// OutputName strips path separators and other unsafe characters from a
// user-supplied name, then applies the default name and the .txt extension.
func OutputName(input string) string {
	name := textutil.SanitizeFileName(input)
	if name == "" {
		return DefaultOutputName
	}
	return textutil.EnsureExtension(name, ".txt")
}

// Banner returns the header written before a transcript.
func Banner(entry Entry) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")
	if entry.Ordered {
		fmt.Fprintf(&b, "Video %s from playlist: %s\n", entry.Name, entry.Folder)
	} else {
		fmt.Fprintf(&b, "Video: %s\n", entry.Name)
	}
	b.WriteString(rule)
	b.WriteString("\n\n")
	return b.String()
}

// Build concatenates the selected entries. Unreadable files contribute empty
// content and are reported to warn.
func Build(selected []Entry, warn io.Writer) string {
	var b strings.Builder
	for _, entry := range selected {
		b.WriteString(Banner(entry))
		content, err := os.ReadFile(entry.Path)
		if err != nil {
			if warn != nil {
				fmt.Fprintf(warn, "Error reading file %s: %v\n", entry.Path, err)
			}
			content = nil
		}
		b.Write(content)
		b.WriteString("\n")
	}
	return b.String()
}

// Write builds the manuscript and stores it as dir/name. It returns the
// written path and size.
func Write(dir, name string, selected []Entry, warn io.Writer) (string, int64, error) {
	if len(selected) == 0 {
		return "", 0, ErrNoFiles
	}
	content := Build(selected, warn)
	path := filepath.Join(dir, OutputName(name))
	if err := fileutil.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", 0, fmt.Errorf("write manuscript: %w", err)
	}
	return path, int64(len(content)), nil
}
