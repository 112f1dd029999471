package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// EnsureExtension appends ext to name unless it already ends with it.
func EnsureExtension(name, ext string) string {
	if strings.HasSuffix(name, ext) {
		return name
	}
	return name + ext
}

// NormalizeCaptionLine collapses runs of whitespace (including the newlines
// YouTube embeds inside a caption event) and applies NFC normalization.
// An empty string means the line carries no text.
func NormalizeCaptionLine(line string) string {
	fields := strings.FieldsFunc(line, unicode.IsSpace)
	if len(fields) == 0 {
		return ""
	}
	return norm.NFC.String(strings.Join(fields, " "))
}

var titleCaser = cases.Title(language.Und)

// TitleLabel renders a lowercase keyword such as "medium" as "Medium".
func TitleLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(value))
}

// Truncate returns at most limit runes of value.
func Truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(value) <= limit {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
