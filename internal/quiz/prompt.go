package quiz

import (
	"fmt"
	"strconv"
	"strings"

	"subman/internal/textutil"
)

// DefaultMaxContentChars bounds how much manuscript text goes into a prompt.
const DefaultMaxContentChars = 4000

// MaxQuestions is the largest question count accepted from the user.
const MaxQuestions = 10

// Difficulty is the requested test difficulty.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

// Difficulties lists the menu order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

var difficultyKeywords = map[Difficulty]string{
	Easy:   "easy",
	Medium: "medium",
	Hard:   "hard",
}

// String returns the title-cased level name used in prompts and file names.
func (d Difficulty) String() string {
	if kw, ok := difficultyKeywords[d]; ok {
		return textutil.TitleLabel(kw)
	}
	return "Difficulty(" + strconv.Itoa(int(d)) + ")"
}

// Valid reports whether d is one of the three menu levels.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

// ParseDifficulty accepts a menu number or a level name.
func ParseDifficulty(value string) (Difficulty, error) {
	trimmed := strings.TrimSpace(value)
	if n, err := strconv.Atoi(trimmed); err == nil {
		d := Difficulty(n)
		if !d.Valid() {
			return 0, fmt.Errorf("difficulty %d out of range 1-3", n)
		}
		return d, nil
	}
	label := textutil.TitleLabel(trimmed)
	for _, d := range Difficulties {
		if label == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", value)
}

const promptTemplate = `Create a %s difficulty test with %d multiple choice questions based on the following content.
Format each question as:

Q1. [Question text]
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]

Answer: [Correct option letter]

Content:
%s
`

// BuildPrompt renders the test request. Content is cut to maxChars runes;
// a non-positive maxChars uses DefaultMaxContentChars.
func BuildPrompt(content string, questions int, difficulty Difficulty, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}
	return fmt.Sprintf(promptTemplate, difficulty, questions, textutil.Truncate(content, maxChars))
}
