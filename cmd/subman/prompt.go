package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var errInputClosed = errors.New("input closed")

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
}

// line prints label and returns the trimmed reply. errInputClosed is
// returned once input is exhausted.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	text, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if text != "" {
				return strings.TrimSpace(text), nil
			}
			fmt.Fprintln(p.out)
			return "", errInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// intInRange re-prompts until the reply is an integer in [lo, hi].
func (p *prompter) intInRange(label string, lo, hi int, rangeMessage string) (int, error) {
	for {
		text, err := p.line(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintln(p.out, "Invalid input. Please enter a number.")
			continue
		}
		if n < lo || n > hi {
			fmt.Fprintln(p.out, rangeMessage)
			continue
		}
		return n, nil
	}
}
