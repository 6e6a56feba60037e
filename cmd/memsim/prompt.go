package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errNotANumber = errors.New("not a number")

// prompter reads one answer per line. Prompts are written only when show is
// set, so piped input produces just the simulator output.
type prompter struct {
	sc   *bufio.Scanner
	out  io.Writer
	show bool
}

func newPrompter(in io.Reader, out io.Writer, show bool) *prompter {
	return &prompter{sc: bufio.NewScanner(in), out: out, show: show}
}

// ask prints prompt and returns the next trimmed line, or io.EOF.
func (p *prompter) ask(prompt string) (string, error) {
	if p.show {
		fmt.Fprint(p.out, prompt)
	}
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

func (p *prompter) askInt(prompt string) (int, error) {
	s, err := p.ask(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errNotANumber, s)
	}
	return n, nil
}
