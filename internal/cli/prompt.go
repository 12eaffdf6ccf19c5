package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompter asks init questions on out and reads answers from in. Running
// out of input accepts defaults; a question without a default then fails.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// answer reads one trimmed line. eof is set once input is exhausted.
func (p *prompter) answer() (line string, eof bool, err error) {
	line, err = p.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		return strings.TrimSpace(line), true, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(line), false, nil
}

// String asks for a value, returning def for an empty answer.
func (p *prompter) String(label, def string) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}
		line, eof, err := p.answer()
		if err != nil {
			return "", err
		}
		switch {
		case line != "":
			return line, nil
		case def != "":
			return def, nil
		case eof:
			return "", fmt.Errorf("missing input for %s", label)
		}
	}
}

// YesNo asks a yes/no question.
func (p *prompter) YesNo(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
		line, eof, err := p.answer()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if eof {
			return false, fmt.Errorf("invalid response %q", line)
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}

// Choice asks for one of allowed, case-insensitively.
func (p *prompter) Choice(label, def string, allowed ...string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s (%s) [%s]: ", label, strings.Join(allowed, "|"), def)
		line, eof, err := p.answer()
		if err != nil {
			return "", err
		}
		value := strings.ToLower(line)
		if value == "" {
			value = def
		}
		if contains(allowed, value) {
			return value, nil
		}
		if eof {
			return "", fmt.Errorf("invalid response %q (expected %s)", line, strings.Join(allowed, ", "))
		}
		fmt.Fprintf(p.out, "Please enter one of: %s\n", strings.Join(allowed, ", "))
	}
}
