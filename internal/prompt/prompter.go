package prompt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter layers question conventions over a LineReader
type Prompter struct {
	reader LineReader
	out    io.Writer
}

// NewPrompter creates a Prompter. Headers and list numbering go to out.
func NewPrompter(reader LineReader, out io.Writer) *Prompter {
	if out == nil {
		out = io.Discard
	}
	return &Prompter{reader: reader, out: out}
}

// Out returns the writer prompts are echoed to
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Ask shows "<question>: " and returns the trimmed answer
func (p *Prompter) Ask(question string) (string, error) {
	return p.Line(question + ": ")
}

// Line reads one trimmed line after showing the prompt verbatim
func (p *Prompter) Line(prompt string) (string, error) {
	line, err := p.reader.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. With defaultYes, anything but n/no
// confirms; otherwise only y/yes does. Case is ignored.
func (p *Prompter) Confirm(question string, defaultYes bool) (bool, error) {
	answer, err := p.Ask(question)
	if err != nil {
		return false, err
	}
	return IsYes(answer, defaultYes), nil
}

// IsYes interprets a confirmation answer
func IsYes(answer string, defaultYes bool) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if defaultYes {
		return a != "n" && a != "no"
	}
	return a == "y" || a == "yes"
}

// List prints header and reads numbered items until an empty line
func (p *Prompter) List(header string) ([]string, error) {
	fmt.Fprintln(p.out, header)

	items := []string{}
	for {
		item, err := p.Line(fmt.Sprintf("%d. ", len(items)+1))
		if err != nil {
			return nil, err
		}
		if item == "" {
			return items, nil
		}
		items = append(items, item)
	}
}

// Choose lists options as "N. option" and asks for a number. It returns the
// zero-based index, or ok=false when the answer is not a listed number.
func (p *Prompter) Choose(question string, options []string) (index int, answer string, ok bool, err error) {
	for i, o := range options {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, o)
	}

	answer, err = p.Ask(question)
	if err != nil {
		return 0, "", false, err
	}

	n, convErr := strconv.Atoi(answer)
	if convErr != nil || n < 1 || n > len(options) {
		return 0, answer, false, nil
	}
	return n - 1, answer, true, nil
}
