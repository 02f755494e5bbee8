// Package prompt provides line-based operator input. Every interaction reads
// exactly one line; richer dialogs are built on top by callers.
package prompt

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// ErrInterrupted is returned when the operator presses Ctrl+C at a prompt
var ErrInterrupted = stderrors.New("prompt interrupted")

// LineReader reads one line of operator input after showing a prompt.
// At end of input it returns io.EOF.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// IsTerminal reports whether f is attached to an interactive terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewReader picks the line editor for a terminal stdin and a plain scanner
// otherwise. The returned close function must be called when done.
func NewReader(in *os.File, out io.Writer) (LineReader, func() error, error) {
	if IsTerminal(in) {
		tr, err := NewTerminalReader()
		if err != nil {
			return nil, nil, err
		}
		return tr, tr.Close, nil
	}
	return NewScannerReader(in, out), func() error { return nil }, nil
}

// TerminalReader is a LineReader backed by a readline instance
type TerminalReader struct {
	rl *readline.Instance
}

// NewTerminalReader creates a readline-backed reader on the process terminal
func NewTerminalReader() (*TerminalReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init readline: %w", err)
	}
	return &TerminalReader{rl: rl}, nil
}

// ReadLine implements LineReader
func (r *TerminalReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", ErrInterrupted
		}
		if err == io.EOF {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

// Close releases the terminal
func (r *TerminalReader) Close() error {
	return r.rl.Close()
}

// ScannerReader is a LineReader for piped or redirected input
type ScannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader reads lines from in and echoes prompts to out
func NewScannerReader(in io.Reader, out io.Writer) *ScannerReader {
	if out == nil {
		out = io.Discard
	}
	return &ScannerReader{scanner: bufio.NewScanner(in), out: out}
}

// ReadLine implements LineReader
func (r *ScannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}

// Script is a LineReader that replays canned answers and records the prompts
// it was shown. Once the answers run out it returns io.EOF.
type Script struct {
	answers []string
	Prompts []string
}

// NewScript creates a Script that answers with lines in order
func NewScript(lines ...string) *Script {
	return &Script{answers: lines}
}

// ReadLine implements LineReader
func (s *Script) ReadLine(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	line := s.answers[0]
	s.answers = s.answers[1:]
	return line, nil
}

// Remaining returns the number of unread answers
func (s *Script) Remaining() int {
	return len(s.answers)
}
