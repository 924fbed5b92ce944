// Package prompt implements the interactive questions beancounter asks:
// the tokenizer menu, the save confirmation and the output file name.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
)

// LineReader reads one line of user input after showing a prompt.
// It returns io.EOF when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// ReadlineReader reads from a terminal with line editing.
type ReadlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader creates a terminal reader on stdin and out.
func NewReadlineReader(out io.Writer) (*ReadlineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdout:          out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("could not create readline: %w", err)
	}
	return &ReadlineReader{rl: rl}, nil
}

// ReadLine implements LineReader. Ctrl-C is reported as io.EOF.
func (r *ReadlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

// Close implements LineReader.
func (r *ReadlineReader) Close() error {
	return r.rl.Close()
}

// ScannerReader reads plain lines, for piped input and tests.
type ScannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader creates a reader over in that writes prompts to out.
func NewScannerReader(in io.Reader, out io.Writer) *ScannerReader {
	return &ScannerReader{scanner: bufio.NewScanner(in), out: out}
}

// ReadLine implements LineReader.
func (r *ScannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// Close implements LineReader.
func (r *ScannerReader) Close() error {
	return nil
}

// NewReader picks a readline reader when stdin is a terminal and a plain
// scanner otherwise.
func NewReader(out io.Writer) LineReader {
	if readline.DefaultIsTerminal() {
		if r, err := NewReadlineReader(out); err == nil {
			return r
		}
	}
	return NewScannerReader(os.Stdin, out)
}
