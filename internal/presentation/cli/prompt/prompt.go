package prompt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
	"github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
)

// Prompt texts.
const (
	MenuHeader       = "Choose a tokenizer:"
	InvalidNumberMsg = "Please enter a valid number."
	SaveQuestion     = "Do you want to save the results to a file? (y/n): "
	FileNameQuestion = "Enter the output file name: "
)

// Prompter asks questions on a LineReader and prints feedback to out.
type Prompter struct {
	in  LineReader
	out io.Writer
}

// New creates a Prompter.
func New(in LineReader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// SelectTokenizer shows the catalog menu and asks until the answer is valid.
// An empty answer picks defaultNumber. End of input aborts the selection.
func (p *Prompter) SelectTokenizer(defaultNumber int) (tokenizer.Spec, error) {
	if _, ok := tokenizer.ByNumber(defaultNumber); !ok {
		defaultNumber = tokenizer.DefaultNumber
	}

	size := tokenizer.Size()
	fmt.Fprintln(p.out, MenuHeader)
	for _, spec := range tokenizer.Catalog() {
		fmt.Fprintf(p.out, "%d. %s\n", spec.Number, spec.DisplayName)
	}

	question := fmt.Sprintf("Enter your choice (1-%d), or press Enter for default: ", size)
	for {
		line, err := p.in.ReadLine(question)
		if err != nil {
			return tokenizer.Spec{}, abort(err)
		}

		if line == "" {
			spec, _ := tokenizer.ByNumber(defaultNumber)
			return spec, nil
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(p.out, InvalidNumberMsg)
			continue
		}
		spec, ok := tokenizer.ByNumber(n)
		if !ok {
			fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", size)
			continue
		}
		return spec, nil
	}
}

// Confirm asks a yes/no question. Only "y" and "yes" count as yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	line, err := p.in.ReadLine(question)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// AskPath asks for a non-empty path, repeating the question on empty answers.
func (p *Prompter) AskPath(question string) (string, error) {
	for {
		line, err := p.in.ReadLine(question)
		if err != nil {
			return "", abort(err)
		}
		if path := strings.TrimSpace(line); path != "" {
			return path, nil
		}
	}
}

func abort(err error) error {
	if errors.Is(err, io.EOF) {
		return domainErrors.ErrSelectionAborted
	}
	return fmt.Errorf("%w: %v", domainErrors.ErrSelectionAborted, err)
}
