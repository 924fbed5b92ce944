// Package analysis contains the per-file statistics and the plain-text
// report format beancounter prints and saves.
package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SeparatorWidth is the number of dashes in the line between file sections.
const SeparatorWidth = 50

// Separator sits between two file sections of a batch report: a blank line,
// the dashed line, and another blank line.
var Separator = "\n" + strings.Repeat("-", SeparatorWidth) + "\n\n"

// Result holds the statistics for one analyzed file.
type Result struct {
	Path       string
	Tokenizer  string
	Tokens     int
	Words      int
	Characters int
}

// NewResult computes word and character counts for text. Token counting is
// delegated, so the caller passes the already-computed token count.
func NewResult(path, tokenizer, text string, tokens int) Result {
	if tokens < 0 {
		tokens = 0
	}
	return Result{
		Path:       path,
		Tokenizer:  tokenizer,
		Tokens:     tokens,
		Words:      CountWords(text),
		Characters: CountCharacters(text),
	}
}

// CountWords returns the number of whitespace-delimited segments.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountCharacters returns the number of Unicode code points.
func CountCharacters(text string) int {
	return utf8.RuneCountInString(text)
}

// TokensPerWord is 0 when there are no words.
func (r Result) TokensPerWord() float64 {
	if r.Words == 0 {
		return 0
	}
	return float64(r.Tokens) / float64(r.Words)
}

// CharsPerToken is 0 when there are no tokens.
func (r Result) CharsPerToken() float64 {
	if r.Tokens == 0 {
		return 0
	}
	return float64(r.Characters) / float64(r.Tokens)
}

// Render formats the result as a newline-terminated report section.
func (r Result) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", r.Path)
	fmt.Fprintf(&b, "Tokenizer: %s\n", r.Tokenizer)
	fmt.Fprintf(&b, "Total tokens: %d\n", r.Tokens)
	fmt.Fprintf(&b, "Total words: %d\n", r.Words)
	fmt.Fprintf(&b, "Total characters: %d\n", r.Characters)
	fmt.Fprintf(&b, "Average tokens per word: %.2f\n", r.TokensPerWord())
	fmt.Fprintf(&b, "Average characters per token: %.2f\n", r.CharsPerToken())
	return b.String()
}

// NotFoundReport is the whole section for a path that does not exist.
func NotFoundReport(path string) string {
	return fmt.Sprintf("Error: File '%s' not found.\n", path)
}

// ErrorReport is the whole section for a file that could not be analyzed.
func ErrorReport(err error) string {
	return fmt.Sprintf("An error occurred: %s\n", err.Error())
}

// Join concatenates file sections in order with Separator between them.
func Join(sections []string) string {
	return strings.Join(sections, Separator)
}
