package analysis

import (
	"errors"
	"strings"
	"testing"
)

func TestNewResult_Counts(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantWords int
		wantChars int
	}{
		{"empty", "", 0, 0},
		{"hello world", "hello world", 2, 11},
		{"mixed whitespace", "  a\tb\n\nc  ", 3, 10},
		{"only whitespace", " \n\t ", 0, 4},
		{"multibyte counts code points", "héllo wörld", 2, 11},
		{"cjk", "你好 世界", 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult("f.txt", "cl100k_base", tt.text, 0)
			if r.Words != tt.wantWords {
				t.Errorf("Words = %d, want %d", r.Words, tt.wantWords)
			}
			if r.Characters != tt.wantChars {
				t.Errorf("Characters = %d, want %d", r.Characters, tt.wantChars)
			}
		})
	}
}

func TestNewResult_NegativeTokensClamped(t *testing.T) {
	r := NewResult("f.txt", "gpt2", "a b", -3)
	if r.Tokens != 0 {
		t.Errorf("Tokens = %d, want 0", r.Tokens)
	}
}

func TestResult_Ratios(t *testing.T) {
	tests := []struct {
		name              string
		r                 Result
		wantTokensPerWord float64
		wantCharsPerToken float64
	}{
		{"zero everything", Result{}, 0, 0},
		{"no words", Result{Tokens: 4, Characters: 8}, 0, 2},
		{"no tokens", Result{Words: 3, Characters: 9}, 0, 0},
		{"hello world", Result{Tokens: 2, Words: 2, Characters: 11}, 1, 5.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.TokensPerWord(); got != tt.wantTokensPerWord {
				t.Errorf("TokensPerWord() = %v, want %v", got, tt.wantTokensPerWord)
			}
			if got := tt.r.CharsPerToken(); got != tt.wantCharsPerToken {
				t.Errorf("CharsPerToken() = %v, want %v", got, tt.wantCharsPerToken)
			}
		})
	}
}

func TestResult_Render(t *testing.T) {
	r := Result{Path: "notes.txt", Tokenizer: "cl100k_base", Tokens: 3, Words: 2, Characters: 11}

	want := "File: notes.txt\n" +
		"Tokenizer: cl100k_base\n" +
		"Total tokens: 3\n" +
		"Total words: 2\n" +
		"Total characters: 11\n" +
		"Average tokens per word: 1.50\n" +
		"Average characters per token: 3.67\n"

	if got := r.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestResult_Render_ZeroDenominators(t *testing.T) {
	got := Result{Path: "empty.txt", Tokenizer: "gpt2"}.Render()

	for _, line := range []string{"Average tokens per word: 0.00", "Average characters per token: 0.00"} {
		if !strings.Contains(got, line) {
			t.Errorf("Render() missing %q:\n%s", line, got)
		}
	}
}

func TestNotFoundReport(t *testing.T) {
	if got := NotFoundReport("missing.txt"); got != "Error: File 'missing.txt' not found.\n" {
		t.Errorf("NotFoundReport() = %q", got)
	}
}

func TestErrorReport(t *testing.T) {
	if got := ErrorReport(errors.New("boom")); got != "An error occurred: boom\n" {
		t.Errorf("ErrorReport() = %q", got)
	}
}

func TestJoin(t *testing.T) {
	if got := Join([]string{"a\n"}); got != "a\n" {
		t.Errorf("Join(single) = %q", got)
	}

	got := Join([]string{"a\n", "b\n", "c\n"})
	dashes := strings.Repeat("-", 50)
	want := "a\n\n" + dashes + "\n\nb\n\n" + dashes + "\n\nc\n"
	if got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
	if strings.Count(got, dashes) != 2 {
		t.Errorf("expected 2 separators in %q", got)
	}
}
