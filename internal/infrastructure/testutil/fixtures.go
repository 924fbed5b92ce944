package testutil

import (
	"errors"
	"strings"

	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
)

// ErrProviderDown is returned by FailingCounter.
var ErrProviderDown = errors.New("provider down")

// StaticCounter counts every non-empty text as n tokens.
func StaticCounter(n int) domainTokenizer.Counter {
	return domainTokenizer.CounterFunc(func(text string) (int, error) {
		if text == "" {
			return 0, nil
		}
		return n, nil
	})
}

// WordCounter counts one token per whitespace-delimited word.
func WordCounter() domainTokenizer.Counter {
	return domainTokenizer.CounterFunc(func(text string) (int, error) {
		return len(strings.Fields(text)), nil
	})
}

// FailingCounter fails every encode with ErrProviderDown.
func FailingCounter() domainTokenizer.Counter {
	return domainTokenizer.CounterFunc(func(string) (int, error) {
		return 0, ErrProviderDown
	})
}

// Sample texts with known word and code point counts.
const (
	// 2 words, 11 characters.
	SampleHelloWorld = "hello world"
	// 3 words, 14 characters.
	SampleMultibyte = "naïve café 日本語"
	// 3 words, 10 characters.
	SampleMixedSpace = "  a\tb\n\nc  "
)
