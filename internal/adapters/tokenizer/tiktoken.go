// Package tokenizer provides token counting adapters for the provider
// libraries behind the tokenizer catalog: tiktoken-go for named byte-pair
// encodings and sugarme/tokenizer for Hugging Face model vocabularies.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
)

// encodingAliases maps catalog identifiers that tiktoken-go does not know by
// name onto an encoding with the same merge ranks.
var encodingAliases = map[string]string{
	"gpt2": "r50k_base",
}

// resolveEncoding returns the encoding name to ask the library for.
func resolveEncoding(identifier string) string {
	if alias, ok := encodingAliases[identifier]; ok {
		return alias
	}
	return identifier
}

// TiktokenCounter counts tokens using tiktoken-go. The BPE ranks are fetched
// (and cached) by the library on first use, so loading may hit the network.
type TiktokenCounter struct {
	name     string
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

// Ensure TiktokenCounter implements domainTokenizer.Counter.
var _ domainTokenizer.Counter = (*TiktokenCounter)(nil)

// NewTiktokenCounter loads the named encoding.
func NewTiktokenCounter(identifier string) (*TiktokenCounter, error) {
	name := resolveEncoding(identifier)
	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %s: %w", name, err)
	}

	return &TiktokenCounter{
		name:     name,
		encoding: encoding,
	}, nil
}

// CountTokens returns the token count for the given text.
// Special-token strings are encoded as ordinary text.
func (c *TiktokenCounter) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	tokens := c.encoding.Encode(text, nil, nil)
	return len(tokens), nil
}

// Encoding returns the name of the loaded encoding.
func (c *TiktokenCounter) Encoding() string {
	return c.name
}
