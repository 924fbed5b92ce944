package tokenizer

import (
	"fmt"

	bpe "github.com/tiktoken-go/tokenizer"

	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
)

// embeddedEncodings lists the catalog encodings compiled into tiktoken-go/tokenizer.
var embeddedEncodings = map[string]bpe.Encoding{
	"cl100k_base": bpe.Cl100kBase,
	"p50k_base":   bpe.P50kBase,
	"r50k_base":   bpe.R50kBase,
}

// EmbeddedCounter counts tokens with vocabularies compiled into the binary.
// It produces the same counts as TiktokenCounter without any network access.
type EmbeddedCounter struct {
	name  string
	codec bpe.Codec
}

// Ensure EmbeddedCounter implements domainTokenizer.Counter.
var _ domainTokenizer.Counter = (*EmbeddedCounter)(nil)

// NewEmbeddedCounter loads the embedded codec for identifier.
func NewEmbeddedCounter(identifier string) (*EmbeddedCounter, error) {
	name := resolveEncoding(identifier)
	enc, ok := embeddedEncodings[name]
	if !ok {
		return nil, fmt.Errorf("%w: no embedded encoding for %s", domainErrors.ErrUnknownTokenizer, identifier)
	}

	codec, err := bpe.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("load embedded encoding %s: %w", name, err)
	}

	return &EmbeddedCounter{name: name, codec: codec}, nil
}

// CountTokens returns the token count for the given text.
func (c *EmbeddedCounter) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode with %s: %w", c.name, err)
	}
	return len(ids), nil
}

// Encoding returns the name of the loaded encoding.
func (c *EmbeddedCounter) Encoding() string {
	return c.name
}
