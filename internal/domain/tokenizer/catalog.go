// Package tokenizer contains the domain types describing the tokenizers
// beancounter can count with.
package tokenizer

import (
	"fmt"
	"strconv"
	"strings"

	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
)

// Kind identifies which provider family backs a tokenizer.
type Kind string

const (
	// KindFastBPE is a named byte-pair encoding (tiktoken family).
	KindFastBPE Kind = "fast-bpe"
	// KindModelVocabulary is a pretrained model vocabulary fetched by repository id.
	KindModelVocabulary Kind = "model-vocabulary"
)

// String returns the kind tag.
func (k Kind) String() string {
	return string(k)
}

// Spec describes one catalog entry.
type Spec struct {
	Number      int
	Identifier  string
	DisplayName string
	Kind        Kind
}

// DefaultNumber is the catalog entry used when the user makes no choice.
const DefaultNumber = 1

// catalog is indexed by Number-1.
var catalog = [...]Spec{
	{Number: 1, Identifier: "cl100k_base", DisplayName: "GPT-4 (default)", Kind: KindFastBPE},
	{Number: 2, Identifier: "p50k_base", DisplayName: "GPT-3", Kind: KindFastBPE},
	{Number: 3, Identifier: "r50k_base", DisplayName: "Codex", Kind: KindFastBPE},
	{Number: 4, Identifier: "gpt2", DisplayName: "GPT-2", Kind: KindFastBPE},
	{Number: 5, Identifier: "facebook/opt-350m", DisplayName: "OPT", Kind: KindModelVocabulary},
	{Number: 6, Identifier: "EleutherAI/gpt-neox-20b", DisplayName: "GPT-NeoX", Kind: KindModelVocabulary},
	{Number: 7, Identifier: "meta-llama/Llama-2-7b-hf", DisplayName: "LLaMA-2", Kind: KindModelVocabulary},
	{Number: 8, Identifier: "bigscience/bloom", DisplayName: "BLOOM", Kind: KindModelVocabulary},
}

// Catalog returns a copy of the fixed tokenizer catalog in menu order.
func Catalog() []Spec {
	out := make([]Spec, len(catalog))
	copy(out, catalog[:])
	return out
}

// Size returns the number of catalog entries.
func Size() int {
	return len(catalog)
}

// Default returns the default catalog entry.
func Default() Spec {
	return catalog[DefaultNumber-1]
}

// ByNumber returns the catalog entry with the given menu number.
func ByNumber(n int) (Spec, bool) {
	if n < 1 || n > len(catalog) {
		return Spec{}, false
	}
	return catalog[n-1], true
}

// ByIdentifier returns the catalog entry with the given identifier.
// Matching is case-sensitive since repository ids are.
func ByIdentifier(id string) (Spec, bool) {
	for _, s := range catalog {
		if s.Identifier == id {
			return s, true
		}
	}
	return Spec{}, false
}

// Resolve accepts either a menu number or an identifier.
func Resolve(choice string) (Spec, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return Default(), nil
	}
	if n, err := strconv.Atoi(choice); err == nil {
		if s, ok := ByNumber(n); ok {
			return s, nil
		}
		return Spec{}, fmt.Errorf("%w: %d is not between 1 and %d", domainErrors.ErrUnknownTokenizer, n, len(catalog))
	}
	if s, ok := ByIdentifier(choice); ok {
		return s, nil
	}
	return Spec{}, fmt.Errorf("%w: %q", domainErrors.ErrUnknownTokenizer, choice)
}
