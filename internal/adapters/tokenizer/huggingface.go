package tokenizer

import (
	"fmt"
	"os"

	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
)

// tokenizerFileName is the file fetched from a model repository.
const tokenizerFileName = "tokenizer.json"

// VocabularyFetcher resolves a model repository id to a local tokenizer.json path.
type VocabularyFetcher func(repository string) (string, error)

// HubFetcher downloads tokenizer.json from the Hugging Face hub into the
// library's local cache, or returns the cached copy.
func HubFetcher(repository string) (string, error) {
	path, err := hf.CachedPath(repository, tokenizerFileName)
	if err != nil {
		return "", fmt.Errorf("fetch %s for %s: %w", tokenizerFileName, repository, err)
	}
	return path, nil
}

// HuggingFaceCounter counts tokens with a pretrained model vocabulary.
type HuggingFaceCounter struct {
	repository string
	tk         *hf.Tokenizer
}

// Ensure HuggingFaceCounter implements domainTokenizer.Counter.
var _ domainTokenizer.Counter = (*HuggingFaceCounter)(nil)

// NewHuggingFaceCounter loads the vocabulary for repository. A non-empty
// localFile is used as-is; otherwise fetch resolves the file.
func NewHuggingFaceCounter(repository, localFile string, fetch VocabularyFetcher) (_ *HuggingFaceCounter, err error) {
	path := localFile
	if path == "" {
		if fetch == nil {
			fetch = HubFetcher
		}
		path, err = fetch(repository)
		if err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("tokenizer file for %s: %w", repository, err)
	}

	// The loader panics on components it does not implement, such as
	// Unigram models or Precompiled normalizers.
	defer recoverLibraryPanic("load", repository, &err)

	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer for %s from %s: %w", repository, path, err)
	}

	return &HuggingFaceCounter{repository: repository, tk: tk}, nil
}

// CountTokens encodes text the way the model's own encode does, special
// tokens included.
func (c *HuggingFaceCounter) CountTokens(text string) (_ int, err error) {
	if text == "" {
		return 0, nil
	}
	defer recoverLibraryPanic("encode with", c.repository, &err)

	en, err := c.tk.EncodeSingle(text, true)
	if err != nil {
		return 0, fmt.Errorf("encode with %s: %w", c.repository, err)
	}
	return len(en.Ids), nil
}

// Repository returns the model repository id.
func (c *HuggingFaceCounter) Repository() string {
	return c.repository
}

// recoverLibraryPanic turns a panic raised inside the tokenizer library into
// an ErrProviderUnavailable error. It must be deferred directly.
func recoverLibraryPanic(op, repository string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %s %s: %v", domainErrors.ErrProviderUnavailable, op, repository, r)
	}
}
