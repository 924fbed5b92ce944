package tokenizer

import (
	"fmt"
	"sync"

	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
)

// Options controls how catalog entries are turned into counters.
type Options struct {
	// Offline selects the embedded BPE vocabularies instead of fetched ones.
	Offline bool
	// VocabularyFiles maps model repository ids to local tokenizer.json files.
	VocabularyFiles map[string]string
	// Fetch resolves model vocabularies not listed in VocabularyFiles.
	// Defaults to HubFetcher.
	Fetch VocabularyFetcher
}

// Registry loads counters on first use and keeps them, together with load
// failures, for the rest of the invocation.
type Registry struct {
	opts Options

	mu       sync.Mutex
	counters map[string]domainTokenizer.Counter
	failures map[string]error
}

// NewRegistry creates a registry with the given options.
func NewRegistry(opts Options) *Registry {
	if opts.Fetch == nil {
		opts.Fetch = HubFetcher
	}
	return &Registry{
		opts:     opts,
		counters: make(map[string]domainTokenizer.Counter),
		failures: make(map[string]error),
	}
}

// Get returns the counter for spec, loading it if needed.
func (r *Registry) Get(spec domainTokenizer.Spec) (domainTokenizer.Counter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[spec.Identifier]; ok {
		return c, nil
	}
	if err, ok := r.failures[spec.Identifier]; ok {
		return nil, err
	}

	c, err := r.load(spec)
	if err != nil {
		err = domainErrors.WithContext(
			domainErrors.NewError(domainErrors.CodeProvider, fmt.Sprintf("load %s", spec.Identifier), err),
			"kind", spec.Kind.String(),
		)
		r.failures[spec.Identifier] = err
		return nil, err
	}

	r.counters[spec.Identifier] = c
	return c, nil
}

// load dispatches on the provider kind.
func (r *Registry) load(spec domainTokenizer.Spec) (domainTokenizer.Counter, error) {
	switch spec.Kind {
	case domainTokenizer.KindFastBPE:
		if r.opts.Offline {
			return NewEmbeddedCounter(spec.Identifier)
		}
		return NewTiktokenCounter(spec.Identifier)
	case domainTokenizer.KindModelVocabulary:
		return NewHuggingFaceCounter(spec.Identifier, r.opts.VocabularyFiles[spec.Identifier], r.opts.Fetch)
	default:
		return nil, fmt.Errorf("%w: provider kind %q", domainErrors.ErrUnknownTokenizer, spec.Kind)
	}
}
