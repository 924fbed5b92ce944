package tokenizer

// Counter counts tokens for one loaded tokenizer.
// Implementations wrap a concrete provider library and report provider
// failures as errors; deciding what to do about them is the caller's job.
type Counter interface {
	CountTokens(text string) (int, error)
}

// CounterFunc adapts a function to the Counter interface.
type CounterFunc func(text string) (int, error)

// CountTokens calls f(text).
func (f CounterFunc) CountTokens(text string) (int, error) {
	return f(text)
}
