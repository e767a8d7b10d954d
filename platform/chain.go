package platform

// candidate yields a value with its provenance, or ok=false when it has no opinion.
type candidate[T any] func() (v T, src Source, ok bool)

// firstOf walks the candidates in precedence order and returns the first
// answer. When none answers, fallback is returned tagged SourceUnknown.
func firstOf[T any](fallback T, candidates ...candidate[T]) (T, Source) {
	for _, c := range candidates {
		if v, src, ok := c(); ok {
			return v, src
		}
	}
	return fallback, SourceUnknown
}

// when wraps a plain string lookup into a candidate; empty means no answer.
func when(src Source, lookup func() string) candidate[string] {
	return func() (string, Source, bool) {
		v := lookup()
		return v, src, v != ""
	}
}
