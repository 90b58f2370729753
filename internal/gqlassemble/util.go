package gqlassemble

import "sort"

// sortedKeys returns m's keys in sorted order so that iteration order
// (and therefore generated-type ordering in SDL output) never depends
// on Go's randomized map iteration — testable property 1 requires
// registration order not to affect the built schema's results, and a
// stable SDL is a natural companion guarantee.
func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
