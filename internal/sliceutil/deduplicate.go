// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	teachers := []string{"张老师", "李老师", "张老师"}
//	unique := sliceutil.Deduplicate(teachers, func(s string) string { return s })
//	// Result: ["张老师", "李老师"]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}

	return result
}

// Unique returns the distinct values of items in first-seen order.
func Unique[T comparable](items []T) []T {
	return Deduplicate(items, func(v T) T { return v })
}
