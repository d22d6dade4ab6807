package common

// HasAny returns true if set contains any of the items.
func HasAny[T comparable](set []T, items ...T) bool {
	for _, s := range set {
		for _, it := range items {
			if s == it {
				return true
			}
		}
	}
	return false
}

// Toggle removes item from set if present, otherwise appends it.
// The input slice is never modified.
func Toggle[T comparable](set []T, item T) []T {
	out := make([]T, 0, len(set)+1)
	found := false
	for _, s := range set {
		if s == item {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, item)
	}
	return out
}
