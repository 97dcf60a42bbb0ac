// Package layering merges precedence-ordered maps while remembering which
// layer supplied each key.
package layering

// Merge composes layers ordered from strongest to weakest. A key takes the
// value of the first (strongest) layer that contains it, even when that value
// is the zero value. The second result maps each key to the index of the
// supplying layer. Nil layers are skipped.
func Merge[K comparable, V any](layers ...map[K]V) (map[K]V, map[K]int) {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	merged := make(map[K]V, size)
	origin := make(map[K]int, size)
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = value
			origin[key] = i
		}
	}
	return merged, origin
}

// Clone returns a shallow copy of m, preserving nil.
func Clone[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// Overlay copies base and sets every key from top on it, so top wins.
func Overlay[K comparable, V any](base, top map[K]V) map[K]V {
	merged, _ := Merge(top, base)
	return merged
}
