package pointer

// To returns a pointer to a copy of value. It's mostly useful for optional
// instruction fields, which are modelled as pointers.
func To[T any](value T) *T {
	return &value
}

// ValueOrDefault dereferences value, falling back to defaultValue when nil.
func ValueOrDefault[T any](value *T, defaultValue T) T {
	if value == nil {
		return defaultValue
	}
	return *value
}
