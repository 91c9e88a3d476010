package models

// Field is an optional value for partial updates. It distinguishes three
// states: not provided (zero value, leave the column unchanged), explicitly
// null (clear the column), and set to a concrete value.
type Field[T any] struct {
	value   T
	set     bool
	present bool
}

// Set returns a Field carrying a concrete value.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true, present: true}
}

// Null returns a Field that explicitly clears the column.
func Null[T any]() Field[T] {
	return Field[T]{set: true}
}

// IsSet reports whether the caller provided the field at all.
func (f Field[T]) IsSet() bool { return f.set }

// IsNull reports whether the caller explicitly cleared the field.
func (f Field[T]) IsNull() bool { return f.set && !f.present }

// Get returns the carried value. Only meaningful when IsSet and not IsNull.
func (f Field[T]) Get() T { return f.value }

// Ptr returns a pointer suitable as a nullable SQL argument: nil for
// absent or explicitly-null fields, the value otherwise.
func (f Field[T]) Ptr() *T {
	if !f.present {
		return nil
	}
	v := f.value
	return &v
}
