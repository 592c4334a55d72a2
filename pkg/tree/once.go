package tree

// once holds a value that can be taken a single time.
type once[T any] struct {
	v   T
	set bool
}

// Put stores v, replacing any value not yet taken.
func (o *once[T]) Put(v T) {
	o.v, o.set = v, true
}

// Take returns the stored value and empties the slot.
func (o *once[T]) Take() (T, bool) {
	v, ok := o.v, o.set
	var zero T
	o.v, o.set = zero, false
	return v, ok
}

// Pending reports whether a value is waiting to be taken.
func (o *once[T]) Pending() bool {
	return o.set
}
