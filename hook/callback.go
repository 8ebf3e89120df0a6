package hook

// Callback is one notification about a call. The first one a call produces
// has Loading set and nothing else. The second and last has Loading unset
// and exactly one of Result or Err.
type Callback[T any] struct {
	Loading bool
	Result  *T
	Err     error
}

// Settled reports whether cb is the terminal notification.
func (cb Callback[T]) Settled() bool {
	return !cb.Loading
}

// Sink receives the notifications of a call.
type Sink[T any] func(Callback[T])
