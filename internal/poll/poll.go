// Package poll implements the cooperative Poll<T> sum type that every
// long-running operation in the mesh core returns instead of blocking.
//
// There is no scheduler, no wake/notify mechanism and no goroutine handoff
// here: a task makes progress only when its execute/poll method is called
// again by the owning service's single-threaded tick. Pending means "call
// me again later"; it is never an error.
package poll

// Poll is either Pending (the operation cannot make progress yet) or
// Ready, carrying the operation's result.
type Poll[T any] struct {
	ready bool
	value T
}

// Ready wraps a completed value.
func Ready[T any](v T) Poll[T] {
	return Poll[T]{ready: true, value: v}
}

// Pending reports that the caller should retry on a later tick.
func Pending[T any]() Poll[T] {
	return Poll[T]{}
}

// IsReady reports whether the poll completed.
func (p Poll[T]) IsReady() bool { return p.ready }

// IsPending reports whether the caller must retry later.
func (p Poll[T]) IsPending() bool { return !p.ready }

// Unwrap returns the ready value. It panics if called on a pending poll;
// callers must check IsReady first, exactly like the original's
// FASSERT-guarded unwrap().
func (p Poll[T]) Unwrap() T {
	if !p.ready {
		panic("poll: Unwrap called on a Pending value")
	}
	return p.value
}

// UnwrapOr returns the ready value, or def if the poll is pending.
func (p Poll[T]) UnwrapOr(def T) T {
	if p.ready {
		return p.value
	}
	return def
}

// Void is the Poll<void> specialization: completion with no payload.
type Void = Poll[struct{}]

// ReadyVoid is the Poll<void> ready value, the Go analogue of nb::ready().
var ReadyVoid = Ready(struct{}{})

// PendingVoid is the Poll<void> pending value, the Go analogue of nb::pending.
var PendingVoid = Pending[struct{}]()

// Map transforms a ready value, leaving a pending poll untouched.
func Map[T, U any](p Poll[T], f func(T) U) Poll[U] {
	if p.IsPending() {
		return Pending[U]()
	}
	return Ready(f(p.Unwrap()))
}
