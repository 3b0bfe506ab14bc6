package value

import "sync/atomic"

// Ref is a reference-counted handle to a shared body, giving every "shared"
// Value arm (Str, Mat, List, Assoc, Obj, Rand, Random, Config, Hash, Block)
// copy-on-write semantics without an external GC tracing the handle graph.
// The type graph is acyclic, so a plain refcount (no cycle collector) is
// sufficient, matching §9's "Reference-counted sharing with copy-on-write".
type Ref[T any] struct {
	ptr *refBody[T]
}

type refBody[T any] struct {
	count int32
	val   T
}

// NewRef wraps v in a fresh handle with refcount 1.
func NewRef[T any](v T) Ref[T] {
	return Ref[T]{ptr: &refBody[T]{count: 1, val: v}}
}

// Valid reports whether the handle actually points at a body.
func (r Ref[T]) Valid() bool { return r.ptr != nil }

// Get returns a pointer to the shared body for read access.
func (r Ref[T]) Get() *T { return &r.ptr.val }

// Retain increments the refcount and returns the same handle, modeling a
// copy of the Value that shares this body.
func (r Ref[T]) Retain() Ref[T] {
	atomic.AddInt32(&r.ptr.count, 1)
	return r
}

// Release decrements the refcount; at zero the body becomes eligible for
// collection by the Go garbage collector.
func (r Ref[T]) Release() {
	if r.ptr == nil {
		return
	}
	atomic.AddInt32(&r.ptr.count, -1)
}

// RefCount reports how many Values currently reference this body.
func (r Ref[T]) RefCount() int32 {
	if r.ptr == nil {
		return 0
	}
	return atomic.LoadInt32(&r.ptr.count)
}

// COW returns a handle safe to mutate in place: if shared (count > 1) it
// clones the body into a fresh handle and releases this one; otherwise it
// returns itself unchanged. clone must produce a deep-enough copy that
// mutating the result cannot be observed through any other handle.
func (r Ref[T]) COW(clone func(T) T) Ref[T] {
	if r.RefCount() <= 1 {
		return r
	}
	cp := clone(*r.Get())
	r.Release()
	return NewRef(cp)
}
