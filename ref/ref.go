package ref

// Count is the bookkeeping embedded in any reference-counted type. It
// must not be copied while nonzero; the count is not transferable.
type Count struct {
	refs uint32
}

// Refs returns the current reference count.
func (c *Count) Refs() uint32 { return c.refs }

func (c *Count) counter() *Count { return c }

// Target constrains the types that Strong and Held can point at: a
// pointer type whose struct embeds Count (or Guarded or Owned) and
// implements LastUnref, called when the count drops to zero.
//
// The target is never destroyed automatically. Shared-ownership
// semantics fall out of making LastUnref tear the object down, but
// other behaviors are possible too.
type Target interface {
	comparable
	counter() *Count
	LastUnref()
}

// Guarded is a Count for targets that outlive all references by
// construction: the zero-transition does nothing.
type Guarded struct{ Count }

// LastUnref does nothing.
func (*Guarded) LastUnref() {}

// Owned is a Count for targets whose lifetime ends with the last
// reference. Destroy, if set, runs on the zero-transition; a target
// with weak references calls Invalidate from there so they are nulled
// before the object is dropped.
type Owned struct {
	Count
	Destroy func()
}

// LastUnref runs the Destroy hook.
func (o *Owned) LastUnref() {
	if o.Destroy != nil {
		o.Destroy()
	}
}

func incref[T Target](t T) {
	t.counter().refs++
}

func decref[T Target](t T) {
	c := t.counter()
	if c.refs == 0 {
		panic("ref: count underflow")
	}
	c.refs--
	if c.refs == 0 {
		t.LastUnref()
	}
}

// Strong is a nullable counted handle to a T. The zero value is an
// empty handle. Duplicate with Copy, release with Clear; plain
// assignment of a live Strong is a programming error.
type Strong[T Target] struct {
	ptr T
}

// NewStrong returns a handle referencing t. A zero t yields an empty
// handle.
func NewStrong[T Target](t T) Strong[T] {
	var s Strong[T]
	s.Set(t)
	return s
}

// Set retargets the handle. The new target is referenced before the
// old one is released, so retargeting a handle to its own target is
// safe.
func (s *Strong[T]) Set(t T) {
	var zero T
	if t != zero {
		incref(t)
	}
	if s.ptr != zero {
		decref(s.ptr)
	}
	s.ptr = t
}

// Get returns the target, or the zero T for an empty handle.
func (s *Strong[T]) Get() T { return s.ptr }

// Empty reports whether the handle references nothing.
func (s *Strong[T]) Empty() bool {
	var zero T
	return s.ptr == zero
}

// Clear releases the handle. Clearing an empty handle is a no-op.
func (s *Strong[T]) Clear() {
	var zero T
	s.Set(zero)
}

// Copy returns a second handle to the same target.
func (s *Strong[T]) Copy() Strong[T] { return NewStrong(s.ptr) }

// Held is a non-nullable Strong: it is constructed from an existing
// target and always references it, making always-valid references
// self-documenting in APIs. It cannot be retargeted; it ends with
// Release.
type Held[T Target] struct {
	ptr T
}

// NewHeld returns a handle referencing t, which must not be zero.
func NewHeld[T Target](t T) Held[T] {
	var zero T
	if t == zero {
		panic("ref: Held requires a target")
	}
	incref(t)
	return Held[T]{ptr: t}
}

// Get returns the target, never the zero T.
func (h Held[T]) Get() T { return h.ptr }

// Copy returns a second handle to the same target.
func (h Held[T]) Copy() Held[T] { return NewHeld(h.ptr) }

// Release drops the reference. The Held must not be used afterwards.
func (h *Held[T]) Release() {
	decref(h.ptr)
	var zero T
	h.ptr = zero
}
