// Package ref provides intrusive strong and weak references and a
// list built on them whose iterators survive in-place deletion.
//
// The bookkeeping lives inside the target rather than alongside the
// handle: a type opts in by embedding Count (or one of its Guarded and
// Owned variants) and, if it wants weak references, WeakTarget of its
// own pointer type:
//
//	type conn struct {
//		ref.Owned
//		ref.WeakTarget[*conn]
//		addr string
//	}
//
// Intrusive counting removes an allocation per object, lets raw
// pointers be freely promoted to handles, and makes weak references
// cheap. In exchange the target is never destroyed implicitly: when
// the count drops to zero the target's LastUnref runs, and what that
// means is up to the target. Owned targets tear themselves down
// there; Guarded targets, which outlive all references by
// construction, do nothing; List uses the zero-transition as a signal
// that it is safe to compact.
//
// Nothing in this package is safe for concurrent use. Go has no
// destructors, so handles are duplicated with Copy and released with
// Clear (or Release); duplicating a live handle by plain assignment
// double-releases and is a programming error.
package ref
