package ref

// Weakable constrains the types that Weak can track: a pointer type
// whose struct embeds WeakTarget of itself.
type Weakable[T Weakable[T]] interface {
	comparable
	weakHead() *weakList[T]
}

type weakList[T Weakable[T]] struct {
	head *Weak[T]
}

// WeakTarget is the bookkeeping embedded in any type that weak
// references may track. T is the pointer type of the embedding
// struct:
//
//	type conn struct {
//		ref.WeakTarget[*conn]
//		...
//	}
//
// It must not be copied while weak references exist; they would be
// left pointing at the original.
type WeakTarget[T Weakable[T]] struct {
	list weakList[T]
}

func (t *WeakTarget[T]) weakHead() *weakList[T] { return &t.list }

// Invalidate nulls every weak reference currently tracking the
// target. A target being torn down calls this so that no weak
// reference outlives it.
func (t *WeakTarget[T]) Invalidate() {
	var zero T
	for t.list.head != nil {
		t.list.head.Set(zero)
	}
}

// Weak is a nullable handle that automatically becomes empty when its
// target is invalidated. The handle itself is the node of a
// singly-linked list threaded through the target, so its address must
// be stable while it is live: duplicate with Copy, never by plain
// assignment.
type Weak[T Weakable[T]] struct {
	ptr  T
	next *Weak[T]
}

// NewWeak returns a handle tracking t. A zero t yields an empty
// handle.
func NewWeak[T Weakable[T]](t T) *Weak[T] {
	w := new(Weak[T])
	w.Set(t)
	return w
}

// Set retargets the handle: it is unlinked from the old target's list
// and linked at the head of the new one's. Unlinking walks the old
// list from the head, which is O(k) in the number of weak references
// on that target; the list is singly linked to keep the per-handle
// cost at one pointer.
func (w *Weak[T]) Set(t T) {
	var zero T
	if w.ptr != zero {
		l := w.ptr.weakHead()
		if l.head == w {
			l.head = w.next
		} else {
			prior := l.head
			for prior.next != w {
				prior = prior.next
			}
			prior.next = w.next
		}
	}
	w.ptr = t
	if t != zero {
		l := t.weakHead()
		w.next = l.head
		l.head = w
	} else {
		w.next = nil
	}
}

// Get returns the target, or the zero T when the handle is empty or
// its target has been invalidated.
func (w *Weak[T]) Get() T { return w.ptr }

// Empty reports whether the handle tracks nothing.
func (w *Weak[T]) Empty() bool {
	var zero T
	return w.ptr == zero
}

// Clear empties the handle.
func (w *Weak[T]) Clear() {
	var zero T
	w.Set(zero)
}

// Copy returns a second handle tracking the same target.
func (w *Weak[T]) Copy() *Weak[T] { return NewWeak(w.ptr) }
