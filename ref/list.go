package ref

import (
	"iter"
	"math"
)

// List is a list of strong references with O(1) append and prepend
// that behaves predictably when modified during iteration:
//
//  1. Once created, an iterator keeps naming the same element, even as
//     other elements are added to or removed from the list.
//
//  2. Each iterator recalls the bounds of the list at the time it was
//     created, and never visits elements added since then.
//
//  3. Iterators skip removed slots.
//
// Removal nulls an element's slot rather than shifting its neighbors,
// which is what keeps logical positions stable. The backing vectors
// are compacted automatically once no iterators exist.
//
// Inserting into the middle of the list is not supported (it can be
// emulated by removing and re-adding everything after the insertion
// point), and Clear and CopyFrom must not be called while any
// iterators exist.
//
// The list is itself reference-counted so that iterators can pin it:
// its LastUnref compacts, it never destroys. The zero value is an
// empty list. A List is not safe for concurrent use.
type List[T Target] struct {
	Count

	fwd        []Strong[T]
	rev        []Strong[T] // in reverse order
	cachedSize int
}

// Logical index i maps to fwd[i] for i >= 0 and rev[-1-i] for i < 0,
// covering [-len(rev), len(fwd)).

func (l *List[T]) startIdx() int { return -len(l.rev) }
func (l *List[T]) endIdx() int   { return len(l.fwd) }

func (l *List[T]) at(idx int) *Strong[T] {
	if idx >= 0 {
		return &l.fwd[idx]
	}
	return &l.rev[-1-idx]
}

// LastUnref compacts the backing vectors once the last iterator is
// gone, if the list has grown since the previous compaction.
// Compaction rewrites logical indices, which is safe exactly because
// no iterators remain to observe them. The list itself is owned by
// its embedding value and is never destroyed here.
func (l *List[T]) LastUnref() {
	if l.endIdx()-l.startIdx() > l.cachedSize {
		l.fwd = compactSlots(l.fwd)
		l.rev = compactSlots(l.rev)
		l.cachedSize = l.endIdx() - l.startIdx()
	}
}

func compactSlots[T Target](slots []Strong[T]) []Strong[T] {
	kept := slots[:0]
	for _, s := range slots {
		if !s.Empty() {
			kept = append(kept, s)
		}
	}
	// release the vacated tail for the collector
	clear(slots[len(kept):])
	return kept
}

// Append adds an element at the end of the list.
func (l *List[T]) Append(t T) {
	l.fwd = append(l.fwd, NewStrong(t))
}

// Prepend adds an element at the front of the list.
func (l *List[T]) Prepend(t T) {
	l.rev = append(l.rev, NewStrong(t))
}

// AppendAll appends every element of other to l, skipping removed
// slots, so the elements arrive compacted.
func (l *List[T]) AppendAll(other *List[T]) {
	for t := range other.All() {
		l.Append(t)
	}
}

// Remove nulls the slot of the first element equal to t, leaving its
// logical position in place until the next compaction, and reports
// whether a matching element was found.
func (l *List[T]) Remove(t T) bool {
	it := l.Begin()
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if it.Value() == t {
			s := it.Remove()
			s.Clear()
			return true
		}
	}
	return false
}

// Len counts the elements currently in the list.
func (l *List[T]) Len() int {
	n := 0
	for range l.All() {
		n++
	}
	return n
}

// Clear removes every element. It must not be called while any
// iterators exist.
func (l *List[T]) Clear() {
	if l.Refs() != 0 {
		panic("ref: List mutated with live iterators")
	}
	for i := range l.fwd {
		l.fwd[i].Clear()
	}
	for i := range l.rev {
		l.rev[i].Clear()
	}
	l.fwd = nil
	l.rev = nil
	l.cachedSize = 0
}

// CopyFrom replaces the contents of l with a compacted copy of other
// (removed slots omitted). l must have no live iterators.
func (l *List[T]) CopyFrom(other *List[T]) {
	if l == other {
		return
	}
	l.Clear()
	l.AppendAll(other)
}

// Iterator sentinels. All past-end iterators share pastEnd and all
// pre-start iterators share preStart, so they compare equal no matter
// where they ran off the list; each sits one step inside the integer
// limit so a further step cannot overflow.
const (
	pastEnd  = math.MaxInt32 - 1
	preStart = math.MinInt32 + 1
)

// Iter walks a List. It holds a strong reference that keeps the list
// from compacting, so Close must be called when the walk is done; the
// All and Backward views take care of that automatically.
type Iter[T Target] struct {
	list  Held[*List[T]]
	start int
	end   int
	idx   int
	dir   int
}

// Begin returns a forward iterator parked at the first element (or
// past the end if the list is empty).
func (l *List[T]) Begin() *Iter[T] { return newIter(l, l.startIdx(), 1) }

// RBegin returns a reverse iterator parked at the last element (or
// before the start if the list is empty).
//
// This is a plain iterator running backwards rather than an adaptor
// with offset-by-one semantics: combined with null skipping, an
// offset adaptor could silently change which element an iterator
// names when its neighbor is removed.
func (l *List[T]) RBegin() *Iter[T] { return newIter(l, l.endIdx()-1, -1) }

func newIter[T Target](l *List[T], idx, dir int) *Iter[T] {
	it := &Iter[T]{
		list:  NewHeld(l),
		start: l.startIdx(),
		end:   l.endIdx(),
		dir:   dir,
	}
	it.idx = it.skipNull(idx, dir)
	return it
}

func (it *Iter[T]) skipNull(idx, dir int) int {
	l := it.list.Get()
	if dir > 0 {
		idx = max(idx, it.start)
		for idx < it.end && l.at(idx).Empty() {
			idx++
		}
		if idx < it.end {
			return idx
		}
		return pastEnd
	}
	idx = min(idx, it.end-1)
	for idx >= it.start && l.at(idx).Empty() {
		idx--
	}
	if idx >= it.start {
		return idx
	}
	return preStart
}

// Valid reports whether the iterator names an element position.
func (it *Iter[T]) Valid() bool {
	return it.idx != pastEnd && it.idx != preStart
}

// Next advances to the next element in the iterator's direction.
func (it *Iter[T]) Next() {
	it.idx = it.skipNull(it.idx+it.dir, it.dir)
}

// Prev steps back against the iterator's direction.
func (it *Iter[T]) Prev() {
	it.idx = it.skipNull(it.idx-it.dir, -it.dir)
}

// Value returns the element the iterator names, or the zero T if that
// element was removed since the last step.
func (it *Iter[T]) Value() T {
	return it.list.Get().at(it.idx).Get()
}

// Remove nulls the element's slot and transfers its reference to the
// returned handle, without a count round-trip. The iterator keeps its
// position and skips the vacated slot on the next step.
func (it *Iter[T]) Remove() Strong[T] {
	slot := it.list.Get().at(it.idx)
	out := *slot
	*slot = Strong[T]{}
	return out
}

// Equal reports whether two iterators name the same position.
// Comparing iterators from different lists or directions is
// ill-defined.
func (it *Iter[T]) Equal(other *Iter[T]) bool {
	if it.list.Get() != other.list.Get() || it.dir != other.dir {
		panic("ref: comparing iterators from different lists or directions")
	}
	// intentionally comparing only the index (not start or end)
	return it.idx == other.idx
}

// Close releases the iterator's pin on the list, allowing it to
// compact. The iterator must not be used afterwards.
func (it *Iter[T]) Close() { it.list.Release() }

// All returns a forward view of the list for use with range. The list
// is pinned for the duration of the loop.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := l.Begin()
		defer it.Close()
		for ; it.Valid(); it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}

// Backward returns a reverse view of the list for use with range.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := l.RBegin()
		defer it.Close()
		for ; it.Valid(); it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}
