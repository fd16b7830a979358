package ref

import "iter"

// OwnList is a List whose slots hold their elements directly instead
// of sharing them through counted references: appending hands an
// element to the list, and removing it through an iterator hands it
// back. The list does not stop a caller from keeping its own pointer
// to an appended element. It is meant for pointer-shaped element types; the
// zero value of T marks a removed slot, so elements must never be the
// zero value.
//
// Iteration, removal and compaction behave exactly as they do for
// List: iterators capture the bounds at creation, keep naming the
// same element across mutations, skip removed slots, and pin the
// backing vectors against compaction while they exist.
//
// The zero value is an empty list. An OwnList is not safe for
// concurrent use.
type OwnList[T comparable] struct {
	Count

	fwd        []T
	rev        []T // in reverse order
	cachedSize int
}

func (l *OwnList[T]) startIdx() int { return -len(l.rev) }
func (l *OwnList[T]) endIdx() int   { return len(l.fwd) }

func (l *OwnList[T]) at(idx int) *T {
	if idx >= 0 {
		return &l.fwd[idx]
	}
	return &l.rev[-1-idx]
}

// LastUnref compacts the backing vectors once the last iterator is
// gone, if the list has grown since the previous compaction.
func (l *OwnList[T]) LastUnref() {
	if l.endIdx()-l.startIdx() > l.cachedSize {
		l.fwd = compactOwned(l.fwd)
		l.rev = compactOwned(l.rev)
		l.cachedSize = l.endIdx() - l.startIdx()
	}
}

func compactOwned[T comparable](slots []T) []T {
	var zero T
	kept := slots[:0]
	for _, s := range slots {
		if s != zero {
			kept = append(kept, s)
		}
	}
	clear(slots[len(kept):])
	return kept
}

// Append adds an element at the end of the list.
func (l *OwnList[T]) Append(t T) {
	l.fwd = append(l.fwd, t)
}

// Prepend adds an element at the front of the list.
func (l *OwnList[T]) Prepend(t T) {
	l.rev = append(l.rev, t)
}

// Remove nulls the slot of the first element equal to t, leaving its
// logical position in place until the next compaction, and reports
// whether a matching element was found.
func (l *OwnList[T]) Remove(t T) bool {
	it := l.Begin()
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if it.Value() == t {
			it.Remove()
			return true
		}
	}
	return false
}

// Len counts the elements currently in the list.
func (l *OwnList[T]) Len() int {
	n := 0
	for range l.All() {
		n++
	}
	return n
}

// Clear removes every element. It must not be called while any
// iterators exist.
func (l *OwnList[T]) Clear() {
	if l.Refs() != 0 {
		panic("ref: OwnList mutated with live iterators")
	}
	l.fwd = nil
	l.rev = nil
	l.cachedSize = 0
}

// OwnIter walks an OwnList, with the same contract as Iter.
type OwnIter[T comparable] struct {
	list  Held[*OwnList[T]]
	start int
	end   int
	idx   int
	dir   int
}

// Begin returns a forward iterator parked at the first element.
func (l *OwnList[T]) Begin() *OwnIter[T] { return newOwnIter(l, l.startIdx(), 1) }

// RBegin returns a reverse iterator parked at the last element.
func (l *OwnList[T]) RBegin() *OwnIter[T] { return newOwnIter(l, l.endIdx()-1, -1) }

func newOwnIter[T comparable](l *OwnList[T], idx, dir int) *OwnIter[T] {
	it := &OwnIter[T]{
		list:  NewHeld(l),
		start: l.startIdx(),
		end:   l.endIdx(),
		dir:   dir,
	}
	it.idx = it.skipNull(idx, dir)
	return it
}

func (it *OwnIter[T]) skipNull(idx, dir int) int {
	l := it.list.Get()
	var zero T
	if dir > 0 {
		idx = max(idx, it.start)
		for idx < it.end && *l.at(idx) == zero {
			idx++
		}
		if idx < it.end {
			return idx
		}
		return pastEnd
	}
	idx = min(idx, it.end-1)
	for idx >= it.start && *l.at(idx) == zero {
		idx--
	}
	if idx >= it.start {
		return idx
	}
	return preStart
}

// Valid reports whether the iterator names an element position.
func (it *OwnIter[T]) Valid() bool {
	return it.idx != pastEnd && it.idx != preStart
}

// Next advances to the next element in the iterator's direction.
func (it *OwnIter[T]) Next() {
	it.idx = it.skipNull(it.idx+it.dir, it.dir)
}

// Prev steps back against the iterator's direction.
func (it *OwnIter[T]) Prev() {
	it.idx = it.skipNull(it.idx-it.dir, -it.dir)
}

// Value returns the element the iterator names, or the zero T if that
// element was removed since the last step.
func (it *OwnIter[T]) Value() T {
	return *it.list.Get().at(it.idx)
}

// Remove empties the element's slot and hands the element back to the
// caller, ending the list's ownership of it. The iterator keeps its
// position and skips the vacated slot on the next step.
func (it *OwnIter[T]) Remove() T {
	slot := it.list.Get().at(it.idx)
	out := *slot
	var zero T
	*slot = zero
	return out
}

// Equal reports whether two iterators name the same position.
func (it *OwnIter[T]) Equal(other *OwnIter[T]) bool {
	if it.list.Get() != other.list.Get() || it.dir != other.dir {
		panic("ref: comparing iterators from different lists or directions")
	}
	return it.idx == other.idx
}

// Close releases the iterator's pin on the list, allowing it to
// compact. The iterator must not be used afterwards.
func (it *OwnIter[T]) Close() { it.list.Release() }

// All returns a forward view of the list for use with range.
func (l *OwnList[T]) All() iter.Seq[T] {
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
func (l *OwnList[T]) Backward() iter.Seq[T] {
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
