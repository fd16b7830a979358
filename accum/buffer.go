package accum

// Buffer is the contract the Accumulator requires of its two buffer
// slots. B is the concrete buffer type (typically a pointer) and V is
// the type of the accumulated values.
//
// The four operations are:
//
//   - CopyFrom overwrites the buffer with the contents of src.
//   - Accum folds one value into the buffer, for some sense of "add".
//   - Report returns the accumulated result. The result must remain
//     stable for as long as the accumulator keeps the slot reserved
//     for reporting.
//   - Reset returns the buffer to its initial state.
//
// None of the operations need to be safe for concurrent use: the
// accumulator only invokes CopyFrom, Accum and Reset on a slot that no
// one else is observing, and only invokes Report on a slot the
// producer will not touch again until the matching Reset.
type Buffer[B, V any] interface {
	CopyFrom(src B)
	Accum(v V)
	Report() V
	Reset()
}
