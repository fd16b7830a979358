// Package accum provides a lock-free double buffer that lets one
// goroutine keep accumulating values while a second goroutine
// concurrently reads a stable snapshot of a completed accumulation,
// even though the buffer type itself supports no atomic operations.
//
// Consider a histogram that a hot path updates and a metrics loop
// periodically drains. Guarding it with a mutex stalls the hot path
// for the whole time the metrics loop spends reading:
//
//	var (
//		mu   sync.Mutex
//		hist histogram
//	)
//
//	func Observe(v int) {
//		mu.Lock()
//		hist.accum(v)
//		mu.Unlock()
//	}
//
//	func Drain() histogram {
//		mu.Lock()
//		defer mu.Unlock()
//		out := hist
//		hist.reset()
//		return out
//	}
//
// An Accumulator multiplexes two histograms behind a single atomic
// state word instead. The producer keeps a complete accumulation
// available at essentially all times, and the consumer reserves it
// without ever blocking the producer:
//
//	acc := accum.New[*histogram, int](new(histogram), new(histogram))
//
//	func Observe(v int) {
//		acc.Accum(v)
//	}
//
//	func Drain() {
//		if snap, ok := acc.Report(); ok {
//			use(snap)
//			acc.Reset()
//		}
//	}
//
// Exactly one goroutine may call Accum, and exactly one (other)
// goroutine may call Report and Reset; the two sides interleave
// freely. The design is probably of limited utility except in very
// specific situations, but the state machine makes both sides cheap:
// the producer never waits, and the consumer either reserves a
// snapshot with a compare-and-swap (retried only when the producer
// moves the state word underneath it) or learns immediately that none
// is available.
package accum
