package accum

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zeebo/assert"
	"github.com/zeebo/pcg"
)

// intSum accumulates a running total of ints.
type intSum struct{ total int }

func (b *intSum) CopyFrom(src *intSum) { b.total = src.total }
func (b *intSum) Accum(v int)          { b.total += v }
func (b *intSum) Report() int          { return b.total }
func (b *intSum) Reset()               { b.total = 0 }

// sliceBuf appends int slices onto one slice and reports that slice
// itself, so snapshot stability is observable.
type sliceBuf struct{ data []int }

func (b *sliceBuf) CopyFrom(src *sliceBuf) { b.data = append(b.data[:0], src.data...) }
func (b *sliceBuf) Accum(v []int)          { b.data = append(b.data, v...) }
func (b *sliceBuf) Report() []int          { return b.data }
func (b *sliceBuf) Reset()                 { b.data = b.data[:0] }

// strBuf concatenates strings, sleeping inside each operation to
// widen the race windows, and panics if the accumulator ever lets two
// operations overlap on the same slot.
type strBuf struct {
	accumulating bool
	reporting    bool
	data         string
}

func (b *strBuf) CopyFrom(src *strBuf) {
	if b.accumulating || b.reporting || src.accumulating {
		panic("strBuf: copy while in use")
	}
	b.data = src.data
}

func (b *strBuf) Accum(v string) {
	if b.accumulating || b.reporting {
		panic("strBuf: accum on a busy slot")
	}
	b.accumulating = true
	b.data += v
	time.Sleep(time.Millisecond)
	b.accumulating = false
}

func (b *strBuf) Report() string {
	if b.accumulating || b.reporting {
		panic("strBuf: report on a busy slot")
	}
	b.reporting = true
	time.Sleep(5 * time.Millisecond)
	return b.data
}

func (b *strBuf) Reset() {
	b.data = ""
	b.reporting = false
}

func TestAccumulator(t *testing.T) {
	acc := New[*intSum, int](new(intSum), new(intSum))

	_, ok := acc.Report()
	assert.That(t, !ok)

	acc.Accum(1)
	acc.Accum(2)
	acc.Accum(3)

	total, ok := acc.Report()
	assert.That(t, ok)
	assert.Equal(t, total, 6)
	acc.Reset()

	acc.Accum(4)

	total, ok = acc.Report()
	assert.That(t, ok)
	assert.Equal(t, total, 4)
	acc.Reset()

	_, ok = acc.Report()
	assert.That(t, !ok)
}

func TestAccumulatorSnapshotStable(t *testing.T) {
	acc := New[*sliceBuf, []int](new(sliceBuf), new(sliceBuf))

	acc.Accum([]int{1})
	acc.Accum([]int{2})

	snap, ok := acc.Report()
	assert.That(t, ok)
	assert.DeepEqual(t, snap, []int{1, 2})

	// the reserved slot stays untouched while new values arrive
	want := []int(nil)
	for i := 3; i <= 20; i++ {
		acc.Accum([]int{i})
		want = append(want, i)
	}
	assert.DeepEqual(t, snap, []int{1, 2})
	acc.Reset()

	snap, ok = acc.Report()
	assert.That(t, ok)
	assert.DeepEqual(t, snap, want)
	acc.Reset()
}

func TestAccumulatorMisuse(t *testing.T) {
	acc := New[*intSum, int](new(intSum), new(intSum))

	assert.That(t, panics(func() { acc.Reset() }))

	acc.Accum(1)
	_, ok := acc.Report()
	assert.That(t, ok)
	assert.That(t, panics(func() { acc.Report() }))
	acc.Reset()
}

func panics(fn func()) (panicked bool) {
	defer func() { panicked = recover() != nil }()
	fn()
	return false
}

// assertRun checks that a report is an in-order concatenation of
// consecutive values, i.e. that nothing inside a run went missing or
// got reordered.
func assertRun(t *testing.T, s string) {
	t.Helper()
	parts := strings.Split(strings.TrimSuffix(s, ","), ",")
	for i := 1; i < len(parts); i++ {
		prev, err := strconv.Atoi(parts[i-1])
		assert.NoError(t, err)
		cur, err := strconv.Atoi(parts[i])
		assert.NoError(t, err)
		assert.Equal(t, cur, prev+1)
	}
}

func TestAccumulatorConcurrent(t *testing.T) {
	acc := New[*strBuf, string](new(strBuf), new(strBuf))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			acc.Accum(strconv.Itoa(i) + ",")
		}
	}()

	last := ""
	for i := 0; i < 16; i++ {
		if snap, ok := acc.Report(); ok {
			assertRun(t, snap)
			last = snap
			acc.Reset()
		} else {
			time.Sleep(5 * time.Millisecond)
		}
	}

	wg.Wait()

	// the tail either shows up in one last report, or the loop above
	// already drained it
	if snap, ok := acc.Report(); ok {
		assertRun(t, snap)
		last = snap
		acc.Reset()
	}
	assert.That(t, strings.HasSuffix(last, "99,"))
}

// runBuf records the first and last of a consecutive run of ints and
// panics if the run is ever broken, so any value the accumulator
// misroutes shows up immediately. Each accumulated value is itself a
// run {first, last}; the producer below sends single-value runs.
type runBuf struct {
	first, last, count int
}

func (b *runBuf) CopyFrom(src *runBuf) { *b = *src }

func (b *runBuf) Accum(v [2]int) {
	if b.count == 0 {
		b.first = v[0]
	} else if v[0] != b.last+1 {
		panic("runBuf: non-consecutive value")
	}
	b.last = v[1]
	b.count++
}

func (b *runBuf) Report() [2]int { return [2]int{b.first, b.last} }
func (b *runBuf) Reset()         { *b = runBuf{} }

func TestAccumulatorRace(t *testing.T) {
	const num = 10000

	acc := New[*runBuf, [2]int](new(runBuf), new(runBuf))

	var bad atomic.Uint32
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)

	// observer: every state the protocol exposes is one of the 13
	// codes (7 and 15 would mean both slots accumulating or both
	// reporting).
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if s := acc.state.Load(); s == 7 || s > 14 {
				bad.Add(1)
			}
			runtime.Gosched()
		}
	}()

	// consumer: every snapshot is a well-formed run of values the
	// producer actually delivered.
	maxSeen := -1
	go func() {
		defer wg.Done()
		rng := pcg.New(42, 1)
		for {
			if snap, ok := acc.Report(); ok {
				if snap[0] > snap[1] || snap[1] >= num {
					bad.Add(1)
				}
				if snap[1] > maxSeen {
					maxSeen = snap[1]
				}
				acc.Reset()
			}
			if rng.Uint32n(8) == 0 {
				runtime.Gosched()
			}
			select {
			case <-done:
				return
			default:
			}
		}
	}()

	for i := 0; i < num; i++ {
		acc.Accum([2]int{i, i})
	}
	close(done)
	wg.Wait()

	// the tail either shows up in one last report, or the consumer
	// already drained it
	if snap, ok := acc.Report(); ok {
		if snap[1] > maxSeen {
			maxSeen = snap[1]
		}
		acc.Reset()
	}
	assert.Equal(t, maxSeen, num-1)
	assert.Equal(t, bad.Load(), uint32(0))
}

func BenchmarkAccumulator(b *testing.B) {
	b.Run("Accum", func(b *testing.B) {
		acc := New[*intSum, int](new(intSum), new(intSum))
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			acc.Accum(1)
		}
	})

	b.Run("ReportReset", func(b *testing.B) {
		acc := New[*intSum, int](new(intSum), new(intSum))
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			acc.Accum(1)
			if _, ok := acc.Report(); ok {
				acc.Reset()
			}
		}
	})

	b.Run("Parallel", func(b *testing.B) {
		acc := New[*intSum, int](new(intSum), new(intSum))
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				default:
				}
				if _, ok := acc.Report(); ok {
					acc.Reset()
				}
			}
		}()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			acc.Accum(1)
		}
		close(done)
	})
}
