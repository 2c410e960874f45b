// Package ubend implements a fixed-capacity circular buffer of float64
// values, used as the storage backing for a streaming excess-over-threshold
// window.
package ubend

// Buffer is a fixed-capacity ring of float64. Once full, each push evicts
// the oldest live value. Buffer is not safe for concurrent use.
type Buffer struct {
	data   []float64
	cursor int
	filled bool
}

// New allocates a Buffer with the given capacity. It panics if capacity is
// zero, since that is a construction contract violation a caller can
// trivially avoid.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("ubend: capacity must be positive")
	}
	return &Buffer{data: make([]float64, capacity)}
}

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Len returns the number of currently live values: min(pushes so far, Cap()).
func (b *Buffer) Len() int {
	if b.filled {
		return len(b.data)
	}
	return b.cursor
}

// Push writes x at the current cursor position, advances the cursor modulo
// capacity, and returns the value that was evicted along with true. evicted
// is only meaningful (and ok is only true) once the buffer has filled at
// least once; before that, Push returns (0, false).
func (b *Buffer) Push(x float64) (evicted float64, ok bool) {
	if b.filled {
		evicted, ok = b.data[b.cursor], true
	}
	b.data[b.cursor] = x
	b.cursor++
	if b.cursor == len(b.data) {
		b.cursor = 0
		b.filled = true
	}
	return evicted, ok
}

// Each calls fn once for every live value, in storage order. Order is not
// meaningful to callers that only aggregate sum/sum-of-squares/min, but is
// kept deterministic for tests and for Scan-style callers that need a
// reproducible pass.
func (b *Buffer) Each(fn func(float64)) {
	n := b.Len()
	if !b.filled {
		for i := 0; i < n; i++ {
			fn(b.data[i])
		}
		return
	}
	for i := 0; i < n; i++ {
		fn(b.data[(b.cursor+i)%len(b.data)])
	}
}

// Slice returns a freshly allocated copy of the live values, in storage
// order, for callers where a plain slice is more convenient than Each's
// callback form.
func (b *Buffer) Slice() []float64 {
	out := make([]float64, 0, b.Len())
	b.Each(func(x float64) { out = append(out, x) })
	return out
}

// Snapshot is the plain-field persisted form of a Buffer, matching spec.md
// §6's persistence contract: any serializer capturing these fields restores
// behavior exactly.
type Snapshot struct {
	Capacity int
	Cursor   int
	Filled   bool
	Data     []float64
}

// Snapshot captures the buffer's current plain-field state.
func (b *Buffer) Snapshot() Snapshot {
	data := make([]float64, len(b.data))
	copy(data, b.data)
	return Snapshot{
		Capacity: len(b.data),
		Cursor:   b.cursor,
		Filled:   b.filled,
		Data:     data,
	}
}

// FromSnapshot restores a Buffer previously captured by Snapshot.
func FromSnapshot(snap Snapshot) *Buffer {
	data := make([]float64, snap.Capacity)
	copy(data, snap.Data)
	return &Buffer{data: data, cursor: snap.Cursor, filled: snap.Filled}
}
