// Package resultbuf holds the query-local, 8-byte-aligned result arrays a
// query fills and hands back to its caller: two packed transition arrays
// and a contiguous string pool they index into.
//
// Buffers are owned by the caller of this package (the query engine in
// package vcdtrace) and reused across queries via Reset, so that a long
// viewing session does not allocate per query.
package resultbuf

// Value1Bit is the decoded value carried by a Transition1Bit.
type Value1Bit uint8

const (
	Value0 Value1Bit = 0
	Value1 Value1Bit = 1
	ValueX Value1Bit = 2
	ValueZ Value1Bit = 3
	// ValueGlitch marks a collapsed run of sub-pixel transitions.
	ValueGlitch Value1Bit = 4
)

// Transition1Bit is a single packed 1-bit value change. It is 16 bytes,
// naturally 8-byte aligned, so a host runtime can expose the backing
// slice directly as a typed array.
type Transition1Bit struct {
	Timestamp   uint64
	SignalIndex uint32
	Value       uint8
	_           [3]byte
}

// TransitionMultiBit is a single packed multi-bit value change. The value
// itself lives in the query's string pool at [StringOffset,
// StringOffset+StringLength). It is 24 bytes, naturally 8-byte aligned.
type TransitionMultiBit struct {
	Timestamp    uint64
	SignalIndex  uint32
	StringOffset uint32
	StringLength uint32
	_            uint32
}

// glitchLiteral is interned once per query and reused via its stored
// offset (spec.md §9 "Glitch string sharing").
const glitchLiteral = "GLITCH"

// Buffers owns the result arrays for one query. It is reused across
// queries by calling Reset between them.
type Buffers struct {
	bit   []Transition1Bit
	multi []TransitionMultiBit
	pool  []byte

	glitchOffset   uint32
	glitchLength   uint32
	glitchInterned bool
}

// New returns an empty, ready-to-use Buffers.
func New() *Buffers {
	return &Buffers{}
}

// Reset clears all three result spans in place, preserving the
// underlying arrays' capacity so queries do not re-allocate.
func (b *Buffers) Reset() {
	if b == nil {
		return
	}
	b.bit = b.bit[:0]
	b.multi = b.multi[:0]
	b.pool = b.pool[:0]
	b.glitchInterned = false
	b.glitchOffset = 0
	b.glitchLength = 0
}

// PushBit appends a 1-bit transition and returns its index, so the LOD
// filter can retroactively overwrite its value (same-timestamp
// coalescing).
func (b *Buffers) PushBit(ts uint64, signalIndex uint32, val Value1Bit) int {
	if b == nil {
		return -1
	}
	b.bit = append(b.bit, Transition1Bit{Timestamp: ts, SignalIndex: signalIndex, Value: uint8(val)})
	return len(b.bit) - 1
}

// NumBit returns the number of 1-bit transitions recorded so far.
func (b *Buffers) NumBit() int {
	if b == nil {
		return 0
	}
	return len(b.bit)
}

// Bit returns the 1-bit transition at i.
func (b *Buffers) Bit(i int) Transition1Bit {
	if b == nil || i < 0 || i >= len(b.bit) {
		return Transition1Bit{}
	}
	return b.bit[i]
}

// SetBitValue retroactively overwrites the value of an already-pushed
// 1-bit transition, used by the LOD filter for same-timestamp coalescing.
func (b *Buffers) SetBitValue(i int, val Value1Bit) {
	if b == nil || i < 0 || i >= len(b.bit) {
		return
	}
	b.bit[i].Value = uint8(val)
}

// internString copies data into the pool and returns its span. Identical
// calls are not deduplicated in general — only the GLITCH literal is,
// via internGlitchLiteral.
func (b *Buffers) internString(data []byte) (offset, length uint32) {
	offset = uint32(len(b.pool))
	b.pool = append(b.pool, data...)
	length = uint32(len(data))
	return offset, length
}

// PushMultiBit appends a multi-bit transition whose value is copied into
// the string pool.
func (b *Buffers) PushMultiBit(ts uint64, signalIndex uint32, data []byte) int {
	if b == nil {
		return -1
	}
	off, length := b.internString(data)
	b.multi = append(b.multi, TransitionMultiBit{
		Timestamp:    ts,
		SignalIndex:  signalIndex,
		StringOffset: off,
		StringLength: length,
	})
	return len(b.multi) - 1
}

// internGlitchLiteral writes the "GLITCH" literal into the pool at most
// once per query and returns its span on every call.
func (b *Buffers) internGlitchLiteral() (offset, length uint32) {
	if b.glitchInterned {
		return b.glitchOffset, b.glitchLength
	}
	b.glitchOffset, b.glitchLength = b.internString([]byte(glitchLiteral))
	b.glitchInterned = true
	return b.glitchOffset, b.glitchLength
}

// PushMultiBitGlitch appends a multi-bit transition carrying the shared
// "GLITCH" literal.
func (b *Buffers) PushMultiBitGlitch(ts uint64, signalIndex uint32) int {
	if b == nil {
		return -1
	}
	off, length := b.internGlitchLiteral()
	b.multi = append(b.multi, TransitionMultiBit{
		Timestamp:    ts,
		SignalIndex:  signalIndex,
		StringOffset: off,
		StringLength: length,
	})
	return len(b.multi) - 1
}

// NumMultiBit returns the number of multi-bit transitions recorded so far.
func (b *Buffers) NumMultiBit() int {
	if b == nil {
		return 0
	}
	return len(b.multi)
}

// MultiBit returns the multi-bit transition at i.
func (b *Buffers) MultiBit(i int) TransitionMultiBit {
	if b == nil || i < 0 || i >= len(b.multi) {
		return TransitionMultiBit{}
	}
	return b.multi[i]
}

// Result is the QueryResultBinary: an immutable-by-convention view over
// Buffers' backing arrays, valid until the next Reset or destruction.
type Result struct {
	Transitions1Bit     []Transition1Bit
	TransitionsMultiBit []TransitionMultiBit
	StringPool          []byte
}

// Result returns the current spans as a QueryResultBinary. The returned
// slices alias b's backing arrays — callers must treat them as borrowed.
func (b *Buffers) Result() Result {
	if b == nil {
		return Result{}
	}
	return Result{
		Transitions1Bit:     b.bit,
		TransitionsMultiBit: b.multi,
		StringPool:          b.pool,
	}
}

// String returns the pool bytes spanning a TransitionMultiBit's value.
func (r Result) String(t TransitionMultiBit) string {
	end := t.StringOffset + t.StringLength
	if int(end) > len(r.StringPool) {
		return ""
	}
	return string(r.StringPool[t.StringOffset:end])
}
