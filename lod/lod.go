// Package lod implements the query-time level-of-detail filter: it
// collapses consecutive transitions on the same signal whose inter-arrival
// is below pixel_time_step into a single GLITCH marker, bounding result
// size to O(signals x pixels) regardless of trace activity.
//
// The collapsing rules are spec'd narratively; the disambiguating choice
// made here (recorded in DESIGN.md) is that, once a glitch run is open,
// "differs from the shadow" is evaluated against the most recent swallowed
// value (glitch_end_value), not the pre-glitch shadow — otherwise a
// sub-pixel run that happens to revisit its starting value would close
// prematurely instead of continuing to collapse.
package lod

import "github.com/readm/vcdtrace/resultbuf"

const undefinedTime = -1

type sigState struct {
	lastEmittedTime     int64
	lastTransitionTime  int64
	isGlitch            bool
	shadowBit           resultbuf.Value1Bit
	glitchEndBit        resultbuf.Value1Bit
	shadowMulti         []byte
	glitchEndMulti      []byte
	lastEmittedBitIdx   int
	lastEmittedMultiIdx int
	isMultiBit          bool
	primed              bool
}

// Filter holds the per-signal bookkeeping for one query. It is reused
// across queries via Prime, which resizes and resets it.
type Filter struct {
	buf           *resultbuf.Buffers
	pixelTimeStep float64
	states        []sigState
}

// New creates an LOD filter writing into buf.
func New(buf *resultbuf.Buffers) *Filter {
	return &Filter{buf: buf}
}

// Prime resets the filter for a new query over numSignals signals.
// pixelTimeStep < 0 disables sub-pixel glitch detection; same-timestamp
// coalescing (spec.md §4.6 rule 1) is unconditional and always applies.
func (f *Filter) Prime(numSignals int, pixelTimeStep float64) {
	if f == nil {
		return
	}
	f.pixelTimeStep = pixelTimeStep
	if cap(f.states) >= numSignals {
		f.states = f.states[:numSignals]
	} else {
		f.states = make([]sigState, numSignals)
	}
	for i := range f.states {
		f.states[i] = sigState{lastEmittedTime: undefinedTime, lastTransitionTime: undefinedTime}
	}
}

func (f *Filter) state(signalIndex uint32) *sigState {
	if f == nil || int(signalIndex) >= len(f.states) {
		return nil
	}
	return &f.states[signalIndex]
}

// EmitInitial1Bit records the synthetic left-edge transition every subset
// signal receives at t_begin (spec.md §4.7), seeding the bookkeeping so a
// same-timestamp value change that follows can coalesce into it.
func (f *Filter) EmitInitial1Bit(t uint64, signalIndex uint32, val resultbuf.Value1Bit) {
	st := f.state(signalIndex)
	if st == nil {
		return
	}
	idx := f.buf.PushBit(t, signalIndex, val)
	st.lastEmittedTime = int64(t)
	st.lastTransitionTime = int64(t)
	st.shadowBit = val
	st.lastEmittedBitIdx = idx
	st.isMultiBit = false
	st.primed = true
}

// EmitInitialMultiBit is EmitInitial1Bit's multi-bit counterpart.
func (f *Filter) EmitInitialMultiBit(t uint64, signalIndex uint32, val []byte) {
	st := f.state(signalIndex)
	if st == nil {
		return
	}
	idx := f.buf.PushMultiBit(t, signalIndex, val)
	st.lastEmittedTime = int64(t)
	st.lastTransitionTime = int64(t)
	st.shadowMulti = append(st.shadowMulti[:0], val...)
	st.lastEmittedMultiIdx = idx
	st.isMultiBit = true
	st.primed = true
}

// OnBitChange applies the LOD algorithm to a 1-bit value change.
func (f *Filter) OnBitChange(t uint64, signalIndex uint32, v resultbuf.Value1Bit) {
	st := f.state(signalIndex)
	if st == nil || !st.primed {
		return
	}
	ts := int64(t)

	// Rule 1: same-timestamp coalescing. While a glitch run is open the
	// last emitted entry is its marker, which is kept; the new value
	// becomes the run's closing value instead.
	if ts == st.lastEmittedTime {
		if st.isGlitch {
			st.glitchEndBit = v
		} else {
			f.buf.SetBitValue(st.lastEmittedBitIdx, v)
			st.shadowBit = v
		}
		st.lastTransitionTime = ts
		return
	}

	baseline := st.shadowBit
	if st.isGlitch {
		baseline = st.glitchEndBit
	}

	// Rule 2: sub-pixel (glitch) detection / continuation.
	if f.pixelTimeStep >= 0 && st.lastTransitionTime != undefinedTime &&
		float64(ts-st.lastTransitionTime) < f.pixelTimeStep && v != baseline {
		if !st.isGlitch {
			idx := f.buf.PushBit(t, signalIndex, resultbuf.ValueGlitch)
			st.lastEmittedTime = ts
			st.lastEmittedBitIdx = idx
			st.isGlitch = true
		}
		st.glitchEndBit = v
		st.lastTransitionTime = ts
		return
	}

	// Rule 3: normal transition / glitch closure.
	if v != st.shadowBit || st.isGlitch {
		if st.isGlitch {
			idx := f.buf.PushBit(uint64(st.lastTransitionTime), signalIndex, st.glitchEndBit)
			st.lastEmittedTime = st.lastTransitionTime
			st.lastEmittedBitIdx = idx
			st.shadowBit = st.glitchEndBit
			st.isGlitch = false
		}
		if v != st.shadowBit {
			idx := f.buf.PushBit(t, signalIndex, v)
			st.lastEmittedTime = ts
			st.lastEmittedBitIdx = idx
			st.shadowBit = v
		}
	}
	st.lastTransitionTime = ts
}

// OnMultiBitChange applies the LOD algorithm to a multi-bit value change.
func (f *Filter) OnMultiBitChange(t uint64, signalIndex uint32, v []byte) {
	st := f.state(signalIndex)
	if st == nil || !st.primed {
		return
	}
	ts := int64(t)

	if ts == st.lastEmittedTime {
		if st.isGlitch {
			st.glitchEndMulti = append(st.glitchEndMulti[:0], v...)
		} else {
			f.buf.OverwriteMultiBit(st.lastEmittedMultiIdx, v)
			st.shadowMulti = append(st.shadowMulti[:0], v...)
		}
		st.lastTransitionTime = ts
		return
	}

	baseline := st.shadowMulti
	if st.isGlitch {
		baseline = st.glitchEndMulti
	}

	if f.pixelTimeStep >= 0 && st.lastTransitionTime != undefinedTime &&
		float64(ts-st.lastTransitionTime) < f.pixelTimeStep && !bytesEqual(v, baseline) {
		if !st.isGlitch {
			idx := f.buf.PushMultiBitGlitch(t, signalIndex)
			st.lastEmittedTime = ts
			st.lastEmittedMultiIdx = idx
			st.isGlitch = true
		}
		st.glitchEndMulti = append(st.glitchEndMulti[:0], v...)
		st.lastTransitionTime = ts
		return
	}

	if !bytesEqual(v, st.shadowMulti) || st.isGlitch {
		if st.isGlitch {
			idx := f.buf.PushMultiBit(uint64(st.lastTransitionTime), signalIndex, st.glitchEndMulti)
			st.lastEmittedTime = st.lastTransitionTime
			st.lastEmittedMultiIdx = idx
			st.shadowMulti = append(st.shadowMulti[:0], st.glitchEndMulti...)
			st.isGlitch = false
		}
		if !bytesEqual(v, st.shadowMulti) {
			idx := f.buf.PushMultiBit(t, signalIndex, v)
			st.lastEmittedTime = ts
			st.lastEmittedMultiIdx = idx
			st.shadowMulti = append(st.shadowMulti[:0], v...)
		}
	}
	st.lastTransitionTime = ts
}

// FlushGlitches closes any still-open glitch runs at end of query, emitting
// the actual current value at each signal's last transition time.
func (f *Filter) FlushGlitches() {
	if f == nil {
		return
	}
	for i := range f.states {
		st := &f.states[i]
		if !st.primed || !st.isGlitch {
			continue
		}
		if st.isMultiBit {
			idx := f.buf.PushMultiBit(uint64(st.lastTransitionTime), uint32(i), st.glitchEndMulti)
			st.lastEmittedMultiIdx = idx
			st.shadowMulti = append(st.shadowMulti[:0], st.glitchEndMulti...)
		} else {
			idx := f.buf.PushBit(uint64(st.lastTransitionTime), uint32(i), st.glitchEndBit)
			st.lastEmittedBitIdx = idx
			st.shadowBit = st.glitchEndBit
		}
		st.lastEmittedTime = st.lastTransitionTime
		st.isGlitch = false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
