// Package vcdtrace implements a streaming VCD parser and a two-phase
// (index, then query) engine over it: indexing builds a sparse snapshot
// index in roughly constant memory regardless of file size; query restores
// state from the nearest preceding snapshot and replays only the bytes
// between it and the query window.
//
// The parser is a single owning handle with interior mutability, in the
// style of the teacher's Simulator: one instance serves one indexing or
// query operation at a time, and BeginIndexing on an in-use instance fully
// resets it rather than requiring a fresh allocation.
package vcdtrace

import (
	"bytes"
	"fmt"

	"github.com/readm/vcdtrace/format"
	"github.com/readm/vcdtrace/lod"
	"github.com/readm/vcdtrace/resultbuf"
	"github.com/readm/vcdtrace/snapshot"
	"github.com/readm/vcdtrace/statestore"
	"github.com/readm/vcdtrace/symtab"
)

var _ format.Trace = (*Parser)(nil)

type parseMode int

const (
	modeIndex parseMode = iota
	modeQuery
)

// Parser is the opaque two-phase VCD engine. Not safe for concurrent use;
// the bridge serializes calls into its one Parser with a mutex at the
// driver boundary, and each CLI command drives its own Parser from a
// single goroutine.
type Parser struct {
	phase  format.Phase
	isOpen bool

	sym       *symtab.Table
	store     *statestore.Store
	snapshots *snapshot.Index
	result    *resultbuf.Buffers
	lodFilter *lod.Filter

	leftover           []byte
	leftoverFileOffset int64

	lastSnapshotFileOffset int64
	haveSnapshot           bool

	currentTime        uint64
	tBegin             uint64
	tEnd               uint64
	haveFirstTimestamp bool

	dateStr    string
	versionStr string
	timescale  Timescale

	inDumpBlock bool

	// query-local state
	queryTBegin       uint64
	queryTEnd         uint64
	queriedSignals    []bool
	initialEmitted    bool
	done              bool
	pixelTimeStep     float64
	queryClockStarted bool

	unknownIDCodeCount  uint64
	unknownVarTypeCount uint64
	truncatedFileCount  uint64
	invalidQueryCount   uint64
}

// New returns an idle Parser ready for BeginIndexing.
func New() *Parser {
	p := &Parser{
		sym:       symtab.New(),
		snapshots: snapshot.NewIndex(),
		result:    resultbuf.New(),
	}
	p.lodFilter = lod.New(p.result)
	return p
}

// Kind reports the trace format this Parser reads.
func (p *Parser) Kind() format.Kind { return format.KindVCD }

// Phase reports the current pipeline phase.
func (p *Parser) Phase() format.Phase {
	if p == nil {
		return format.PhaseIdle
	}
	return p.phase
}

// IsOpen reports whether indexing has completed successfully.
func (p *Parser) IsOpen() bool {
	if p == nil {
		return false
	}
	return p.isOpen
}

// SignalCount returns the number of declared signals. Valid once the
// header has been sealed.
func (p *Parser) SignalCount() int {
	if p == nil {
		return 0
	}
	return p.sym.SignalCount()
}

// Signals returns every declared signal in declaration order.
func (p *Parser) Signals() []symtab.Signal {
	if p == nil {
		return nil
	}
	return p.sym.Signals()
}

// ScopeTree returns the root of the hierarchical scope tree.
func (p *Parser) ScopeTree() *symtab.ScopeNode {
	if p == nil {
		return nil
	}
	return p.sym.Root()
}

// Timescale returns the trace's declared (magnitude, unit) pair.
func (p *Parser) Timescale() Timescale {
	if p == nil {
		return Timescale{}
	}
	return p.timescale
}

// TimeRange returns the first and last timestamps seen during indexing.
func (p *Parser) TimeRange() (begin, end uint64) {
	if p == nil {
		return 0, 0
	}
	return p.tBegin, p.tEnd
}

// SnapshotCount returns the number of snapshots the index holds. Grounded
// on IWaveformParser::snapshot_count() in original_source/ — the count
// main.cpp prints as part of its "=== VCD File Info ===" block.
func (p *Parser) SnapshotCount() int {
	if p == nil {
		return 0
	}
	return p.snapshots.Len()
}

// BeginIndexing resets all state and starts a fresh indexing pass. Per
// spec.md §8 invariant 8, this is idempotent: no residue from a prior
// file influences the new index.
func (p *Parser) BeginIndexing() {
	if p == nil {
		return
	}
	p.phase = format.PhaseIndexing
	p.isOpen = false
	p.sym.Reset()
	p.store = nil
	p.snapshots.Reset()
	p.result.Reset()
	p.leftover = nil
	p.leftoverFileOffset = 0
	p.lastSnapshotFileOffset = 0
	p.haveSnapshot = false
	p.currentTime = 0
	p.tBegin = 0
	p.tEnd = 0
	p.haveFirstTimestamp = false
	p.dateStr = ""
	p.versionStr = ""
	p.timescale = Timescale{}
	p.inDumpBlock = false
	p.initialEmitted = false
	p.done = false
	p.unknownIDCodeCount = 0
	p.unknownVarTypeCount = 0
	p.truncatedFileCount = 0
	p.invalidQueryCount = 0
}

func (p *Parser) appendLeftover(chunk []byte) ([]byte, int64) {
	start := p.leftoverFileOffset
	combined := make([]byte, len(p.leftover)+len(chunk))
	n := copy(combined, p.leftover)
	copy(combined[n:], chunk)
	return combined, start
}

// consumeCombined finds the last newline in combined (spec.md §4.4's
// leftover invariant: only bytes up to it are guaranteed to hold complete
// tokens) and processes that prefix, saving the remainder as the new
// leftover.
func (p *Parser) consumeCombined(combined []byte, start int64, mode parseMode) error {
	lastNL := bytes.LastIndexByte(combined, '\n')
	if lastNL < 0 {
		p.leftover = combined
		p.leftoverFileOffset = start
		return nil
	}
	toProcess := combined[:lastNL+1]
	rest := make([]byte, len(combined)-lastNL-1)
	copy(rest, combined[lastNL+1:])
	p.leftover = rest
	p.leftoverFileOffset = start + int64(len(toProcess))
	return p.processTokens(toProcess, start, mode)
}

// PushChunkForIndex feeds a byte chunk beginning at the trace's absolute
// fileOffset into the indexing pipeline.
func (p *Parser) PushChunkForIndex(chunk []byte, fileOffset int64) error {
	if p == nil {
		return ErrWrongPhase
	}
	if p.phase != format.PhaseIndexing {
		return fmt.Errorf("%w: BeginIndexing not active", ErrWrongPhase)
	}
	if len(chunk) == 0 {
		return nil
	}
	if len(p.leftover) == 0 {
		p.leftoverFileOffset = fileOffset
	}
	combined, start := p.appendLeftover(chunk)
	if err := p.consumeCombined(combined, start, modeIndex); err != nil {
		p.isOpen = false
		return err
	}
	return nil
}

// FinishIndexing drains any residual leftover, ensures a final snapshot
// covers the trace's last timestamp, and transitions to Idle/open.
func (p *Parser) FinishIndexing() error {
	if p == nil {
		return ErrWrongPhase
	}
	if p.phase != format.PhaseIndexing {
		return fmt.Errorf("%w: BeginIndexing not active", ErrWrongPhase)
	}
	if len(p.leftover) > 0 {
		if err := p.processTokens(p.leftover, p.leftoverFileOffset, modeIndex); err != nil {
			p.isOpen = false
			return err
		}
		p.leftoverFileOffset += int64(len(p.leftover))
		p.leftover = nil
		p.truncatedFileCount++
	}
	if p.store == nil || !p.sym.Sealed() {
		p.isOpen = false
		return fmt.Errorf("%w: $enddefinitions never seen", ErrMalformedHeader)
	}
	if last, ok := p.snapshots.Last(); !ok || last.Time < p.currentTime {
		p.snapshots.Append(snapshot.Snapshot{
			Time:       p.currentTime,
			FileOffset: p.leftoverFileOffset,
			State:      p.store.Clone(),
		})
	}
	p.phase = format.PhaseIdle
	p.isOpen = true
	return nil
}

// GetQueryPlan returns the snapshot a driver should seek to in order to
// begin a query starting at t, and that snapshot's index for BeginQuery.
func (p *Parser) GetQueryPlan(t uint64) (fileOffset int64, snapshotTime uint64, snapshotIndex int, ok bool) {
	if p == nil || !p.isOpen {
		return 0, 0, 0, false
	}
	idx, ok := p.snapshots.Lookup(t)
	if !ok {
		return 0, 0, 0, false
	}
	snap, _ := p.snapshots.At(idx)
	return snap.FileOffset, snap.Time, idx, true
}

// BeginQuery restores state from the named snapshot and prepares the
// engine to replay forward. t_end < t_begin and an out-of-range
// snapshotIndex are InvalidQuery conditions: clamped and counted, never
// returned as an error, per spec.md §7.
func (p *Parser) BeginQuery(tBegin, tEnd uint64, signalIndices []int, snapshotIndex int, pixelTimeStep float64) error {
	if p == nil {
		return ErrWrongPhase
	}
	if !p.isOpen {
		return fmt.Errorf("%w: index not open", ErrWrongPhase)
	}
	if tEnd < tBegin {
		p.invalidQueryCount++
		tEnd = tBegin
	}
	clamped := p.snapshots.ClampSnapshotIndex(snapshotIndex)
	if clamped != snapshotIndex {
		p.invalidQueryCount++
	}
	snap, ok := p.snapshots.At(clamped)
	if !ok {
		return fmt.Errorf("vcdtrace: no snapshots available")
	}

	if p.store == nil {
		p.store = statestore.New(p.sym.NumBit1(), p.sym.NumMultiBit())
	}
	p.store.CopyFrom(snap.State)
	p.currentTime = snap.Time

	p.result.Reset()
	p.leftover = nil
	p.leftoverFileOffset = snap.FileOffset
	p.inDumpBlock = false

	n := p.sym.SignalCount()
	if cap(p.queriedSignals) >= n {
		p.queriedSignals = p.queriedSignals[:n]
		for i := range p.queriedSignals {
			p.queriedSignals[i] = false
		}
	} else {
		p.queriedSignals = make([]bool, n)
	}
	for _, idx := range signalIndices {
		if idx >= 0 && idx < n {
			p.queriedSignals[idx] = true
		}
	}

	p.queryTBegin = tBegin
	p.queryTEnd = tEnd
	p.pixelTimeStep = pixelTimeStep
	p.initialEmitted = false
	p.done = false
	p.queryClockStarted = false
	p.phase = format.PhaseQuery
	p.lodFilter.Prime(n, pixelTimeStep)
	return nil
}

// PushChunkForQuery feeds the next sequential bytes of a query's replay
// range. It returns false once the query is done, so the caller may stop
// reading.
func (p *Parser) PushChunkForQuery(chunk []byte) (bool, error) {
	if p == nil {
		return false, ErrWrongPhase
	}
	if p.phase != format.PhaseQuery {
		return false, fmt.Errorf("%w: BeginQuery not active", ErrWrongPhase)
	}
	if p.done {
		return false, nil
	}
	if len(chunk) == 0 {
		return !p.done, nil
	}
	combined, start := p.appendLeftover(chunk)
	if err := p.consumeCombined(combined, start, modeQuery); err != nil {
		return false, err
	}
	return !p.done, nil
}

// FlushQueryBinary drains any residual leftover, guarantees the initial
// boundary transition has been emitted, closes any still-open glitch
// runs, and returns the accumulated result spans.
func (p *Parser) FlushQueryBinary() (resultbuf.Result, error) {
	if p == nil {
		return resultbuf.Result{}, ErrWrongPhase
	}
	if p.phase != format.PhaseQuery {
		return resultbuf.Result{}, fmt.Errorf("%w: BeginQuery not active", ErrWrongPhase)
	}
	if !p.done && len(p.leftover) > 0 {
		if err := p.processTokens(p.leftover, p.leftoverFileOffset, modeQuery); err != nil {
			return resultbuf.Result{}, err
		}
		p.leftoverFileOffset += int64(len(p.leftover))
		p.leftover = nil
	}
	if !p.initialEmitted {
		p.emitInitialState(p.initialEmitTime())
	}
	p.lodFilter.FlushGlitches()
	p.phase = format.PhaseIdle
	p.done = true
	return p.result.Result(), nil
}

// CancelQuery marks the in-flight query done; a following FlushQueryBinary
// returns whatever was accumulated so far.
func (p *Parser) CancelQuery() {
	if p == nil {
		return
	}
	p.done = true
}
