// Package format declares the capability set shared by every trace reader
// this project can host, and the tagged variant used to pick one.
//
// The VCD reader (package vcdtrace) is the only implementation in this
// repository. An FST adapter — a thin wrapper over a third-party binary
// decoder — would satisfy the same Trace interface without touching the
// core; it is intentionally not implemented here.
package format

import "github.com/readm/vcdtrace/resultbuf"

// Kind identifies which on-disk trace format a Trace implementation reads.
type Kind int

const (
	// KindVCD selects the text Value Change Dump reader.
	KindVCD Kind = iota
	// KindFST selects a binary Fast Signal Trace reader. No implementation
	// ships in this repository; the constant exists so callers can
	// recognize the capability is format-agnostic.
	KindFST
)

func (k Kind) String() string {
	switch k {
	case KindVCD:
		return "vcd"
	case KindFST:
		return "fst"
	default:
		return "unknown"
	}
}

// Phase is the two-phase pipeline state a Trace implementation is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseIndexing
	PhaseQuery
)

// Trace is the capability set a host (CLI, bridge, FST adapter) needs from
// any trace reader: metadata accessors plus the two-phase indexing/query
// pipeline. *vcdtrace.Parser implements this interface.
type Trace interface {
	Kind() Kind
	Phase() Phase
	IsOpen() bool

	BeginIndexing()
	PushChunkForIndex(chunk []byte, fileOffset int64) error
	FinishIndexing() error

	GetQueryPlan(t uint64) (fileOffset int64, snapshotTime uint64, snapshotIndex int, ok bool)
	BeginQuery(tBegin, tEnd uint64, signalIndices []int, snapshotIndex int, pixelTimeStep float64) error
	PushChunkForQuery(chunk []byte) (bool, error)
	FlushQueryBinary() (resultbuf.Result, error)
	CancelQuery()

	SignalCount() int
}
