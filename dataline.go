package vcdtrace

import (
	"fmt"
	"strconv"

	"github.com/readm/vcdtrace/resultbuf"
	"github.com/readm/vcdtrace/scanner"
	"github.com/readm/vcdtrace/snapshot"
	"github.com/readm/vcdtrace/statestore"
)

// processTokens walks buf (the newline-bounded prefix of the combined
// leftover+chunk buffer) as a continuous whitespace-delimited token
// stream, dispatching each token by its leading byte. base is the
// absolute file offset of buf[0].
//
// $dump* blocks are resumable across chunk boundaries because inDumpBlock
// is persisted on the Parser. Header directives are not: one whose tokens
// up to $end do not all lie within buf is parsed from the tokens present
// in buf only.
func (p *Parser) processTokens(buf []byte, base int64, mode parseMode) error {
	sc := scanner.New(buf)
	for {
		sc.SkipWhitespace()
		startPos := sc.Pos()
		tok, ok := sc.NextToken()
		if !ok {
			break
		}
		offset := base + int64(startPos)

		if p.inDumpBlock {
			if string(tok) == "$end" {
				p.inDumpBlock = false
				continue
			}
			// A $dump* block before the query's clock has started is the
			// initial-state fixup (spec.md §4.4 item 2) and never recorded
			// as a transition; one appearing after #<time> lines have begun
			// is a real mid-trace event and is recorded like any other
			// value change. Matches original_source/src/vcd_parser.cpp's
			// unconditional dump-block recording, whose own time-0 fixup
			// this repository achieves via the LOD filter's priming gate
			// instead of a post-pass rewrite.
			record := mode == modeQuery && p.queryClockStarted
			p.applyValueChangeToken(tok, sc, record)
			continue
		}

		if err := p.dispatchToken(sc, tok, offset, mode); err != nil {
			return err
		}
		if mode == modeQuery && p.done {
			break
		}
	}
	return nil
}

func (p *Parser) dispatchToken(sc *scanner.Scanner, tok []byte, offset int64, mode parseMode) error {
	if len(tok) == 0 {
		return nil
	}
	switch tok[0] {
	case '$':
		return p.handleDirective(sc, string(tok))
	case '#':
		return p.handleTimestamp(tok[1:], offset, mode)
	case '0', '1', 'x', 'X', 'z', 'Z', 'b', 'B', 'r', 'R':
		p.applyValueChangeToken(tok, sc, mode == modeQuery)
		return nil
	default:
		// Line matching none of the recognized leading bytes: skipped per
		// spec.md §4.8's tolerant failure semantics.
		sc.SkipLine()
		return nil
	}
}

// handleTimestamp implements spec.md §4.4 data handler (1). During
// indexing it tracks t_begin/t_end and appends snapshots at the target
// byte interval; during query it emits the synthetic initial-state
// transition on the first timestamp >= t_begin and flips done once
// current_time exceeds t_end.
func (p *Parser) handleTimestamp(raw []byte, offset int64, mode parseMode) error {
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}
	if p.store == nil {
		// Timestamp before $enddefinitions: malformed input, tolerated by
		// ignoring it rather than failing the whole chunk.
		return nil
	}

	switch mode {
	case modeIndex:
		if !p.haveFirstTimestamp {
			p.tBegin = n
			p.haveFirstTimestamp = true
		}
		if !p.haveSnapshot || offset-p.lastSnapshotFileOffset >= snapshot.Interval {
			p.snapshots.Append(snapshot.Snapshot{
				Time:       p.currentTime,
				FileOffset: offset,
				State:      p.store.Clone(),
			})
			p.lastSnapshotFileOffset = offset
			p.haveSnapshot = true
		}
		p.currentTime = n
		p.tEnd = n

	case modeQuery:
		if !p.initialEmitted && n >= p.queryTBegin {
			p.emitInitialState(p.initialEmitTime())
			p.initialEmitted = true
		}
		p.currentTime = n
		p.queryClockStarted = true
		if n > p.queryTEnd {
			p.done = true
		}
	}
	return nil
}

// initialEmitTime is spec.md §8 invariant 7's max(t_begin, first_data_time):
// if the query's requested start precedes the trace's own first
// timestamp, the left edge the renderer can actually show is the trace's
// first timestamp, not an earlier time nothing happened at.
func (p *Parser) initialEmitTime() uint64 {
	if p.tBegin > p.queryTBegin {
		return p.tBegin
	}
	return p.queryTBegin
}

// emitInitialState gives every subset signal a defined left edge at t,
// per spec.md §4.7's emit_initial_state.
func (p *Parser) emitInitialState(t uint64) {
	for sigIdx, want := range p.queriedSignals {
		if !want {
			continue
		}
		sig, ok := p.sym.Signal(sigIdx)
		if !ok {
			continue
		}
		if sig.Width == 1 {
			val := p.store.Get(sig.BitIndex)
			p.lodFilter.EmitInitial1Bit(t, uint32(sigIdx), resultbuf.Value1Bit(val))
		} else {
			s := p.store.GetString(sig.StrIndex)
			p.lodFilter.EmitInitialMultiBit(t, uint32(sigIdx), []byte(s))
		}
	}
}

// applyValueChangeToken handles the two value-change token shapes from
// spec.md §4.4 data handler (3): a single logic character fused with its
// id-code ("0!"), or a b/B/r/R prefix whose bit-string/real token is this
// token and whose id-code is the next whitespace-delimited token.
func (p *Parser) applyValueChangeToken(tok []byte, sc *scanner.Scanner, record bool) {
	if len(tok) == 0 {
		return
	}
	switch tok[0] {
	case '0', '1', 'x', 'X', 'z', 'Z':
		if len(tok) < 2 {
			return
		}
		val, ok := statestore.ParseVal2(tok[0])
		if !ok {
			return
		}
		p.applyBitChange(string(tok[1:]), val, record)
	case 'b', 'B', 'r', 'R':
		idTok, ok := sc.NextToken()
		if !ok {
			return
		}
		p.applyMultiBitChange(string(idTok), tok[1:], record)
	}
}

func (p *Parser) applyBitChange(idCode string, val statestore.Val2, record bool) {
	ids := p.sym.LookupByID(idCode)
	if len(ids) == 0 {
		p.unknownIDCodeCount++
		return
	}
	for _, sigIdx := range ids {
		sig, ok := p.sym.Signal(sigIdx)
		if !ok || sig.BitIndex < 0 {
			continue
		}
		p.store.Set(sig.BitIndex, val)
		if record && sigIdx < len(p.queriedSignals) && p.queriedSignals[sigIdx] {
			p.lodFilter.OnBitChange(p.currentTime, uint32(sigIdx), resultbuf.Value1Bit(val))
		}
	}
}

func (p *Parser) applyMultiBitChange(idCode string, bits []byte, record bool) {
	ids := p.sym.LookupByID(idCode)
	if len(ids) == 0 {
		p.unknownIDCodeCount++
		return
	}
	for _, sigIdx := range ids {
		sig, ok := p.sym.Signal(sigIdx)
		if !ok || sig.StrIndex < 0 {
			continue
		}
		p.store.SetString(sig.StrIndex, bits)
		if record && sigIdx < len(p.queriedSignals) && p.queriedSignals[sigIdx] {
			p.lodFilter.OnMultiBitChange(p.currentTime, uint32(sigIdx), bits)
		}
	}
}
