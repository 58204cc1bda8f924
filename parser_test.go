package vcdtrace

import (
	"testing"

	"github.com/readm/vcdtrace/resultbuf"
)

func indexContent(t *testing.T, p *Parser, content string) {
	t.Helper()
	p.BeginIndexing()
	if err := p.PushChunkForIndex([]byte(content), 0); err != nil {
		t.Fatalf("PushChunkForIndex: %v", err)
	}
	if err := p.FinishIndexing(); err != nil {
		t.Fatalf("FinishIndexing: %v", err)
	}
	if !p.IsOpen() {
		t.Fatalf("parser not open after FinishIndexing")
	}
}

func runQuery(t *testing.T, p *Parser, content string, tBegin, tEnd uint64, signals []int, px float64) resultbuf.Result {
	t.Helper()
	fileOffset, _, snapIdx, ok := p.GetQueryPlan(tBegin)
	if !ok {
		t.Fatalf("GetQueryPlan(%d): no plan", tBegin)
	}
	if err := p.BeginQuery(tBegin, tEnd, signals, snapIdx, px); err != nil {
		t.Fatalf("BeginQuery: %v", err)
	}
	if _, err := p.PushChunkForQuery([]byte(content)[fileOffset:]); err != nil {
		t.Fatalf("PushChunkForQuery: %v", err)
	}
	res, err := p.FlushQueryBinary()
	if err != nil {
		t.Fatalf("FlushQueryBinary: %v", err)
	}
	return res
}

// S1: header-only trace.
func TestHeaderOnlyTrace(t *testing.T) {
	const content = "$timescale 1ns $end\n" +
		"$scope module top $end\n" +
		"$var wire 1 ! clk $end\n" +
		"$upscope $end\n" +
		"$enddefinitions $end\n"

	p := New()
	indexContent(t, p, content)

	if p.SignalCount() != 1 {
		t.Fatalf("signal count = %d, want 1", p.SignalCount())
	}
	sigs := p.Signals()
	if sigs[0].FullPath != "top.clk" {
		t.Fatalf("full path = %q, want top.clk", sigs[0].FullPath)
	}
	ts := p.Timescale()
	if ts.Magnitude != 1 || ts.Unit != "ns" {
		t.Fatalf("timescale = %+v, want {1 ns}", ts)
	}
	begin, end := p.TimeRange()
	if begin != 0 || end != 0 {
		t.Fatalf("time range = (%d,%d), want (0,0)", begin, end)
	}
	if _, snapTime, snapIdx, ok := p.GetQueryPlan(0); !ok || snapTime != 0 || snapIdx != 0 {
		t.Fatalf("expected a single snapshot at time 0, got time=%d idx=%d ok=%v", snapTime, snapIdx, ok)
	}
}

// S2: minimal value changes, pixel_time_step disabled.
func TestMinimalValueChanges(t *testing.T) {
	const content = "$var wire 1 ! clk $end\n" +
		"$enddefinitions $end\n" +
		"#0 0!\n#10 1!\n#20 0!\n"

	p := New()
	indexContent(t, p, content)

	res := runQuery(t, p, content, 0, 20, []int{0}, -1)
	want := [][2]uint64{{0, 0}, {10, 1}, {20, 0}}
	if len(res.Transitions1Bit) != len(want) {
		t.Fatalf("got %d transitions, want %d: %+v", len(res.Transitions1Bit), len(want), res.Transitions1Bit)
	}
	for i, w := range want {
		got := res.Transitions1Bit[i]
		if got.Timestamp != w[0] || uint64(got.Value) != w[1] {
			t.Fatalf("entry %d: got (%d,%d), want (%d,%d)", i, got.Timestamp, got.Value, w[0], w[1])
		}
	}
	if len(res.TransitionsMultiBit) != 0 {
		t.Fatalf("expected no multi-bit transitions, got %d", len(res.TransitionsMultiBit))
	}
}

// S3: id-code aliasing fans out to every signal sharing the code.
func TestAliasFanout(t *testing.T) {
	const content = "$var wire 1 A clk $end\n" +
		"$var wire 1 A clk_copy $end\n" +
		"$enddefinitions $end\n" +
		"#0\n#5 1A\n"

	p := New()
	indexContent(t, p, content)

	res := runQuery(t, p, content, 0, 10, []int{0, 1}, -1)
	want := [][3]uint64{
		{0, 0, 2}, // (t, signal, value) — initial state is x (value 2)
		{0, 1, 2},
		{5, 0, 1},
		{5, 1, 1},
	}
	if len(res.Transitions1Bit) != len(want) {
		t.Fatalf("got %d transitions, want %d: %+v", len(res.Transitions1Bit), len(want), res.Transitions1Bit)
	}
	for i, w := range want {
		got := res.Transitions1Bit[i]
		if got.Timestamp != w[0] || uint64(got.SignalIndex) != w[1] || uint64(got.Value) != w[2] {
			t.Fatalf("entry %d: got (%d,%d,%d), want (%d,%d,%d)",
				i, got.Timestamp, got.SignalIndex, got.Value, w[0], w[1], w[2])
		}
	}
}

// S4: multi-bit value coalescing at the same timestamp.
func TestMultiBitSameTimestampCoalescing(t *testing.T) {
	const content = "$var wire 4 $ databus $end\n" +
		"$enddefinitions $end\n" +
		"#0 b0000 $\n#7 b0101 $\n#7 b0110 $\n"

	p := New()
	indexContent(t, p, content)

	res := runQuery(t, p, content, 0, 10, []int{0}, -1)
	if len(res.TransitionsMultiBit) != 2 {
		t.Fatalf("got %d multi-bit transitions, want 2: %+v", len(res.TransitionsMultiBit), res.TransitionsMultiBit)
	}
	last := res.TransitionsMultiBit[1]
	if last.Timestamp != 7 {
		t.Fatalf("last transition at t=%d, want 7", last.Timestamp)
	}
	if got := res.String(last); got != "0110" {
		t.Fatalf("last transition value = %q, want 0110", got)
	}
}

// S5: glitch collapsing with pixel_time_step = 100.
func TestGlitchCollapsingEndToEnd(t *testing.T) {
	const content = "$var wire 1 ! clk $end\n" +
		"$enddefinitions $end\n" +
		"#0 0!\n#5 1!\n#8 0!\n#12 1!\n#500 0!\n"

	p := New()
	indexContent(t, p, content)

	res := runQuery(t, p, content, 0, 500, []int{0}, 100)
	want := [][2]uint64{{0, 0}, {5, 4}, {12, 1}, {500, 0}}
	if len(res.Transitions1Bit) != len(want) {
		t.Fatalf("got %d transitions, want %d: %+v", len(res.Transitions1Bit), len(want), res.Transitions1Bit)
	}
	for i, w := range want {
		got := res.Transitions1Bit[i]
		if got.Timestamp != w[0] || uint64(got.Value) != w[1] {
			t.Fatalf("entry %d: got (%d,%d), want (%d,%d)", i, got.Timestamp, got.Value, w[0], w[1])
		}
	}
}

// Invariant 8: begin_indexing on an in-use parser fully resets state.
func TestIdempotentReopen(t *testing.T) {
	const first = "$var wire 1 ! a $end\n$var wire 1 @ b $end\n$enddefinitions $end\n#0 0!\n#10 1@\n"
	const second = "$var wire 1 ! solo $end\n$enddefinitions $end\n#0 0!\n"

	p := New()
	indexContent(t, p, first)
	if p.SignalCount() != 2 {
		t.Fatalf("first pass signal count = %d, want 2", p.SignalCount())
	}

	indexContent(t, p, second)
	if p.SignalCount() != 1 {
		t.Fatalf("second pass signal count = %d, want 1 (residue from first pass leaked)", p.SignalCount())
	}
	if p.Stats().UnknownIDCodeCount != 0 {
		t.Fatalf("stats carried over from first pass: %+v", p.Stats())
	}
	sigs := p.Signals()
	if sigs[0].FullPath != "solo" {
		t.Fatalf("full path = %q, want solo", sigs[0].FullPath)
	}
}

// Invariant 7: the first emitted transition's timestamp is
// max(t_begin, first_data_time), even when t_begin precedes the trace's
// own first timestamp.
func TestInitialStateBoundary(t *testing.T) {
	const content = "$var wire 1 ! clk $end\n$enddefinitions $end\n#50 0!\n#60 1!\n"

	p := New()
	indexContent(t, p, content)

	res := runQuery(t, p, content, 0, 60, []int{0}, -1)
	if len(res.Transitions1Bit) == 0 {
		t.Fatalf("expected at least one transition")
	}
	if res.Transitions1Bit[0].Timestamp != 50 {
		t.Fatalf("first transition at t=%d, want 50 (trace's first timestamp)", res.Transitions1Bit[0].Timestamp)
	}
}

// Recoverable errors (unknown id-code) are counted, never surfaced.
func TestUnknownIDCodeIsRecoverable(t *testing.T) {
	const content = "$var wire 1 ! clk $end\n$enddefinitions $end\n#0 1?\n"

	p := New()
	indexContent(t, p, content)
	if got := p.Stats().UnknownIDCodeCount; got != 1 {
		t.Fatalf("UnknownIDCodeCount = %d, want 1", got)
	}
}
