package lod

import (
	"testing"

	"github.com/readm/vcdtrace/resultbuf"
)

func bitsOf(res resultbuf.Result) [][2]uint64 {
	out := make([][2]uint64, len(res.Transitions1Bit))
	for i, t := range res.Transitions1Bit {
		out[i] = [2]uint64{t.Timestamp, uint64(t.Value)}
	}
	return out
}

func TestGlitchCollapsing(t *testing.T) {
	buf := resultbuf.New()
	f := New(buf)
	f.Prime(1, 100)

	f.EmitInitial1Bit(0, 0, resultbuf.ValueX)
	f.OnBitChange(0, 0, resultbuf.Value0)
	f.OnBitChange(5, 0, resultbuf.Value1)
	f.OnBitChange(8, 0, resultbuf.Value0)
	f.OnBitChange(12, 0, resultbuf.Value1)
	f.OnBitChange(500, 0, resultbuf.Value0)
	f.FlushGlitches()

	got := bitsOf(buf.Result())
	want := [][2]uint64{{0, 0}, {5, 4}, {12, 1}, {500, 0}}
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestNoGlitchWhenPixelStepDisabled(t *testing.T) {
	buf := resultbuf.New()
	f := New(buf)
	f.Prime(1, -1)

	f.EmitInitial1Bit(0, 0, resultbuf.ValueX)
	f.OnBitChange(0, 0, resultbuf.Value0)
	f.OnBitChange(10, 0, resultbuf.Value1)
	f.OnBitChange(20, 0, resultbuf.Value0)
	f.FlushGlitches()

	got := bitsOf(buf.Result())
	want := [][2]uint64{{0, 0}, {10, 1}, {20, 0}}
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSameTimestampCoalescing(t *testing.T) {
	buf := resultbuf.New()
	f := New(buf)
	f.Prime(1, 5)

	f.EmitInitialMultiBit(0, 0, []byte("0000"))
	f.OnMultiBitChange(7, 0, []byte("0101"))
	f.OnMultiBitChange(7, 0, []byte("0110"))
	f.FlushGlitches()

	res := buf.Result()
	if buf.NumMultiBit() != 2 {
		t.Fatalf("expected 2 transitions (initial + coalesced), got %d", buf.NumMultiBit())
	}
	last := buf.MultiBit(1)
	if last.Timestamp != 7 {
		t.Fatalf("expected coalesced transition at t=7, got %d", last.Timestamp)
	}
	if res.String(last) != "0110" {
		t.Fatalf("expected 0101 overwritten by 0110, got %q", res.String(last))
	}
}

func TestMultiBitGlitchCollapsing(t *testing.T) {
	buf := resultbuf.New()
	f := New(buf)
	f.Prime(1, 100)

	f.EmitInitialMultiBit(0, 0, []byte("0000"))
	f.OnMultiBitChange(5, 0, []byte("0001"))
	f.OnMultiBitChange(8, 0, []byte("0010"))
	f.OnMultiBitChange(500, 0, []byte("0011"))
	f.FlushGlitches()

	res := buf.Result()
	if buf.NumMultiBit() != 4 {
		t.Fatalf("expected 4 transitions (initial, glitch marker, closing, new), got %d", buf.NumMultiBit())
	}
	if res.String(buf.MultiBit(1)) != "GLITCH" {
		t.Fatalf("expected glitch marker at index 1, got %q", res.String(buf.MultiBit(1)))
	}
	if buf.MultiBit(1).Timestamp != 5 {
		t.Fatalf("expected glitch marker at t=5, got %d", buf.MultiBit(1).Timestamp)
	}
	closing := buf.MultiBit(2)
	if closing.Timestamp != 8 || res.String(closing) != "0010" {
		t.Fatalf("expected closing transition (8,0010), got (%d,%q)", closing.Timestamp, res.String(closing))
	}
}

func TestFlushGlitchesClosesOpenRun(t *testing.T) {
	buf := resultbuf.New()
	f := New(buf)
	f.Prime(1, 100)

	f.EmitInitial1Bit(0, 0, resultbuf.ValueX)
	f.OnBitChange(0, 0, resultbuf.Value0)
	f.OnBitChange(5, 0, resultbuf.Value1)
	// no further events; query ends while still glitching
	f.FlushGlitches()

	got := bitsOf(buf.Result())
	want := [][2]uint64{{0, 0}, {5, 4}, {5, 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: want %v, got %v", i, want[i], got[i])
		}
	}
}
