package resultbuf

import "testing"

func TestPushBitAndRetroactiveEdit(t *testing.T) {
	b := New()
	i := b.PushBit(10, 0, Value1)
	if b.Bit(i).Value != uint8(Value1) {
		t.Fatalf("expected Value1")
	}
	b.SetBitValue(i, ValueGlitch)
	if b.Bit(i).Value != uint8(ValueGlitch) {
		t.Fatalf("expected retroactive edit to ValueGlitch")
	}
}

func TestGlitchLiteralInternedOnce(t *testing.T) {
	b := New()
	b.PushMultiBitGlitch(5, 0)
	b.PushMultiBitGlitch(9, 1)
	if b.NumMultiBit() != 2 {
		t.Fatalf("expected 2 transitions")
	}
	first := b.MultiBit(0)
	second := b.MultiBit(1)
	if first.StringOffset != second.StringOffset || first.StringLength != second.StringLength {
		t.Fatalf("expected both glitches to reuse the same pool span")
	}
	res := b.Result()
	if res.String(first) != "GLITCH" {
		t.Fatalf("expected GLITCH literal, got %q", res.String(first))
	}
	// Pool must contain the literal exactly once.
	if len(res.StringPool) != len("GLITCH") {
		t.Fatalf("expected pool to contain GLITCH exactly once, got %d bytes", len(res.StringPool))
	}
}

func TestPushMultiBitCopiesData(t *testing.T) {
	b := New()
	data := []byte("0101")
	idx := b.PushMultiBit(1, 0, data)
	data[0] = 'z' // mutate caller's buffer after the call
	res := b.Result()
	if res.String(b.MultiBit(idx)) != "0101" {
		t.Fatalf("expected pool copy to be unaffected by caller mutation, got %q", res.String(b.MultiBit(idx)))
	}
}

func TestResetPreservesCapacity(t *testing.T) {
	b := New()
	b.PushBit(1, 0, Value1)
	b.PushMultiBit(1, 0, []byte("1010"))
	b.Reset()
	if b.NumBit() != 0 || b.NumMultiBit() != 0 || len(b.Result().StringPool) != 0 {
		t.Fatalf("expected empty buffers after reset")
	}
	// Glitch literal must be re-interned after reset.
	b.PushMultiBitGlitch(1, 0)
	if len(b.Result().StringPool) != len("GLITCH") {
		t.Fatalf("expected glitch literal freshly interned after reset")
	}
}
