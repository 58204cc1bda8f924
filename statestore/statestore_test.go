package statestore

import "testing"

func TestInitialFillIsX(t *testing.T) {
	s := New(3, 2)
	for i := 0; i < 3; i++ {
		if s.Get(i) != ValX {
			t.Fatalf("bit %d: expected ValX initially, got %v", i, s.Get(i))
		}
	}
	for i := 0; i < 2; i++ {
		if s.GetString(i) != "x" {
			t.Fatalf("str %d: expected \"x\" initially, got %q", i, s.GetString(i))
		}
	}
}

func TestBitPackingRoundTrip(t *testing.T) {
	s := New(130, 0)
	writes := []struct {
		idx int
		val Val2
	}{
		{0, Val1}, {1, ValZ}, {63, Val0}, {64, Val1}, {65, ValX}, {129, Val1},
	}
	for _, w := range writes {
		s.Set(w.idx, w.val)
	}
	for _, w := range writes {
		if got := s.Get(w.idx); got != w.val {
			t.Fatalf("bit %d: expected %v got %v", w.idx, w.val, got)
		}
	}
	// Overwrite and confirm the most recent write wins.
	s.Set(64, ValZ)
	if got := s.Get(64); got != ValZ {
		t.Fatalf("expected most recent write to win, got %v", got)
	}
	// Neighboring slots in the same word must be untouched.
	if got := s.Get(65); got != ValX {
		t.Fatalf("expected neighbor slot untouched, got %v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(4, 2)
	s.Set(0, Val1)
	s.SetString(0, []byte("1010"))

	clone := s.Clone()
	s.Set(0, Val0)
	s.SetString(0, []byte("0000"))

	if clone.Get(0) != Val1 {
		t.Fatalf("expected clone to retain Val1, got %v", clone.Get(0))
	}
	if clone.GetString(0) != "1010" {
		t.Fatalf("expected clone to retain 1010, got %q", clone.GetString(0))
	}
}

func TestCopyFromRestoresExactly(t *testing.T) {
	snap := New(4, 1)
	snap.Set(2, ValZ)
	snap.SetString(0, []byte("zzzz"))

	live := New(4, 1)
	live.Set(2, Val1)
	live.SetString(0, []byte("1111"))

	live.CopyFrom(snap)
	if live.Get(2) != ValZ {
		t.Fatalf("expected restored ValZ, got %v", live.Get(2))
	}
	if live.GetString(0) != "zzzz" {
		t.Fatalf("expected restored zzzz, got %q", live.GetString(0))
	}
}
