// Package scanner implements a cheap forward cursor over a byte slice.
//
// It is pure and allocation-free: every method either advances the cursor
// or returns a subslice of the original buffer. It knows nothing about
// files, VCD syntax, or the parser driving it — callers own the mapping
// from scanner position to absolute file offset.
package scanner

// Scanner is a forward-only cursor over a contiguous byte slice.
type Scanner struct {
	buf []byte
	cur int
}

// New creates a Scanner positioned at the start of buf.
func New(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Reset repositions the scanner over a new buffer at offset 0.
func (s *Scanner) Reset(buf []byte) {
	if s == nil {
		return
	}
	s.buf = buf
	s.cur = 0
}

// EOF reports whether the cursor has reached the end of the buffer.
func (s *Scanner) EOF() bool {
	if s == nil {
		return true
	}
	return s.cur >= len(s.buf)
}

// Remaining returns the number of unconsumed bytes.
func (s *Scanner) Remaining() int {
	if s == nil {
		return 0
	}
	return len(s.buf) - s.cur
}

// Offset returns the absolute file offset of the cursor, given the
// absolute offset of buf[0].
func (s *Scanner) Offset(base int64) int64 {
	if s == nil {
		return base
	}
	return base + int64(s.cur)
}

// Pos returns the cursor's position within the current buffer.
func (s *Scanner) Pos() int {
	if s == nil {
		return 0
	}
	return s.cur
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

// SkipWhitespace advances the cursor past any run of whitespace.
func (s *Scanner) SkipWhitespace() {
	if s == nil {
		return
	}
	for s.cur < len(s.buf) && isSpace(s.buf[s.cur]) {
		s.cur++
	}
}

// SkipLine advances the cursor past the next newline, or to EOF if none
// remains.
func (s *Scanner) SkipLine() {
	if s == nil {
		return
	}
	for s.cur < len(s.buf) && s.buf[s.cur] != '\n' {
		s.cur++
	}
	if s.cur < len(s.buf) {
		s.cur++
	}
}

// PeekNonWS returns the first non-whitespace byte from the cursor without
// consuming it, and false if only whitespace remains.
func (s *Scanner) PeekNonWS() (byte, bool) {
	if s == nil {
		return 0, false
	}
	i := s.cur
	for i < len(s.buf) && isSpace(s.buf[i]) {
		i++
	}
	if i >= len(s.buf) {
		return 0, false
	}
	return s.buf[i], true
}

// NextToken skips leading whitespace and returns the following run of
// non-whitespace bytes. The returned slice aliases buf; callers that need
// to retain it past the next chunk boundary must copy it.
func (s *Scanner) NextToken() ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	s.SkipWhitespace()
	start := s.cur
	for s.cur < len(s.buf) && !isSpace(s.buf[s.cur]) {
		s.cur++
	}
	if s.cur == start {
		return nil, false
	}
	return s.buf[start:s.cur], true
}

// RestOfLine returns everything from the cursor up to (excluding) the next
// newline, and advances past the newline.
func (s *Scanner) RestOfLine() []byte {
	if s == nil {
		return nil
	}
	start := s.cur
	for s.cur < len(s.buf) && s.buf[s.cur] != '\n' {
		s.cur++
	}
	end := s.cur
	if s.cur < len(s.buf) {
		s.cur++
	}
	return s.buf[start:end]
}

// ReadUntilEnd consumes whitespace-separated tokens, invoking fn with each
// one, until it encounters the literal token "$end" (which is consumed but
// not passed to fn) or runs out of input. It reports whether "$end" was
// found.
func (s *Scanner) ReadUntilEnd(fn func(tok []byte)) bool {
	if s == nil {
		return false
	}
	for {
		tok, ok := s.NextToken()
		if !ok {
			return false
		}
		if string(tok) == "$end" {
			return true
		}
		if fn != nil {
			fn(tok)
		}
	}
}
