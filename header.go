package vcdtrace

import (
	"strconv"
	"strings"

	"github.com/readm/vcdtrace/scanner"
	"github.com/readm/vcdtrace/statestore"
	"github.com/readm/vcdtrace/symtab"
)

// handleDirective dispatches a "$..." token. Header directives populate
// the symbol table; $dump* directives only flip inDumpBlock, since the
// value tokens inside one are driven by the same top-level token loop
// that handles bare value changes (processTokens in dataline.go).
func (p *Parser) handleDirective(sc *scanner.Scanner, name string) error {
	switch name {
	case "$date":
		p.dateStr = readUntilEndJoined(sc)
	case "$version":
		p.versionStr = readUntilEndJoined(sc)
	case "$comment":
		sc.ReadUntilEnd(nil)
	case "$timescale":
		var sb strings.Builder
		sc.ReadUntilEnd(func(tok []byte) { sb.Write(tok) })
		if ts, err := parseTimescale(sb.String()); err == nil {
			p.timescale = ts
		}
	case "$scope":
		kind, _ := sc.NextToken()
		name, _ := sc.NextToken()
		sc.ReadUntilEnd(nil)
		p.sym.OpenScope(string(kind), string(name))
	case "$upscope":
		sc.ReadUntilEnd(nil)
		p.sym.CloseScope()
	case "$var":
		p.handleVar(sc)
	case "$enddefinitions":
		sc.ReadUntilEnd(nil)
		p.sealHeader()
	case "$dumpvars", "$dumpon", "$dumpall", "$dumpoff":
		p.inDumpBlock = true
	default:
		// Unrecognized "$" directive: consumed through $end without error,
		// per spec.md §4.8's tolerant failure semantics.
		sc.ReadUntilEnd(nil)
	}
	return nil
}

func readUntilEndJoined(sc *scanner.Scanner) string {
	var sb strings.Builder
	sc.ReadUntilEnd(func(tok []byte) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.Write(tok)
	})
	return sb.String()
}

// handleVar parses "$var <type> <width> <id_code> <name> [<bit_range>] $end".
func (p *Parser) handleVar(sc *scanner.Scanner) {
	typeTok, ok := sc.NextToken()
	if !ok {
		return
	}
	widthTok, ok := sc.NextToken()
	if !ok {
		return
	}
	idTok, ok := sc.NextToken()
	if !ok {
		return
	}
	nameTok, ok := sc.NextToken()
	if !ok {
		return
	}

	width, err := strconv.Atoi(string(widthTok))
	if err != nil || width < 1 {
		width = 1
	}
	vtype, recognized := symtab.ParseVarType(string(typeTok))
	if !recognized {
		p.unknownVarTypeCount++
	}

	hasRange, msb, lsb := false, 0, 0
	for {
		tok, ok := sc.NextToken()
		if !ok {
			return
		}
		if string(tok) == "$end" {
			break
		}
		if len(tok) > 0 && tok[0] == '[' {
			hasRange = true
			msb, lsb = parseBitRange(tok)
		}
	}
	p.sym.DeclareSignal(string(nameTok), string(idTok), vtype, width, hasRange, msb, lsb)
}

func parseBitRange(tok []byte) (msb, lsb int) {
	s := strings.Trim(string(tok), "[]")
	if i := strings.IndexByte(s, ':'); i >= 0 {
		m, _ := strconv.Atoi(s[:i])
		l, _ := strconv.Atoi(s[i+1:])
		return m, l
	}
	n, _ := strconv.Atoi(s)
	return n, n
}

// sealHeader freezes the symbol table and allocates the state store,
// corresponding to $enddefinitions $end.
func (p *Parser) sealHeader() {
	p.sym.Seal()
	p.store = statestore.New(p.sym.NumBit1(), p.sym.NumMultiBit())
}
