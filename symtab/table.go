package symtab

import "fmt"

// Table accumulates scopes, signals, and id-code aliases while a VCD header
// is being parsed, and answers lookups once sealed.
//
// It is not safe for concurrent use — the streaming parser that drives it
// is itself single-threaded per spec.
type Table struct {
	root    *ScopeNode
	current *ScopeNode

	signals []Signal
	pathIdx map[string]int
	idAlias map[string][]int

	sealed      bool
	numBit1     int
	numMultiBit int
}

// New creates an empty symbol table with a synthetic root scope.
func New() *Table {
	root := &ScopeNode{Kind: "root", Name: "", FullPath: ""}
	return &Table{
		root:    root,
		current: root,
		pathIdx: make(map[string]int),
		idAlias: make(map[string][]int),
	}
}

// OpenScope pushes a new child scope under the current scope and returns
// it. It corresponds to $scope <kind> <name> $end.
func (t *Table) OpenScope(kind, name string) *ScopeNode {
	if t == nil {
		return nil
	}
	full := name
	if t.current != nil && t.current.FullPath != "" {
		full = t.current.FullPath + "." + name
	}
	node := &ScopeNode{
		Kind:     kind,
		Name:     name,
		FullPath: full,
		Parent:   t.current,
	}
	if t.current != nil {
		t.current.Children = append(t.current.Children, node)
	}
	t.current = node
	return node
}

// CloseScope pops back to the parent of the current scope. It corresponds
// to $upscope $end. Closing past the root leaves the current scope
// unchanged and returns an error.
func (t *Table) CloseScope() error {
	if t == nil {
		return nil
	}
	if t.current == nil || t.current.Parent == nil {
		return fmt.Errorf("symtab: upscope with no open scope")
	}
	t.current = t.current.Parent
	return nil
}

// CurrentScope returns the scope presently open for declarations.
func (t *Table) CurrentScope() *ScopeNode {
	if t == nil {
		return nil
	}
	return t.current
}

// Root returns the synthetic root of the scope tree.
func (t *Table) Root() *ScopeNode {
	if t == nil {
		return nil
	}
	return t.root
}

// DeclareSignal registers a $var entry under the current scope and returns
// its dense signal index. Multiple signals may share idCode; all become
// members of that id-code's alias group.
func (t *Table) DeclareSignal(name, idCode string, vtype VarType, width int, hasRange bool, msb, lsb int) (int, error) {
	if t == nil {
		return -1, fmt.Errorf("symtab: nil table")
	}
	if t.sealed {
		return -1, fmt.Errorf("symtab: table sealed, cannot declare %q", name)
	}
	if width < 1 {
		width = 1
	}
	full := name
	if t.current != nil && t.current.FullPath != "" {
		full = t.current.FullPath + "." + name
	}
	idx := len(t.signals)
	sig := Signal{
		Index:    idx,
		Name:     name,
		FullPath: full,
		IDCode:   idCode,
		Type:     vtype,
		Width:    width,
		HasRange: hasRange,
		MSB:      msb,
		LSB:      lsb,
		BitIndex: -1,
		StrIndex: -1,
	}
	t.signals = append(t.signals, sig)
	t.pathIdx[full] = idx
	t.idAlias[idCode] = append(t.idAlias[idCode], idx)
	if t.current != nil {
		t.current.SignalIndices = append(t.current.SignalIndices, idx)
	}
	return idx, nil
}

// Seal freezes the signal array and assigns BitIndex/StrIndex so the state
// store can be sized. It corresponds to $enddefinitions $end.
func (t *Table) Seal() {
	if t == nil || t.sealed {
		return
	}
	for i := range t.signals {
		s := &t.signals[i]
		if s.Width == 1 {
			s.BitIndex = t.numBit1
			t.numBit1++
		} else {
			s.StrIndex = t.numMultiBit
			t.numMultiBit++
		}
	}
	t.sealed = true
}

// Sealed reports whether Seal has been called.
func (t *Table) Sealed() bool {
	if t == nil {
		return false
	}
	return t.sealed
}

// NumBit1 returns the number of 1-bit signals. Valid only after Seal.
func (t *Table) NumBit1() int {
	if t == nil {
		return 0
	}
	return t.numBit1
}

// NumMultiBit returns the number of multi-bit signals. Valid only after
// Seal.
func (t *Table) NumMultiBit() int {
	if t == nil {
		return 0
	}
	return t.numMultiBit
}

// SignalCount returns the total number of declared signals.
func (t *Table) SignalCount() int {
	if t == nil {
		return 0
	}
	return len(t.signals)
}

// Signal returns the signal at idx, or false if out of range.
func (t *Table) Signal(idx int) (Signal, bool) {
	if t == nil || idx < 0 || idx >= len(t.signals) {
		return Signal{}, false
	}
	return t.signals[idx], true
}

// Signals returns every declared signal, in declaration order. The slice
// must not be mutated by the caller.
func (t *Table) Signals() []Signal {
	if t == nil {
		return nil
	}
	return t.signals
}

// LookupByPath resolves a dotted full path to a signal index.
func (t *Table) LookupByPath(path string) (int, bool) {
	if t == nil {
		return -1, false
	}
	idx, ok := t.pathIdx[path]
	return idx, ok
}

// LookupByID returns the alias group — every signal index sharing idCode.
// The returned slice must not be mutated by the caller.
func (t *Table) LookupByID(idCode string) []int {
	if t == nil {
		return nil
	}
	return t.idAlias[idCode]
}

// Reset clears the table back to its just-constructed state, for
// begin_indexing's "idempotent reopen" requirement.
func (t *Table) Reset() {
	if t == nil {
		return
	}
	root := &ScopeNode{Kind: "root", Name: "", FullPath: ""}
	t.root = root
	t.current = root
	t.signals = nil
	t.pathIdx = make(map[string]int)
	t.idAlias = make(map[string][]int)
	t.sealed = false
	t.numBit1 = 0
	t.numMultiBit = 0
}
