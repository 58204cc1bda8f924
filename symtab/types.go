// Package symtab holds the signal definitions, id-code alias table, and
// hierarchical scope tree parsed from a VCD header.
//
// The table is mutable while the header is being parsed and frozen by
// Seal, mirroring the VCD grammar's own $enddefinitions boundary.
package symtab

import "strings"

// VarType enumerates the VCD $var variable kinds this project recognizes.
type VarType int

const (
	VarWire VarType = iota
	VarReg
	VarInteger
	VarParameter
	VarReal
	VarTime
	VarEvent
	VarSupply0
	VarSupply1
	VarTri
	VarTriAnd
	VarTriOr
	VarTriReg
	VarTri0
	VarTri1
	VarWAnd
	VarWOr
	// VarUnknown is recorded for any $var type token this project does not
	// recognize. Per the error-handling design, an unrecognized type is
	// recoverable: the signal is still declared, just tagged Unknown.
	VarUnknown
)

var varTypeNames = map[string]VarType{
	"wire":      VarWire,
	"reg":       VarReg,
	"integer":   VarInteger,
	"parameter": VarParameter,
	"real":      VarReal,
	"time":      VarTime,
	"event":     VarEvent,
	"supply0":   VarSupply0,
	"supply1":   VarSupply1,
	"tri":       VarTri,
	"triand":    VarTriAnd,
	"trior":     VarTriOr,
	"trireg":    VarTriReg,
	"tri0":      VarTri0,
	"tri1":      VarTri1,
	"wand":      VarWAnd,
	"wor":       VarWOr,
}

var varTypeStrings = map[VarType]string{
	VarWire: "wire", VarReg: "reg", VarInteger: "integer",
	VarParameter: "parameter", VarReal: "real", VarTime: "time",
	VarEvent: "event", VarSupply0: "supply0", VarSupply1: "supply1",
	VarTri: "tri", VarTriAnd: "triand", VarTriOr: "trior",
	VarTriReg: "trireg", VarTri0: "tri0", VarTri1: "tri1", VarWAnd: "wand", VarWOr: "wor",
}

func (v VarType) String() string {
	if s, ok := varTypeStrings[v]; ok {
		return s
	}
	return "unknown"
}

// ParseVarType maps a $var type token to a VarType. ok is false when the
// token is not one of the recognized kinds, in which case VarUnknown is
// still returned so the caller can record the signal anyway.
func ParseVarType(tok string) (VarType, bool) {
	vt, ok := varTypeNames[strings.ToLower(tok)]
	if !ok {
		return VarUnknown, false
	}
	return vt, true
}

// Signal is immutable after header parse.
type Signal struct {
	// Index is this signal's position in the signal array; it never
	// changes after declaration.
	Index    int
	Name     string
	FullPath string
	IDCode   string
	Type     VarType
	Width    int

	HasRange bool
	MSB      int
	LSB      int

	// BitIndex is the index into the packed 1-bit state store, or -1 if
	// Width != 1.
	BitIndex int
	// StrIndex is the index into the multi-bit state store, or -1 if
	// Width == 1.
	StrIndex int
}

// ScopeNode is a node of the hierarchical scope tree. Nodes own their
// children; Parent is a non-owning back-reference. The root is synthetic
// and has an empty FullPath.
type ScopeNode struct {
	Kind     string
	Name     string
	FullPath string
	Parent   *ScopeNode
	Children []*ScopeNode

	// SignalIndices lists signals declared directly in this scope, in
	// declaration order.
	SignalIndices []int
}
