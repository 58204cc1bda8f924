package vcdtrace

// Stats is a read-only snapshot of the recoverable-error counters spec.md
// §7 requires to be available without ever surfacing as an error.
type Stats struct {
	UnknownIDCodeCount  uint64
	UnknownVarTypeCount uint64
	TruncatedFileCount  uint64
	InvalidQueryCount   uint64
}

// Stats returns the current counters. The core never logs these; the CLI
// and bridge decide whether and how to report them.
func (p *Parser) Stats() Stats {
	if p == nil {
		return Stats{}
	}
	return Stats{
		UnknownIDCodeCount:  p.unknownIDCodeCount,
		UnknownVarTypeCount: p.unknownVarTypeCount,
		TruncatedFileCount:  p.truncatedFileCount,
		InvalidQueryCount:   p.invalidQueryCount,
	}
}
