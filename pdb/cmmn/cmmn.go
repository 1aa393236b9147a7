// Package pdb/cmmn has common definitions for alignments between
// uniprot sequences and pdb chains, shared by the reading, mapping
// and output packages.
package cmmn

import (
	"strconv"
)

// Does our header data come from a local mirror or an http source ?
const (
	FileSrc byte = iota
	HTTPSrc
)

// Exit codes for the commands
const (
	ExitSuccess = iota
	ExitFailure
	ExitUsageError
)

const GapChar byte = '-' // a minus sign is always used for gaps

// NoPos is used by callers to mean "no position". It is never a valid
// residue number and gets thrown away on input.
const NoPos int = -1

// Alignment is one row from the alignment table. It describes how a
// stretch of a uniprot sequence lines up against one pdb chain.
// The three alignment strings come straight from the alignment program
// and should be the same length, but we do not trust that.
type Alignment struct {
	ID           int
	PdbID        string
	Chain        string // Name, like "A" or "B"
	UniprotID    string
	PdbFrom      int
	PdbTo        int
	UniprotFrom  int
	UniprotTo    int
	EValue       float64
	IdentityPerc float64
	UniprotAlign string // sequence track
	PdbAlign     string // structure track
	MidlineAlign string // match / mismatch / similar
}

// ResidueMapping takes one uniprot residue to its pdb residue number.
// Insertion is the pdb insertion code and is usually empty.
type ResidueMapping struct {
	UniprotPos int
	PdbPos     int
	Insertion  string
}

// PdbLabel is the residue label as it would appear in a pdb file,
// like "52" or "52A".
func (r ResidueMapping) PdbLabel() string {
	return strconv.Itoa(r.PdbPos) + r.Insertion
}

// SrcName is only for printing.
func SrcName(src byte) string {
	switch src {
	case FileSrc:
		return "file"
	case HTTPSrc:
		return "http"
	}
	return "unknown"
}
