// Package pdbquery turns the parameters of a request into one of four
// kinds of answer: a list of alignments for a uniprot id, a count of
// them, a map from uniprot positions to pdb residues, or header info
// for a set of pdb ids.
package pdbquery

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
)

// Names of the request parameters.
const (
	ParamUniprotID  = "uniprotId"
	ParamType       = "type"
	ParamPositions  = "positions"
	ParamAlignments = "alignments"
	ParamPdbIDs     = "pdbIds"
)

// SummaryType is the value of the type parameter that asks for a count.
const SummaryType = "summary"

func isSep(r rune) bool { return r == ',' || unicode.IsSpace(r) }

// ParseStrings splits on runs of commas and white space. Blank input
// gives nil, which is not the same as an empty list. Duplicates are
// removed and the result is sorted.
func ParseStrings(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	ret := make([]string, 0)
	seen := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(s, isSep) {
		if !seen[tok] {
			seen[tok] = true
			ret = append(ret, tok)
		}
	}
	sort.Strings(ret)
	return ret
}

// ParseInts is like ParseStrings, but for numbers. Tokens which are
// not integers are logged and dropped, as is -1. If everything is
// dropped, you get an empty slice, not nil.
func ParseInts(s string, logger *log.Logger) []int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	ret := make([]int, 0)
	seen := make(map[int]bool)
	for _, tok := range strings.FieldsFunc(s, isSep) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			logger.Warn("dropping bad integer", "token", tok)
			continue
		}
		if n == cmmn.NoPos || seen[n] {
			continue
		}
		seen[n] = true
		ret = append(ret, n)
	}
	sort.Ints(ret)
	return ret
}

// Query is a parsed request. A nil slice means the parameter was
// missing or blank.
type Query struct {
	UniprotID  string
	Type       string
	Positions  []int
	Alignments []int
	PdbIDs     []string
}

// FromValues reads a query from url or form values.
func FromValues(v url.Values, logger *log.Logger) Query {
	return Query{
		UniprotID:  strings.TrimSpace(v.Get(ParamUniprotID)),
		Type:       strings.TrimSpace(v.Get(ParamType)),
		Positions:  ParseInts(v.Get(ParamPositions), logger),
		Alignments: ParseInts(v.Get(ParamAlignments), logger),
		PdbIDs:     ParseStrings(v.Get(ParamPdbIDs)),
	}
}

// Mode is the kind of answer a query wants.
type Mode byte

const (
	ModeList      Mode = iota // alignments for a uniprot id
	ModeSummary               // number of alignments for a uniprot id
	ModeInfo                  // header info for pdb ids
	ModePositions             // uniprot positions to pdb residues
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeSummary:
		return "summary"
	case ModeInfo:
		return "info"
	case ModePositions:
		return "positions"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Mode decides what to do. Positions and alignments together win over
// pdb ids, which win over a summary request. Anything else is a list.
func (q Query) Mode() Mode {
	switch {
	case len(q.Positions) > 0 && len(q.Alignments) > 0:
		return ModePositions
	case len(q.PdbIDs) > 0:
		return ModeInfo
	case q.Type == SummaryType:
		return ModeSummary
	}
	return ModeList
}
