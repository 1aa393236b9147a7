// Package posmap takes uniprot positions to pdb residues, using one
// or more alignments. Each alignment gives its own answer. When two
// alignments cover the same position, a Policy says which answer to
// keep.
package posmap

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
)

// Source gives the mappings of one alignment for a set of positions.
// aligndb.DB is one.
type Source interface {
	MapPositions(ctx context.Context, alignmentID int, positions []int) (map[int]cmmn.ResidueMapping, error)
}

// Policy says what to do when alignments overlap.
type Policy byte

const (
	LastWins      Policy = iota // later alignment id replaces earlier
	FirstWins                   // keep what the lowest alignment id said
	RejectOverlap               // overlap is an error
)

func (p Policy) String() string {
	switch p {
	case LastWins:
		return "last"
	case FirstWins:
		return "first"
	case RejectOverlap:
		return "reject"
	}
	return fmt.Sprintf("Policy(%d)", byte(p))
}

// ParsePolicy reads "last", "first" or "reject". Empty means LastWins.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return LastWins, nil
	case "first":
		return FirstWins, nil
	case "reject":
		return RejectOverlap, nil
	}
	return LastWins, fmt.Errorf("unknown merge policy %q, want last, first or reject", s)
}

// OverlapError says two alignments both claimed a position.
type OverlapError struct {
	Position      int
	First, Second int // alignment ids
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("position %d is mapped by alignment %d and alignment %d", e.Position, e.First, e.Second)
}

// ErrOverlap can be used with errors.Is.
var ErrOverlap = &OverlapError{}

func (e *OverlapError) Is(target error) bool {
	_, ok := target.(*OverlapError)
	return ok
}

// Mapper merges answers from a Source.
type Mapper struct {
	src    Source
	policy Policy
}

func New(src Source, policy Policy) *Mapper {
	return &Mapper{src: src, policy: policy}
}

func (m *Mapper) Policy() Policy { return m.policy }

// Map asks the source about every alignment and merges the results.
// Alignment ids are visited in increasing order, so the answer does
// not depend on the order the caller gave them in.
func (m *Mapper) Map(ctx context.Context, alignmentIDs, positions []int) (map[int]cmmn.ResidueMapping, error) {
	ids := make([]int, len(alignmentIDs))
	copy(ids, alignmentIDs)
	sort.Ints(ids)

	merged := make(map[int]cmmn.ResidueMapping)
	owner := make(map[int]int) // position -> alignment id which set it
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		got, err := m.src.MapPositions(ctx, id, positions)
		if err != nil {
			return nil, err
		}
		for pos, r := range got {
			if prev, seen := owner[pos]; seen {
				switch m.policy {
				case FirstWins:
					continue
				case RejectOverlap:
					return nil, &OverlapError{Position: pos, First: prev, Second: id}
				}
			}
			merged[pos] = r
			owner[pos] = id
		}
	}
	return merged, nil
}
