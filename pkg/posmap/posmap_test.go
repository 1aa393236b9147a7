package posmap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pkg/posmap"
)

// fakeSrc has a fixed answer for each alignment and remembers what it
// was asked.
type fakeSrc struct {
	maps  map[int][]cmmn.ResidueMapping
	asked []int
	err   error
}

func (f *fakeSrc) MapPositions(_ context.Context, id int, positions []int) (map[int]cmmn.ResidueMapping, error) {
	f.asked = append(f.asked, id)
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[int]bool)
	for _, p := range positions {
		want[p] = true
	}
	ret := make(map[int]cmmn.ResidueMapping)
	for _, r := range f.maps[id] {
		if want[r.UniprotPos] {
			ret[r.UniprotPos] = r
		}
	}
	return ret, nil
}

func newSrc() *fakeSrc {
	return &fakeSrc{maps: map[int][]cmmn.ResidueMapping{
		1: {{UniprotPos: 10, PdbPos: 110}, {UniprotPos: 11, PdbPos: 111}},
		2: {{UniprotPos: 11, PdbPos: 211, Insertion: "B"}, {UniprotPos: 12, PdbPos: 212}},
	}}
}

func TestPolicies(t *testing.T) {
	var policyTests = []struct {
		policy posmap.Policy
		pdb11  int
	}{
		{posmap.LastWins, 211},
		{posmap.FirstWins, 111},
	}
	for _, pt := range policyTests {
		m := posmap.New(newSrc(), pt.policy)
		// caller order must not matter
		for _, ids := range [][]int{{1, 2}, {2, 1}} {
			got, err := m.Map(context.Background(), ids, []int{10, 11, 12, 13})
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 3 {
				t.Fatalf("%v: wanted 3 positions, got %v", pt.policy, got)
			}
			if got[11].PdbPos != pt.pdb11 {
				t.Errorf("%v ids %v: position 11 went to %d, want %d", pt.policy, ids, got[11].PdbPos, pt.pdb11)
			}
		}
	}
}

func TestReject(t *testing.T) {
	m := posmap.New(newSrc(), posmap.RejectOverlap)
	_, err := m.Map(context.Background(), []int{2, 1}, []int{10, 11})
	var oe *posmap.OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("wanted overlap error, got %v", err)
	}
	if oe.Position != 11 || oe.First != 1 || oe.Second != 2 {
		t.Errorf("bad overlap error %+v", oe)
	}
	if !errors.Is(err, posmap.ErrOverlap) {
		t.Error("errors.Is should match ErrOverlap")
	}
	// no overlap in these positions, so no error
	if _, err := m.Map(context.Background(), []int{1, 2}, []int{10, 12}); err != nil {
		t.Errorf("unexpected %v", err)
	}
}

func TestDuplicateIDs(t *testing.T) {
	src := newSrc()
	m := posmap.New(src, posmap.RejectOverlap)
	if _, err := m.Map(context.Background(), []int{1, 1, 1}, []int{10, 11}); err != nil {
		t.Fatalf("same alignment twice is not an overlap: %v", err)
	}
	if len(src.asked) != 1 {
		t.Errorf("asked %v", src.asked)
	}
}

func TestSourceError(t *testing.T) {
	src := newSrc()
	src.err = errors.New("database gone")
	m := posmap.New(src, posmap.LastWins)
	if _, err := m.Map(context.Background(), []int{1}, []int{10}); err == nil {
		t.Error("wanted error")
	}
}

func TestParsePolicy(t *testing.T) {
	for s, want := range map[string]posmap.Policy{"": posmap.LastWins, "last": posmap.LastWins,
		"First": posmap.FirstWins, " reject ": posmap.RejectOverlap} {
		p, err := posmap.ParsePolicy(s)
		if err != nil || p != want {
			t.Errorf("ParsePolicy(%q) = %v, %v", s, p, err)
		}
	}
	if _, err := posmap.ParsePolicy("random"); err == nil {
		t.Error("should reject unknown policy")
	}
}
