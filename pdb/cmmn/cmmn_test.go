package cmmn_test

import (
	"testing"

	. "github.com/andrew-torda/pdbmap/pdb/cmmn"
)

func TestPdbLabel(t *testing.T) {
	var labels = []struct {
		r    ResidueMapping
		want string
	}{
		{ResidueMapping{UniprotPos: 1, PdbPos: 52}, "52"},
		{ResidueMapping{UniprotPos: 2, PdbPos: 52, Insertion: "A"}, "52A"},
		{ResidueMapping{UniprotPos: 3, PdbPos: -4}, "-4"},
	}
	for _, l := range labels {
		if got := l.r.PdbLabel(); got != l.want {
			t.Errorf("PdbLabel got %s want %s", got, l.want)
		}
	}
}

func TestSrcName(t *testing.T) {
	if SrcName(FileSrc) != "file" || SrcName(HTTPSrc) != "http" {
		t.Error("source names broken")
	}
	if SrcName(99) != "unknown" {
		t.Error("should not know source 99")
	}
}
