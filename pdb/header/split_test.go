package header_test

import (
	"testing"

	. "github.com/andrew-torda/pdbmap/pdb/header"
)

func TestRecordText(t *testing.T) {
	var rtTests = []struct {
		line, ident string
		count       int
		want        string
	}{
		{"TITLE     THE FIRST LINE", "TITLE", 1, "THE FIRST LINE"},
		{"TITLE    2 THE SECOND", "TITLE", 2, "THE SECOND"},
		{"COMPND  10 EC: 2.7.10.1;", "COMPND", 10, "EC: 2.7.10.1;"},
		{"TITLE    2", "TITLE", 2, ""},
		{"title 2 free form", "title", 2, "free form"},
		{"title 3 free form", "title", 2, "3 free form"},
		{"title 2", "title", 1, "2"},
		{"TITLE", "TITLE", 1, ""},
		{"TITLE 2009 STRUCTURE", "TITLE", 1, "2009 STRUCTURE"},
		{"title 1999 study", "title", 1, "1999 study"},
		{"compnd 1234 x: y;", "compnd", 1, "1234 x: y;"},
		{"TITLE     2009 STRUCTURE", "TITLE", 1, "2009 STRUCTURE"},
		{"TITLE    2009 STRUCTURE", "TITLE", 1, "2009 STRUCTURE"},
		{"TITLE    3 NOT THE SECOND", "TITLE", 2, "3 NOT THE SECOND"},
		{"TITLE     BLANK FIELD", "TITLE", 2, "BLANK FIELD"},
		{"COMPND2345 X", "COMPND", 1, "2345 X"},
	}
	for _, rt := range rtTests {
		if got := RecordText(rt.line, rt.ident, rt.count); got != rt.want {
			t.Errorf("RecordText(%q, %d) = %q, want %q", rt.line, rt.count, got, rt.want)
		}
	}
}

func TestFixedCont(t *testing.T) {
	for count, want := range map[int]string{1: "", 2: "2", 10: "10"} {
		if got := FixedCont(count); got != want {
			t.Errorf("FixedCont(%d) = %q, want %q", count, got, want)
		}
	}
}

func TestSplitFirstLineDigits(t *testing.T) {
	for in, want := range map[string]string{
		"TITLE 2009 STRUCTURE":                  "2009 STRUCTURE",
		"title 1999 study":                      "1999 study",
		"TITLE     1999 STUDY\nTITLE    2 OF X": "1999 STUDY\nOF X",
	} {
		if got := Split(in)["title"]; got != want {
			t.Errorf("Split(%q) title = %q, want %q", in, got, want)
		}
	}
	if got := Split("compnd 1234 x: y;")["compnd"]; got != "1234 x: y;" {
		t.Errorf("compnd lost text: %q", got)
	}
}
