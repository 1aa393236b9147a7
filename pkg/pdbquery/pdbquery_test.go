package pdbquery_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pdb/header"
	. "github.com/andrew-torda/pdbmap/pkg/pdbquery"
	"github.com/andrew-torda/pdbmap/pkg/posmap"
)

var quiet = log.New(io.Discard)

func TestParseInts(t *testing.T) {
	var intTests = []struct {
		in   string
		want []int
	}{
		{"5, 7,,abc,-1", []int{5, 7}},
		{"3 1 2 3", []int{1, 2, 3}},
		{"\t10,\n9 ", []int{9, 10}},
		{"-2,-1", []int{-2}},
		{"abc", []int{}},
		{"-1", []int{}},
		{"", nil},
		{"  , ", nil},
	}
	for _, tt := range intTests {
		got := ParseInts(tt.in, quiet)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseInts(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseStrings(t *testing.T) {
	if got := ParseStrings("2abc, 1xyz 2abc,,"); !reflect.DeepEqual(got, []string{"1xyz", "2abc"}) {
		t.Errorf("got %v", got)
	}
	if got := ParseStrings(" \t"); got != nil {
		t.Errorf("blank should be nil, got %#v", got)
	}
}

func TestMode(t *testing.T) {
	var modeTests = []struct {
		v    url.Values
		want Mode
	}{
		{url.Values{"positions": {"1,2"}, "alignments": {"3"}, "pdbIds": {"1abc"}, "type": {"summary"}}, ModePositions},
		{url.Values{"positions": {"1,2"}, "pdbIds": {"1abc"}}, ModeInfo},
		{url.Values{"positions": {"abc"}, "alignments": {"3"}, "pdbIds": {"1abc"}}, ModeInfo},
		{url.Values{"pdbIds": {"1abc"}, "type": {"summary"}}, ModeInfo},
		{url.Values{"uniprotId": {"P08581"}, "type": {"summary"}}, ModeSummary},
		{url.Values{"uniprotId": {"P08581"}, "type": {"other"}}, ModeList},
		{url.Values{"uniprotId": {"P08581"}, "alignments": {"3"}}, ModeList},
		{url.Values{}, ModeList},
	}
	for i, mt := range modeTests {
		if got := FromValues(mt.v, quiet).Mode(); got != mt.want {
			t.Errorf("case %d: got mode %v, want %v", i, got, mt.want)
		}
	}
}

// fakes for the three helpers

type fakeStore struct {
	alns []cmmn.Alignment
	err  error
}

func (f *fakeStore) Alignments(_ context.Context, id string) ([]cmmn.Alignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	ret := make([]cmmn.Alignment, 0)
	for _, a := range f.alns {
		if a.UniprotID == id {
			ret = append(ret, a)
		}
	}
	return ret, nil
}

func (f *fakeStore) CountAlignments(ctx context.Context, id string) (int, error) {
	a, err := f.Alignments(ctx, id)
	return len(a), err
}

type fakeMapper struct {
	m   map[int]cmmn.ResidueMapping
	err error
}

func (f *fakeMapper) Map(context.Context, []int, []int) (map[int]cmmn.ResidueMapping, error) {
	return f.m, f.err
}

type fakeFetcher struct{ known map[string]*header.Info }

func (f *fakeFetcher) FetchAll(_ context.Context, ids []string, _ int) (map[string]*header.Info, map[string]error) {
	infos := make(map[string]*header.Info)
	errs := make(map[string]error)
	for _, id := range ids {
		infos[id] = f.known[id]
		if f.known[id] == nil {
			errs[id] = errors.New("not found")
		}
	}
	return infos, errs
}

func newAssembler(store *fakeStore, mapper *fakeMapper) *Assembler {
	fetcher := &fakeFetcher{known: map[string]*header.Info{
		"1abc": {Title: "A KINASE", Compound: header.Molecules{}, Source: header.Molecules{}},
	}}
	return NewAssembler(store, mapper, fetcher, 2, quiet)
}

var testAlns = []cmmn.Alignment{
	{ID: 7, PdbID: "1abc", Chain: "A", UniprotID: "P08581", PdbFrom: 1, PdbTo: 4,
		UniprotFrom: 1038, UniprotTo: 1041, EValue: 1e-50, IdentityPerc: 0.99,
		UniprotAlign: "ABCD", PdbAlign: "AB-D", MidlineAlign: "||-|"},
	{ID: 9, PdbID: "2xyz", Chain: "B", UniprotID: "P08581",
		UniprotAlign: "AB", PdbAlign: "ABC", MidlineAlign: "||"},
}

// asJSON is what a client would see.
func asJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestAnswerList(t *testing.T) {
	a := newAssembler(&fakeStore{alns: testAlns}, &fakeMapper{})
	got, err := a.Answer(context.Background(), Query{UniprotID: "P08581"})
	if err != nil {
		t.Fatal(err)
	}
	rows, ok := got.([]AlignmentRow)
	if !ok || len(rows) != 2 {
		t.Fatalf("wanted 2 rows, got %#v", got)
	}
	if rows[0].AlignmentString != "||-|" || rows[1].AlignmentString != "NA" {
		t.Errorf("bad alignment strings %q %q", rows[0].AlignmentString, rows[1].AlignmentString)
	}
	want := `{"alignmentId":7,"pdbId":"1abc","chain":"A","uniprotId":"P08581","pdbFrom":1,"pdbTo":4,` +
		`"uniprotFrom":1038,"uniprotTo":1041,"eValue":1e-50,"identityPerc":0.99,"alignmentString":"||-|"}`
	if s := asJSON(t, rows[0]); s != want {
		t.Errorf("got\n%s\nwant\n%s", s, want)
	}

	// unknown id is an empty list, not null
	got, err = a.Answer(context.Background(), Query{UniprotID: "Q00000"})
	if err != nil || asJSON(t, got) != "[]" {
		t.Errorf("got %s %v", asJSON(t, got), err)
	}
}

func TestAnswerSummary(t *testing.T) {
	a := newAssembler(&fakeStore{alns: testAlns}, &fakeMapper{})
	got, err := a.Answer(context.Background(), Query{UniprotID: "P08581", Type: SummaryType})
	if err != nil {
		t.Fatal(err)
	}
	if s := asJSON(t, got); s != `{"alignmentCount":2}` {
		t.Errorf("got %s", s)
	}
}

func TestAnswerPositions(t *testing.T) {
	m := &fakeMapper{m: map[int]cmmn.ResidueMapping{
		12: {UniprotPos: 12, PdbPos: 112, Insertion: "A"},
		5:  {UniprotPos: 5, PdbPos: 105},
	}}
	a := newAssembler(&fakeStore{}, m)
	q := Query{Positions: []int{5, 12, 13}, Alignments: []int{1}, PdbIDs: []string{"1abc"}}
	got, err := a.Answer(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"positionMap":{"12":{"pdbPos":112,"insertion":"A"},"5":{"pdbPos":105,"insertion":""}}}`
	if s := asJSON(t, got); s != want {
		t.Errorf("got\n%s\nwant\n%s", s, want)
	}
}

func TestAnswerInfo(t *testing.T) {
	a := newAssembler(&fakeStore{}, &fakeMapper{})
	got, err := a.Answer(context.Background(), Query{PdbIDs: []string{"1abc", "9bad"}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"1abc":{"title":"A KINASE","compound":{},"source":{}},"9bad":null}`
	if s := asJSON(t, got); s != want {
		t.Errorf("got\n%s\nwant\n%s", s, want)
	}
}

func TestAnswerErrors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("database is locked")
	a := newAssembler(&fakeStore{err: dbErr}, &fakeMapper{err: dbErr})

	for _, q := range []Query{
		{UniprotID: "P08581"},
		{UniprotID: "P08581", Type: SummaryType},
		{Positions: []int{1}, Alignments: []int{1}},
	} {
		got, err := a.Answer(ctx, q)
		var perr *PersistenceError
		if !errors.As(err, &perr) || !errors.Is(err, dbErr) {
			t.Errorf("mode %v: wanted persistence error, got %v", q.Mode(), err)
		}
		if got != nil {
			t.Errorf("mode %v: wanted nil answer with error, got %#v", q.Mode(), got)
		}
	}

	for _, q := range []Query{{}, {Type: SummaryType}} {
		if _, err := a.Answer(ctx, q); !errors.Is(err, ErrBadQuery) {
			t.Errorf("mode %v without uniprot id: got %v", q.Mode(), err)
		}
	}

	a = newAssembler(&fakeStore{}, &fakeMapper{err: &posmap.OverlapError{Position: 3, First: 1, Second: 2}})
	_, err := a.Answer(ctx, Query{Positions: []int{3}, Alignments: []int{1, 2}})
	if !errors.Is(err, ErrBadQuery) || !errors.Is(err, posmap.ErrOverlap) {
		t.Errorf("overlap should be a bad query, got %v", err)
	}
}
