package header_test

import (
	"encoding/json"
	"testing"

	. "github.com/andrew-torda/pdbmap/pdb/header"
)

func TestValueJSON(t *testing.T) {
	var vals = []struct {
		v    Value
		want string
	}{
		{Value{}, `null`},
		{Str("HOMO SAPIENS"), `"HOMO SAPIENS"`},
		{ListOf("A", "B"), `["A","B"]`},
		{ListOf(), `[]`},
		{MapOf(map[string]Value{"b": Str("2"), "a": ListOf("x")}), `{"a":["x"],"b":"2"}`},
	}
	for _, x := range vals {
		b, err := json.Marshal(x.v)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != x.want {
			t.Errorf("marshal %v got %s want %s", x.v.Kind(), b, x.want)
		}
	}
}

func TestValueDecode(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"n": 9606, "ok": true, "l": ["A", null], "s": "x"}`), &v); err != nil {
		t.Fatal(err)
	}
	m, ok := v.Map()
	if !ok {
		t.Fatalf("wanted map, got %v", v.Kind())
	}
	if s, _ := m["n"].Str(); s != "9606" {
		t.Errorf("number should come back as string, got %v", m["n"])
	}
	if s, _ := m["ok"].Str(); s != "true" {
		t.Errorf("bool should come back as string, got %v", m["ok"])
	}
	l, ok := m["l"].List()
	if !ok || len(l) != 2 || l[1].Kind() != Null {
		t.Errorf("list broken %v", m["l"])
	}
	if got := m["l"].Strings(); len(got) != 1 || got[0] != "A" {
		t.Errorf("Strings should skip the null, got %v", got)
	}
	if got := m["s"].Strings(); len(got) != 1 || got[0] != "x" {
		t.Errorf("Strings on a string %v", got)
	}
	if Null.String() != "null" || Map.String() != "map" {
		t.Error("kind names")
	}
}
