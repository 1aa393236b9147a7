package header

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind says what is in a Value.
type Kind byte

const (
	Null Kind = iota
	String
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case List:
		return "list"
	case Map:
		return "map"
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Value is one entry in a molecule description. Most fields are
// strings, but chain and gene are lists. It can also hold a map, so
// anything that comes back from the cache can be represented.
// The zero Value is Null.
type Value struct {
	kind Kind
	s    string
	l    []Value
	m    map[string]Value
}

// Str makes a string value
func Str(s string) Value { return Value{kind: String, s: s} }

// ListOf makes a list of string values.
func ListOf(s ...string) Value {
	l := make([]Value, len(s))
	for i, t := range s {
		l[i] = Str(t)
	}
	return Value{kind: List, l: l}
}

// MapOf makes a map value. The map is not copied.
func MapOf(m map[string]Value) Value {
	if m == nil {
		m = make(map[string]Value)
	}
	return Value{kind: Map, m: m}
}

func (v Value) Kind() Kind { return v.kind }

// Str returns the string and true if v holds a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == String }

// List returns the list and true if v holds a list.
func (v Value) List() ([]Value, bool) { return v.l, v.kind == List }

// Map returns the map and true if v holds a map.
func (v Value) Map() (map[string]Value, bool) { return v.m, v.kind == Map }

// Strings flattens a list of strings. Anything that is not a string
// is skipped. A string value gives a slice of one.
func (v Value) Strings() []string {
	switch v.kind {
	case String:
		return []string{v.s}
	case List:
		ret := make([]string, 0, len(v.l))
		for _, e := range v.l {
			if s, ok := e.Str(); ok {
				ret = append(ret, s)
			}
		}
		return ret
	}
	return nil
}

// String is for printing and debugging.
func (v Value) String() string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

// MarshalJSON writes null, a string, an array or an object.
// Keys of maps come out sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(v.s)
	case List:
		if v.l == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.l)
	case Map:
		var buf bytes.Buffer
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.m[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("cannot marshal value of kind %v", v.kind)
}

// UnmarshalJSON reads anything json can hold. Numbers and booleans
// become strings with their literal text, so callers only ever have
// to deal with the four kinds.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return err
	}
	*v = fromAny(x)
	return nil
}

// fromAny converts what the json decoder hands back.
func fromAny(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case string:
		return Str(t)
	case json.Number:
		return Str(t.String())
	case bool:
		if t {
			return Str("true")
		}
		return Str("false")
	case []interface{}:
		l := make([]Value, len(t))
		for i, e := range t {
			l[i] = fromAny(e)
		}
		return Value{kind: List, l: l}
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = fromAny(e)
		}
		return Value{kind: Map, m: m}
	}
	return Str(fmt.Sprint(x))
}
