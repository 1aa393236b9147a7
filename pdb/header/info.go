package header

import (
	"encoding/json"
	"errors"
)

// Names of the records we use, in the lower case form Split returns.
const (
	TitleRec  = "title"
	CompndRec = "compnd"
	SourceRec = "source"
)

// Records is the list of record names worth reading from a pdb header.
var Records = []string{TitleRec, CompndRec, SourceRec}

// ErrNoHeader means there was not a single title, compnd or source
// line in the input. Usually the wrong file or an error page.
var ErrNoHeader = errors.New("no title, compnd or source records")

// Info is what we say about one pdb entry.
type Info struct {
	Title    string    `json:"title"`
	Compound Molecules `json:"compound"`
	Source   Molecules `json:"source"`
}

// Parse takes the header lines of one pdb entry and builds the Info.
// A missing block gives an empty title or an empty set of molecules.
func Parse(raw string) (*Info, error) {
	content := Split(raw)
	found := false
	for _, r := range Records {
		if _, ok := content[r]; ok {
			found = true
		}
	}
	if !found {
		return nil, ErrNoHeader
	}
	return &Info{
		Title:    Title(content[TitleRec]),
		Compound: ParseCompound(content[CompndRec]),
		Source:   ParseCompound(content[SourceRec]),
	}, nil
}

// Encode gives the text that goes in the cache.
func (info *Info) Encode() (string, error) {
	b, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode reads back what Encode wrote. Molecule sets missing from the
// text come back empty, not nil, as they would from Parse.
func Decode(s string) (*Info, error) {
	var info Info
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		return nil, err
	}
	if info.Compound == nil {
		info.Compound = make(Molecules)
	}
	if info.Source == nil {
		info.Source = make(Molecules)
	}
	return &info, nil
}
