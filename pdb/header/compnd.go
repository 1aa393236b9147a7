package header

import (
	"strings"
)

// Molecule holds the fields for one MOL_ID. Keys are lower case field
// names like "molecule", "chain", "organism_scientific".
type Molecule map[string]Value

// Molecules is keyed on the MOL_ID value.
type Molecules map[string]Molecule

// These fields are comma separated lists, rather than strings.
var listFields = map[string]bool{
	"chain": true,
	"gene":  true,
}

const molIDField = "mol_id"

func isListSep(r rune) bool {
	switch r {
	case ',', ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// splitEntry breaks "FIELD: value;" at the first colon. It returns the
// lower case field name and the value without its semicolon.
// ok is false if there is no colon.
func splitEntry(entry string) (field, value string, ok bool) {
	i := strings.IndexByte(entry, ':')
	if i == -1 {
		return "", "", false
	}
	field = strings.ToLower(strings.TrimSpace(entry[:i]))
	value = strings.TrimSpace(entry[i+1:])
	value = strings.TrimSpace(strings.TrimSuffix(value, ";"))
	return field, value, true
}

// ParseCompound reads the text of a COMPND or SOURCE block. An entry
// may run over several lines and ends with a semicolon at the end of a
// line. Each MOL_ID starts a new molecule. Entries before the first
// MOL_ID have nowhere to go and are dropped, as is an entry that is
// never terminated.
func ParseCompound(block string) Molecules {
	content := make(Molecules)
	var mol Molecule
	var buf strings.Builder

	for _, line := range strings.Split(block, "\n") {
		buf.WriteString(line)
		if !strings.HasSuffix(strings.TrimSpace(line), ";") {
			buf.WriteByte(' ') // entry continues on next line
			continue
		}
		field, value, ok := splitEntry(buf.String())
		buf.Reset()
		if !ok {
			continue
		}
		if field == molIDField {
			mol = make(Molecule)
			content[value] = mol
		}
		if mol == nil {
			continue
		}
		if listFields[field] {
			mol[field] = ListOf(strings.FieldsFunc(value, isListSep)...)
		} else {
			mol[field] = Str(value)
		}
	}
	return content
}
