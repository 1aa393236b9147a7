// Package alnvis makes the short string used to draw an alignment
// against the uniprot sequence. There is one character for each
// uniprot residue. It is the midline character if the residue is
// aligned, or a gap if the pdb chain has no residue there. Columns
// where uniprot has a gap are dropped, since there is nothing to draw
// them against.
package alnvis

import (
	"github.com/andrew-torda/matrix"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
)

// NA is returned when the three alignment strings have different
// lengths. This is bad data, but not worth stopping for.
const NA = "NA"

const (
	rowUniprot = iota
	rowPdb
	rowMidline
	rowOut
	nRow
)

// Drawer makes drawing strings for one alignment after another. The
// three tracks go into the rows of a byte matrix which is kept between
// calls and only grows, and the drawing is built in place in the last
// row. The zero value is ready to use. A Drawer is not safe for
// concurrent use.
type Drawer struct {
	mat *matrix.BMatrix2d
}

// load puts the tracks into the matrix, growing it if needed, and
// returns the rows cut to the alignment length. ok is false if the
// lengths differ.
func (d *Drawer) load(uniprot, pdb, midline string) (m [nRow][]byte, ok bool) {
	n := len(uniprot)
	if len(pdb) != n || len(midline) != n {
		return m, false
	}
	if d.mat == nil {
		d.mat = matrix.NewBMatrix2d(nRow, n)
	} else if _, ncol := d.mat.Size(); ncol < n {
		d.mat = matrix.NewBMatrix2d(nRow, n)
	}
	for i := range m {
		m[i] = d.mat.Mat[i][:n]
	}
	copy(m[rowUniprot], uniprot)
	copy(m[rowPdb], pdb)
	copy(m[rowMidline], midline)
	return m, true
}

// Draw returns the drawing string for one set of tracks. Its length
// is the number of non-gap characters in the uniprot track.
func (d *Drawer) Draw(uniprot, pdb, midline string) string {
	m, ok := d.load(uniprot, pdb, midline)
	if !ok {
		return NA
	}
	k := 0
	for i := range m[rowUniprot] {
		switch {
		case m[rowUniprot][i] == cmmn.GapChar: // nothing to draw against
			continue
		case m[rowPdb][i] == cmmn.GapChar:
			m[rowOut][k] = cmmn.GapChar
		default:
			m[rowOut][k] = m[rowMidline][i]
		}
		k++
	}
	return string(m[rowOut][:k])
}

// Visualize returns the drawing string for one alignment.
func Visualize(a *cmmn.Alignment) string {
	var d Drawer
	return d.Draw(a.UniprotAlign, a.PdbAlign, a.MidlineAlign)
}

// Tracks is Visualize on bare strings.
func Tracks(uniprot, pdb, midline string) string {
	var d Drawer
	return d.Draw(uniprot, pdb, midline)
}
