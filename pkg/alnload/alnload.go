// 15 Oct 2026
// Fill the alignment tables from tab separated files. Files may be
// gzipped. Lines starting with # are comments, and a first line
// which starts with a column name is skipped.
//
// alignments: alignment_id pdb_id chain uniprot_id pdb_from pdb_to
//   uniprot_from uniprot_to evalue identity_perc uniprot_align
//   pdb_align midline_align
// residues: alignment_id uniprot_position pdb_position [insertion_code]

package alnload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pdb/zwrap"
	"github.com/andrew-torda/pdbmap/pkg/config"
)

const (
	nAlnCol    = 13
	nResColMin = 3
	nResColMax = 4
	headerWord = "alignment_id"
)

// LoadArgs is the command line after parsing.
type LoadArgs struct {
	ConfigFile string
	LogLevel   string
	AlnFile    string
	ResFile    string // may be empty
	LogW       io.Writer
}

// Store is the part of aligndb.DB we write to.
type Store interface {
	InsertAlignment(ctx context.Context, a cmmn.Alignment) error
	InsertResidues(ctx context.Context, alignmentID int, res []cmmn.ResidueMapping) error
}

// LineError says where in a file things went wrong.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

// readTSV calls fn for each data line. The midline of an alignment
// can have leading blanks, so nothing is trimmed.
func readTSV(r io.Reader, minCol, maxCol int, fn func(rec []string) error) error {
	rdr := csv.NewReader(r)
	rdr.Comma = '\t'
	rdr.Comment = '#'
	rdr.LazyQuotes = true
	rdr.FieldsPerRecord = -1
	rdr.ReuseRecord = true
	first := true
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := rdr.FieldPos(0)
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), headerWord) {
			first = false
			continue
		}
		first = false
		if len(rec) < minCol || len(rec) > maxCol {
			return &LineError{line, fmt.Errorf("%d columns, wanted %d to %d", len(rec), minCol, maxCol)}
		}
		if err := fn(rec); err != nil {
			return &LineError{line, err}
		}
	}
}

// ints converts fields from rec[first] on, stopping at the first failure
func ints(rec []string, first int, dst ...*int) error {
	for i, p := range dst {
		n, err := strconv.Atoi(strings.TrimSpace(rec[first+i]))
		if err != nil {
			return fmt.Errorf("column %d: %w", first+i+1, err)
		}
		*p = n
	}
	return nil
}

// ReadAlignments reads an alignments file.
func ReadAlignments(r io.Reader) ([]cmmn.Alignment, error) {
	var ret []cmmn.Alignment
	err := readTSV(r, nAlnCol, nAlnCol, func(rec []string) error {
		var a cmmn.Alignment
		if err := ints(rec, 0, &a.ID); err != nil {
			return err
		}
		a.PdbID, a.Chain, a.UniprotID = strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2]), strings.TrimSpace(rec[3])
		if err := ints(rec, 4, &a.PdbFrom, &a.PdbTo, &a.UniprotFrom, &a.UniprotTo); err != nil {
			return err
		}
		var err error
		if a.EValue, err = strconv.ParseFloat(strings.TrimSpace(rec[8]), 64); err != nil {
			return fmt.Errorf("evalue: %w", err)
		}
		if a.IdentityPerc, err = strconv.ParseFloat(strings.TrimSpace(rec[9]), 64); err != nil {
			return fmt.Errorf("identity: %w", err)
		}
		a.UniprotAlign, a.PdbAlign, a.MidlineAlign = rec[10], rec[11], rec[12]
		ret = append(ret, a)
		return nil
	})
	return ret, err
}

// ReadResidues reads a residue file and groups the lines by alignment.
func ReadResidues(r io.Reader) (map[int][]cmmn.ResidueMapping, error) {
	ret := make(map[int][]cmmn.ResidueMapping)
	err := readTSV(r, nResColMin, nResColMax, func(rec []string) error {
		var id int
		var m cmmn.ResidueMapping
		if err := ints(rec, 0, &id, &m.UniprotPos, &m.PdbPos); err != nil {
			return err
		}
		if len(rec) == nResColMax {
			m.Insertion = strings.TrimSpace(rec[3])
		}
		ret[id] = append(ret[id], m)
		return nil
	})
	return ret, err
}

// Load writes everything. Residues go in one transaction per
// alignment, in order of alignment id.
func Load(ctx context.Context, st Store, alns []cmmn.Alignment, res map[int][]cmmn.ResidueMapping) error {
	for _, a := range alns {
		if err := st.InsertAlignment(ctx, a); err != nil {
			return err
		}
	}
	ids := make([]int, 0, len(res))
	for id := range res {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if err := st.InsertResidues(ctx, id, res[id]); err != nil {
			return err
		}
	}
	return nil
}

// readFile opens a plain or gzipped file and hands it to fn.
func readFile(fname string, fn func(io.Reader) error) (err error) {
	fp, err := os.Open(fname)
	if err != nil {
		return err
	}
	rdr, err := zwrap.WrapMaybe(fp)
	if err != nil {
		fp.Close()
		return err
	}
	defer func() { err = errors.Join(err, rdr.Close()) }()
	if err = fn(rdr); err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	return nil
}

// LoadMain reads the files named in args and loads them into the
// database from the config.
func LoadMain(ctx context.Context, args *LoadArgs) error {
	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		return err
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}
	if args.LogW == nil {
		args.LogW = os.Stderr
	}
	logger, err := config.NewLogger(args.LogW, cfg.LogLevel)
	if err != nil {
		return err
	}

	var alns []cmmn.Alignment
	if err := readFile(args.AlnFile, func(r io.Reader) (e error) {
		alns, e = ReadAlignments(r)
		return e
	}); err != nil {
		return err
	}
	res := make(map[int][]cmmn.ResidueMapping)
	if args.ResFile != "" {
		if err := readFile(args.ResFile, func(r io.Reader) (e error) {
			res, e = ReadResidues(r)
			return e
		}); err != nil {
			return err
		}
	}
	nRes := 0
	for _, r := range res {
		nRes += len(r)
	}
	logger.Info("read", "alignments", len(alns), "residues", nRes, "database", cfg.Database)

	db, err := cfg.OpenDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := Load(ctx, db, alns, res); err != nil {
		return err
	}
	logger.Info("loaded", "alignments", len(alns), "with_residues", len(res))
	return nil
}
