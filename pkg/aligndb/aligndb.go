// 14 Oct 2026

// Package aligndb holds the precomputed alignments between uniprot
// sequences and pdb chains, and for each alignment, which uniprot
// residue goes to which pdb residue. It sits on database/sql. The
// tables are filled by alnload and only read by the server.
package aligndb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
)

const schema = `
CREATE TABLE IF NOT EXISTS pdb_uniprot_alignment (
	alignment_id  INTEGER PRIMARY KEY,
	pdb_id        TEXT NOT NULL,
	chain         TEXT NOT NULL,
	uniprot_id    TEXT NOT NULL,
	pdb_from      INTEGER NOT NULL,
	pdb_to        INTEGER NOT NULL,
	uniprot_from  INTEGER NOT NULL,
	uniprot_to    INTEGER NOT NULL,
	evalue        REAL NOT NULL,
	identity_perc REAL NOT NULL,
	uniprot_align TEXT NOT NULL,
	pdb_align     TEXT NOT NULL,
	midline_align TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS pdb_uniprot_alignment_uniprot ON pdb_uniprot_alignment (uniprot_id);
CREATE TABLE IF NOT EXISTS pdb_uniprot_residue_mapping (
	alignment_id       INTEGER NOT NULL,
	pdb_position       INTEGER NOT NULL,
	pdb_insertion_code TEXT NOT NULL DEFAULT '',
	uniprot_position   INTEGER NOT NULL,
	PRIMARY KEY (alignment_id, uniprot_position)
)`

// DB is the persistence layer. Make one with Open or New.
type DB struct {
	db *sql.DB
}

// New wraps a database that is already open.
func New(db *sql.DB) (*DB, error) {
	if db == nil {
		return nil, errors.New("aligndb: nil database")
	}
	return &DB{db: db}, nil
}

// Open opens a database with the given driver, like "sqlite", and
// makes sure the tables are there.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	sdb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("aligndb: open %s: %w", dsn, err)
	}
	d := &DB{db: sdb}
	if err := d.Migrate(ctx); err != nil {
		sdb.Close()
		return nil, err
	}
	return d, nil
}

// SQL gives the underlying handle so other tables (the text cache)
// can live in the same database.
func (d *DB) SQL() *sql.DB { return d.db }

func (d *DB) Close() error { return d.db.Close() }

// Migrate creates the tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("aligndb: schema: %w", err)
		}
	}
	return nil
}

const alignCols = `alignment_id, pdb_id, chain, uniprot_id, pdb_from, pdb_to,
	uniprot_from, uniprot_to, evalue, identity_perc,
	uniprot_align, pdb_align, midline_align`

// Alignments returns every alignment for a uniprot id, ordered by
// alignment id. No alignments is an empty slice, not an error.
func (d *DB) Alignments(ctx context.Context, uniprotID string) ([]cmmn.Alignment, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+alignCols+` FROM pdb_uniprot_alignment WHERE uniprot_id = ? ORDER BY alignment_id`,
		uniprotID)
	if err != nil {
		return nil, fmt.Errorf("aligndb: alignments for %s: %w", uniprotID, err)
	}
	defer rows.Close()

	ret := make([]cmmn.Alignment, 0)
	for rows.Next() {
		var a cmmn.Alignment
		if err := rows.Scan(&a.ID, &a.PdbID, &a.Chain, &a.UniprotID,
			&a.PdbFrom, &a.PdbTo, &a.UniprotFrom, &a.UniprotTo,
			&a.EValue, &a.IdentityPerc,
			&a.UniprotAlign, &a.PdbAlign, &a.MidlineAlign); err != nil {
			return nil, fmt.Errorf("aligndb: reading alignment row: %w", err)
		}
		ret = append(ret, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aligndb: alignments for %s: %w", uniprotID, err)
	}
	return ret, nil
}

// CountAlignments is the number of alignments for a uniprot id.
func (d *DB) CountAlignments(ctx context.Context, uniprotID string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pdb_uniprot_alignment WHERE uniprot_id = ?`, uniprotID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("aligndb: count for %s: %w", uniprotID, err)
	}
	return n, nil
}

// placeholders gives "?, ?, ?" for n values
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// MaxChunk is the most positions asked for in one query. sqlite has a
// limit on the number of parameters in a statement.
const MaxChunk = 500

// MapPositions returns the pdb residues for those of the given uniprot
// positions which are covered by one alignment. Positions which are
// not in the alignment are simply missing from the map.
func (d *DB) MapPositions(ctx context.Context, alignmentID int, positions []int) (map[int]cmmn.ResidueMapping, error) {
	ret := make(map[int]cmmn.ResidueMapping)
	for len(positions) > 0 {
		n := min(len(positions), MaxChunk)
		if err := d.mapChunk(ctx, alignmentID, positions[:n], ret); err != nil {
			return nil, err
		}
		positions = positions[n:]
	}
	return ret, nil
}

// mapChunk adds the mappings for at most MaxChunk positions to ret.
func (d *DB) mapChunk(ctx context.Context, alignmentID int, positions []int, ret map[int]cmmn.ResidueMapping) error {
	args := make([]any, 0, len(positions)+1)
	args = append(args, alignmentID)
	for _, p := range positions {
		args = append(args, p)
	}
	q := `SELECT uniprot_position, pdb_position, pdb_insertion_code
		FROM pdb_uniprot_residue_mapping
		WHERE alignment_id = ? AND uniprot_position IN (` + placeholders(len(positions)) + `)`
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("aligndb: mapping alignment %d: %w", alignmentID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var r cmmn.ResidueMapping
		if err := rows.Scan(&r.UniprotPos, &r.PdbPos, &r.Insertion); err != nil {
			return fmt.Errorf("aligndb: reading mapping row: %w", err)
		}
		ret[r.UniprotPos] = r
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("aligndb: mapping alignment %d: %w", alignmentID, err)
	}
	return nil
}

// InsertAlignment adds or replaces one alignment.
func (d *DB) InsertAlignment(ctx context.Context, a cmmn.Alignment) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pdb_uniprot_alignment (`+alignCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PdbID, a.Chain, a.UniprotID, a.PdbFrom, a.PdbTo,
		a.UniprotFrom, a.UniprotTo, a.EValue, a.IdentityPerc,
		a.UniprotAlign, a.PdbAlign, a.MidlineAlign)
	if err != nil {
		return fmt.Errorf("aligndb: insert alignment %d: %w", a.ID, err)
	}
	return nil
}

// InsertResidues adds the residue mappings for one alignment in a
// single transaction.
func (d *DB) InsertResidues(ctx context.Context, alignmentID int, res []cmmn.ResidueMapping) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("aligndb: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO pdb_uniprot_residue_mapping
		(alignment_id, pdb_position, pdb_insertion_code, uniprot_position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("aligndb: prepare: %w", err)
	}
	defer stmt.Close()
	for _, r := range res {
		if _, err = stmt.ExecContext(ctx, alignmentID, r.PdbPos, r.Insertion, r.UniprotPos); err != nil {
			return fmt.Errorf("aligndb: insert residue %d of alignment %d: %w", r.UniprotPos, alignmentID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("aligndb: commit: %w", err)
	}
	return nil
}
