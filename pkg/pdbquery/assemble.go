package pdbquery

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pdb/header"
	"github.com/andrew-torda/pdbmap/pkg/alnvis"
	"github.com/andrew-torda/pdbmap/pkg/posmap"
)

// ErrBadQuery means the request could not be answered as asked.
var ErrBadQuery = errors.New("bad query")

// PersistenceError is a failure of the database, as opposed to a
// query which simply found nothing.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// AlignmentStore is the part of aligndb.DB we use for lists and counts.
type AlignmentStore interface {
	Alignments(ctx context.Context, uniprotID string) ([]cmmn.Alignment, error)
	CountAlignments(ctx context.Context, uniprotID string) (int, error)
}

// PositionMapper is satisfied by posmap.Mapper.
type PositionMapper interface {
	Map(ctx context.Context, alignmentIDs, positions []int) (map[int]cmmn.ResidueMapping, error)
}

// InfoFetcher is satisfied by pdb.Fetcher.
type InfoFetcher interface {
	FetchAll(ctx context.Context, ids []string, nPar int) (map[string]*header.Info, map[string]error)
}

// PdbPos is where one uniprot position lands.
type PdbPos struct {
	PdbPos    int    `json:"pdbPos"`
	Insertion string `json:"insertion"`
}

// PositionResponse is keyed on uniprot position.
type PositionResponse struct {
	PositionMap map[int]PdbPos `json:"positionMap"`
}

// InfoResponse has an entry for every requested id. Failed ids are nil
// and come out as null.
type InfoResponse map[string]*header.Info

type SummaryResponse struct {
	AlignmentCount int `json:"alignmentCount"`
}

// AlignmentRow is one alignment as it goes out, with the drawing
// string instead of the three raw alignment strings.
type AlignmentRow struct {
	AlignmentID     int     `json:"alignmentId"`
	PdbID           string  `json:"pdbId"`
	Chain           string  `json:"chain"`
	UniprotID       string  `json:"uniprotId"`
	PdbFrom         int     `json:"pdbFrom"`
	PdbTo           int     `json:"pdbTo"`
	UniprotFrom     int     `json:"uniprotFrom"`
	UniprotTo       int     `json:"uniprotTo"`
	EValue          float64 `json:"eValue"`
	IdentityPerc    float64 `json:"identityPerc"`
	AlignmentString string  `json:"alignmentString"`
}

// NewRow fills a row from an alignment. d may be shared by the rows of
// one answer.
func NewRow(a *cmmn.Alignment, d *alnvis.Drawer) AlignmentRow {
	return AlignmentRow{
		AlignmentID:     a.ID,
		PdbID:           a.PdbID,
		Chain:           a.Chain,
		UniprotID:       a.UniprotID,
		PdbFrom:         a.PdbFrom,
		PdbTo:           a.PdbTo,
		UniprotFrom:     a.UniprotFrom,
		UniprotTo:       a.UniprotTo,
		EValue:          a.EValue,
		IdentityPerc:    a.IdentityPerc,
		AlignmentString: d.Draw(a.UniprotAlign, a.PdbAlign, a.MidlineAlign),
	}
}

// Assembler answers queries. It keeps no state between them.
type Assembler struct {
	store   AlignmentStore
	mapper  PositionMapper
	fetcher InfoFetcher
	nPar    int
	log     *log.Logger
}

// NewAssembler wants all three helpers. nPar bounds how many pdb ids
// are fetched at once.
func NewAssembler(store AlignmentStore, mapper PositionMapper, fetcher InfoFetcher, nPar int, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{store: store, mapper: mapper, fetcher: fetcher, nPar: nPar, log: logger}
}

// Answer works out the mode of q and returns something ready for
// json.Marshal. Errors are ErrBadQuery or a *PersistenceError.
func (a *Assembler) Answer(ctx context.Context, q Query) (any, error) {
	mode := q.Mode()
	a.log.Debug("query", "mode", mode, "uniprotId", q.UniprotID,
		"nPos", len(q.Positions), "nAln", len(q.Alignments), "nPdb", len(q.PdbIDs))
	switch mode {
	case ModePositions:
		return orNil(a.positions(ctx, q))
	case ModeInfo:
		return a.info(ctx, q), nil
	case ModeSummary:
		return orNil(a.summary(ctx, q))
	}
	return orNil(a.list(ctx, q))
}

// orNil stops a typed nil pointer turning into a non-nil interface.
func orNil[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (a *Assembler) positions(ctx context.Context, q Query) (*PositionResponse, error) {
	m, err := a.mapper.Map(ctx, q.Alignments, q.Positions)
	if errors.Is(err, posmap.ErrOverlap) {
		return nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "mapping positions", Err: err}
	}
	ret := &PositionResponse{PositionMap: make(map[int]PdbPos, len(m))}
	for pos, r := range m {
		ret.PositionMap[pos] = PdbPos{PdbPos: r.PdbPos, Insertion: r.Insertion}
		a.log.Debug("mapped", "uniprot", pos, "pdb", r.PdbLabel())
	}
	return ret, nil
}

func (a *Assembler) info(ctx context.Context, q Query) InfoResponse {
	infos, _ := a.fetcher.FetchAll(ctx, q.PdbIDs, a.nPar)
	ret := make(InfoResponse, len(q.PdbIDs))
	for _, id := range q.PdbIDs {
		ret[id] = infos[id]
	}
	return ret
}

func needUniprot(q Query) error {
	if q.UniprotID == "" {
		return fmt.Errorf("%w: %s is needed for mode %s", ErrBadQuery, ParamUniprotID, q.Mode())
	}
	return nil
}

func (a *Assembler) summary(ctx context.Context, q Query) (*SummaryResponse, error) {
	if err := needUniprot(q); err != nil {
		return nil, err
	}
	n, err := a.store.CountAlignments(ctx, q.UniprotID)
	if err != nil {
		return nil, &PersistenceError{Op: "counting alignments", Err: err}
	}
	return &SummaryResponse{AlignmentCount: n}, nil
}

func (a *Assembler) list(ctx context.Context, q Query) ([]AlignmentRow, error) {
	if err := needUniprot(q); err != nil {
		return nil, err
	}
	alns, err := a.store.Alignments(ctx, q.UniprotID)
	if err != nil {
		return nil, &PersistenceError{Op: "listing alignments", Err: err}
	}
	ret := make([]AlignmentRow, len(alns))
	var d alnvis.Drawer
	for i := range alns {
		ret[i] = NewRow(&alns[i], &d)
	}
	return ret, nil
}
