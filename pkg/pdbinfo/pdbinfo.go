// 15 Oct 2026
// Get the title, compound and source of some pdb entries and print
// them as json. This is the same answer the server gives for pdbIds,
// so it is handy for checking a mirror or the cache.

package pdbinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrew-torda/pdbmap/pdb"
	"github.com/andrew-torda/pdbmap/pkg/config"
	"github.com/andrew-torda/pdbmap/pkg/pdbquery"
	"github.com/andrew-torda/pdbmap/pkg/txtcache"
)

// InfoArgs is literally the command line after parsing.
type InfoArgs struct {
	ConfigFile string
	LogLevel   string
	NoCache    bool // do not read or write the cache database
	Mirror     string
	IDs        []string
	Out        io.Writer
	LogW       io.Writer
}

// ErrMissing says at least one id came back null. The output is still
// written.
var ErrMissing = errors.New("no info for some pdb ids")

// InfoMain fetches and writes. Ids may be separated by commas as well
// as given as separate arguments.
func InfoMain(ctx context.Context, args *InfoArgs) error {
	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		return err
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}
	if args.Mirror != "" {
		cfg.MirrorDir = args.Mirror
	}
	if args.LogW == nil {
		args.LogW = os.Stderr
	}
	if args.Out == nil {
		args.Out = os.Stdout
	}
	logger, err := config.NewLogger(args.LogW, cfg.LogLevel)
	if err != nil {
		return err
	}
	ids := pdbquery.ParseStrings(strings.Join(args.IDs, " "))
	if len(ids) == 0 {
		return errors.New("no pdb ids given")
	}

	var cache txtcache.Store
	if !args.NoCache {
		db, err := cfg.OpenDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		if cache, err = txtcache.NewSQL(ctx, db.SQL()); err != nil {
			return err
		}
	}
	fetcher := pdb.NewFetcher(cfg.Source(logger), cache, logger)
	asm := pdbquery.NewAssembler(nil, nil, fetcher, cfg.FetchPar, logger)
	ans, err := asm.Answer(ctx, pdbquery.Query{PdbIDs: ids})
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(ans, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(args.Out, "%s\n", b); err != nil {
		return err
	}
	nMissing := 0
	for _, info := range ans.(pdbquery.InfoResponse) {
		if info == nil {
			nMissing++
		}
	}
	if nMissing > 0 {
		return fmt.Errorf("%w: %d of %d", ErrMissing, nMissing, len(ids))
	}
	return nil
}
