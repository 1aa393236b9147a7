// This is the upper level for getting PDB headers. Look in the
// cache, otherwise go to the source, parse what comes back and
// remember the result for next time.

package pdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/andrew-torda/pdbmap/pdb/header"
	"github.com/andrew-torda/pdbmap/pkg/txtcache"
)

const (
	keyPrefix = "PDB_FILE_"
	dfltNPar  = 4
)

// ErrBadID is for ids we would not even try to fetch.
var ErrBadID = errors.New("bad pdb id")

// CacheKey is what we file the info for id under.
func CacheKey(id string) string { return keyPrefix + id }

// Fetcher gets structure info for pdb ids. It is safe for concurrent use
// if the Source and the cache are.
type Fetcher struct {
	src   Source
	cache txtcache.Store // may be nil
	log   *log.Logger
}

// NewFetcher with a nil cache will go to the source every time.
func NewFetcher(src Source, cache txtcache.Store, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{src: src, cache: cache, log: logger}
}

// checkID is a loose check. Real ids are four characters, but we do
// not want to lock out extended ids, so we only refuse things which
// would make a mess of a url or a file name.
func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\?#%&. \t\n") {
		return ErrBadID
	}
	return nil
}

// Fetch gets the info for one id. The cache holds the json form of
// the info. A cache entry that will not decode is an error, not a
// reason to fetch again.
func (f *Fetcher) Fetch(ctx context.Context, id string) (*header.Info, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	key := CacheKey(id)
	if f.cache != nil {
		text, ok, err := f.cache.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			f.log.Debug("header from cache", "id", id)
			info, err := header.Decode(text)
			if err != nil {
				return nil, fmt.Errorf("cached %s: %w", id, err)
			}
			return info, nil
		}
	}
	text, err := f.src.Header(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := header.Parse(text)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		f.store(ctx, key, info)
	}
	return info, nil
}

// store is best effort. A failure costs a fetch next time.
func (f *Fetcher) store(ctx context.Context, key string, info *header.Info) {
	text, err := info.Encode()
	if err == nil {
		err = f.cache.Put(ctx, key, text)
	}
	if err != nil {
		f.log.Warn("could not cache header", "key", key, "err", err)
	}
}

// FetchAll gets many ids with at most nPar at once. Every id is a key
// in infos, with nil where it failed, and the failures also go in errs.
// Duplicate ids are fetched once.
func (f *Fetcher) FetchAll(ctx context.Context, ids []string, nPar int) (map[string]*header.Info, map[string]error) {
	if nPar < 1 {
		nPar = dfltNPar
	}
	type result struct {
		info *header.Info
		err  error
	}
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	results := make([]result, len(uniq)) // each goroutine owns one slot
	var g errgroup.Group
	g.SetLimit(nPar)
	for i, id := range uniq {
		i, id := i, id
		g.Go(func() error {
			info, err := f.Fetch(ctx, id)
			results[i] = result{info, err}
			return nil
		})
	}
	g.Wait()

	infos := make(map[string]*header.Info)
	errs := make(map[string]error)
	for i, id := range uniq {
		r := results[i]
		if r.err != nil {
			f.log.Info("no header", "id", id, "err", r.err)
			errs[id] = r.err
		}
		infos[id] = r.info
	}
	return infos, errs
}
