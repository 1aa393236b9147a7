// 15 Oct 2026

package pdbmapd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrew-torda/pdbmap/pdb"
	"github.com/andrew-torda/pdbmap/pkg/aligndb"
	"github.com/andrew-torda/pdbmap/pkg/config"
	"github.com/andrew-torda/pdbmap/pkg/pdbquery"
	"github.com/andrew-torda/pdbmap/pkg/posmap"
	"github.com/andrew-torda/pdbmap/pkg/txtcache"
)

// ServeArgs is what main() gets from the command line. Non-empty
// values override the config file.
type ServeArgs struct {
	ConfigFile string
	Listen     string
	LogLevel   string
	LogW       io.Writer // where logs go
}

const shutdownWait = 10 * time.Second

// Service is everything wired together, ready to serve.
type Service struct {
	Handler http.Handler
	DB      *aligndb.DB
	Log     *log.Logger
}

func (s *Service) Close() error { return s.DB.Close() }

// Build opens the database and puts the pieces together. The header
// cache lives in the same database as the alignments.
func Build(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Service, error) {
	db, err := cfg.OpenDB(ctx)
	if err != nil {
		return nil, err
	}
	cache, err := txtcache.NewSQL(ctx, db.SQL())
	if err != nil {
		db.Close()
		return nil, err
	}
	fetcher := pdb.NewFetcher(cfg.Source(logger), cache, logger)
	mapper := posmap.New(db, cfg.Policy())
	asm := pdbquery.NewAssembler(db, mapper, fetcher, cfg.FetchPar, logger)
	health := func(ctx context.Context) error { return db.SQL().PingContext(ctx) }
	return &Service{Handler: NewHandler(asm, health, logger), DB: db, Log: logger}, nil
}

// ServeMain runs the server until ctx is cancelled, then gives open
// requests a little time to finish.
func ServeMain(ctx context.Context, args *ServeArgs) error {
	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		return err
	}
	if args.Listen != "" {
		cfg.Listen = args.Listen
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
	svc, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           svc.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		// info queries may wait on several remote fetches
		WriteTimeout: 2*cfg.FetchTimeout*time.Duration(cfg.FetchRetries+1) + 10*time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving", "listen", cfg.Listen, "database", cfg.Database,
		"mirror", cfg.MirrorDir, "policy", cfg.Policy())

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
