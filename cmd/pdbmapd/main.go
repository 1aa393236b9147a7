// 15 Oct 2026
/*
pdbmapd answers http queries about uniprot to pdb alignments.

Usage:
 pdbmapd [-c config.yaml] [-l :8080] [-v level]

Queries go to /pdb with the parameters uniprotId, type, positions,
alignments and pdbIds. /healthz says if the database is reachable.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pkg/pdbmapd"
)

func main() {
	f := flag.NewFlagSet("pdbmapd", flag.ExitOnError)
	var args pdbmapd.ServeArgs
	f.StringVar(&args.ConfigFile, "c", "", "yaml config file")
	f.StringVar(&args.Listen, "l", "", "address to listen on, overrides config")
	f.StringVar(&args.LogLevel, "v", "", "log level: debug, info, warn or error")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(f.Output(), err)
		os.Exit(cmmn.ExitUsageError)
	}
	if f.NArg() != 0 {
		fmt.Fprintln(f.Output(), "pdbmapd takes no arguments, only flags")
		f.Usage()
		os.Exit(cmmn.ExitUsageError)
	}
	args.LogW = os.Stderr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := pdbmapd.ServeMain(ctx, &args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cmmn.ExitFailure)
	}
	os.Exit(cmmn.ExitSuccess)
}
