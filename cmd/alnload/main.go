// 15 Oct 2026
/*
alnload reads uniprot to pdb alignments and residue mappings from tab
separated files into the database used by pdbmapd.

Usage:
 alnload [-c config.yaml] [-v level] alignments.tsv [residues.tsv]

Either file may be gzipped. Loading the same alignment id again
replaces it.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pkg/alnload"
)

func main() {
	f := flag.NewFlagSet("alnload", flag.ExitOnError)
	var args alnload.LoadArgs
	f.StringVar(&args.ConfigFile, "c", "", "yaml config file")
	f.StringVar(&args.LogLevel, "v", "", "log level")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(f.Output(), err)
		os.Exit(cmmn.ExitUsageError)
	}
	if f.NArg() < 1 || f.NArg() > 2 {
		fmt.Fprintln(f.Output(), "usage: alnload [options] alignments.tsv [residues.tsv]")
		f.PrintDefaults()
		os.Exit(cmmn.ExitUsageError)
	}
	args.AlnFile = f.Arg(0)
	args.ResFile = f.Arg(1)
	args.LogW = os.Stderr
	if err := alnload.LoadMain(context.Background(), &args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmmn.ExitFailure)
	}
	os.Exit(cmmn.ExitSuccess)
}
