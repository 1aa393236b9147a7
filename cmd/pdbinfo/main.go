// 15 Oct 2026
/*
pdbinfo prints the title, compound and source records of pdb entries
as json.

Usage:
 pdbinfo [options] id [id ...]

Flags:
  -c file
    	yaml config file. Without it, defaults and PDBMAP_* environment
    	variables are used.
  -m dir
    	read from a local pdb mirror instead of the web
  -n	do not use the cache database
  -v level
    	log level: debug, info, warn or error

Ids which could not be fetched come out as null and the exit status is
non-zero.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pkg/pdbinfo"
)

func main() {
	f := flag.NewFlagSet("pdbinfo", flag.ExitOnError)
	var args pdbinfo.InfoArgs
	f.StringVar(&args.ConfigFile, "c", "", "yaml config file")
	f.StringVar(&args.Mirror, "m", "", "local pdb mirror directory")
	f.BoolVar(&args.NoCache, "n", false, "do not use the cache database")
	f.StringVar(&args.LogLevel, "v", "", "log level")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(f.Output(), err)
		os.Exit(cmmn.ExitUsageError)
	}
	if f.NArg() == 0 {
		fmt.Fprintln(f.Output(), "usage: pdbinfo [options] id [id ...]")
		f.PrintDefaults()
		os.Exit(cmmn.ExitUsageError)
	}
	args.IDs = f.Args()
	args.Out = os.Stdout
	args.LogW = os.Stderr
	if err := pdbinfo.InfoMain(context.Background(), &args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmmn.ExitFailure)
	}
	os.Exit(cmmn.ExitSuccess)
}
