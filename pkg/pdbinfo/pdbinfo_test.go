package pdbinfo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-torda/pdbmap/pdb/header"
	"github.com/andrew-torda/pdbmap/pkg/pdbinfo"
)

const hdr = `TITLE     STRUCTURE OF A
TITLE    2 TEST PROTEIN
COMPND    MOL_ID: 1;
COMPND   2 CHAIN: A;
`

func mirror(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1ABC.pdb"), []byte(hdr), 0o644))
	return dir
}

func TestInfoMain(t *testing.T) {
	t.Setenv("PDBMAP_DATABASE", filepath.Join(t.TempDir(), "cache.db"))
	dir := mirror(t)
	for _, noCache := range []bool{true, false, false} {
		var out bytes.Buffer
		args := pdbinfo.InfoArgs{Mirror: dir, NoCache: noCache, IDs: []string{"1abc"}, Out: &out, LogW: io.Discard}
		require.NoError(t, pdbinfo.InfoMain(context.Background(), &args))
		var got map[string]*header.Info
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Contains(t, got, "1abc")
		assert.Equal(t, "STRUCTURE OF A TEST PROTEIN", got["1abc"].Title)
	}
}

func TestInfoMissing(t *testing.T) {
	var out bytes.Buffer
	args := pdbinfo.InfoArgs{Mirror: mirror(t), NoCache: true, IDs: []string{"1abc,2xyz"}, Out: &out, LogW: io.Discard}
	err := pdbinfo.InfoMain(context.Background(), &args)
	assert.ErrorIs(t, err, pdbinfo.ErrMissing)
	assert.Contains(t, out.String(), `"2xyz": null`)

	args.IDs = []string{" , "}
	assert.Error(t, pdbinfo.InfoMain(context.Background(), &args))
}
